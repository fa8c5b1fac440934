// Package markup reads and writes XML text as Markup tokens.
package markup

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/arnodel/jsonml/internal/debug"
	"github.com/arnodel/jsonml/internal/scope"
	"github.com/arnodel/jsonml/token"
)

// Names of the unparsed blocks produced by the Decoder.
var (
	CommentName   = token.LocalName("#comment")
	ProcInstName  = token.LocalName("#pi")
	DirectiveName = token.LocalName("#directive")
)

// target of the XML declaration, which is not a processing instruction
const declarationName = "xml"

// A Decoder reads XML input and streams it as Markup tokens.
//
// Element and attribute names carry both their prefix and the namespace it is
// bound to.  An element with no content at all, e.g. <a></a> or <a/>, is a
// single ElementVoid token.  Text made only of whitespace is a Whitespace
// token.  Comments, processing instructions and directives are passed through
// as UnparsedBlock tokens whose value is their literal text; the XML
// declaration is dropped.
type Decoder struct {
	xml    *xml.Decoder
	scopes scope.Chain

	// token read ahead while looking for an empty element
	next xml.Token
}

var _ token.StreamSource[token.Markup] = &Decoder{}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{xml: xml.NewDecoder(in)}
}

// SetHTML relaxes parsing for HTML-like input: unknown entities and
// unquoted attribute values are accepted and HTML entities are known.
func (d *Decoder) SetHTML() {
	d.xml.Strict = false
	d.xml.Entity = xml.HTMLEntity
}

// Produce reads the XML input and streams it, until it runs out of input or
// encounters invalid XML, in which case it returns an error.
func (d *Decoder) Produce(out chan<- token.Markup) error {
	for {
		tok, err := d.readToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := d.startElement(t, out); err != nil {
				return err
			}
		case xml.EndElement:
			if d.scopes.Len() > 0 {
				d.scopes.Pop()
			}
			out <- token.NewElementEnd()
		case xml.CharData:
			s := string(t)
			if isSpace(s) {
				out <- token.NewWhitespace(s)
			} else {
				out <- token.NewText(s)
			}
		case xml.Comment:
			out <- token.NewUnparsed(CommentName, "<!--"+string(t)+"-->")
		case xml.ProcInst:
			if t.Target == declarationName {
				continue
			}
			raw := "<?" + t.Target
			if len(t.Inst) > 0 {
				raw += " " + string(t.Inst)
			}
			out <- token.NewUnparsed(ProcInstName, raw+"?>")
		case xml.Directive:
			out <- token.NewUnparsed(DirectiveName, "<!"+string(t)+">")
		}
	}
}

func (d *Decoder) readToken() (xml.Token, error) {
	if d.next != nil {
		tok := d.next
		d.next = nil
		return tok, nil
	}
	return d.xml.RawToken()
}

func (d *Decoder) startElement(start xml.StartElement, out chan<- token.Markup) error {
	s := scope.New(token.Name{})
	for _, attr := range start.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			s.Bind(attr.Name.Local, attr.Value)
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			s.Bind("", attr.Value)
		}
	}
	s.TagName = d.elementName(start.Name, &s)
	d.scopes.Push(s)

	// The xml decoder reuses its buffers, so copy before reading ahead.
	start = start.Copy()
	next, err := d.xml.RawToken()
	isVoid := false
	switch {
	case err == nil:
		if _, ok := next.(xml.EndElement); ok {
			isVoid = true
		} else {
			d.next = xml.CopyToken(next)
		}
	case errors.Is(err, io.EOF):
		// reported by the next read
	default:
		return err
	}

	if isVoid {
		out <- token.NewElementVoid(s.TagName)
	} else {
		out <- token.NewElementBegin(s.TagName)
	}
	for _, attr := range start.Attr {
		out <- token.NewAttribute(d.attributeName(attr.Name))
		out <- token.NewText(attr.Value)
	}
	if isVoid {
		d.scopes.Pop()
	}
	return nil
}

// elementName resolves the prefix of an element.  Its own declarations in s
// take precedence over the enclosing scopes.
func (d *Decoder) elementName(n xml.Name, s *scope.Scope) token.Name {
	name := token.Name{Local: n.Local, Prefix: n.Space}
	if ns, ok := s.Lookup(n.Space); ok {
		name.Namespace = ns
	} else if ns, ok := d.scopes.LookupNamespace(n.Space); ok {
		name.Namespace = ns
	} else {
		debug.Printf("markup: unbound prefix %q in <%s>", n.Space, name)
	}
	return name
}

// attributeName resolves the prefix of an attribute.  Unprefixed attributes
// are in no namespace, except for the xmlns declaration itself.
func (d *Decoder) attributeName(n xml.Name) token.Name {
	name := token.Name{Local: n.Local, Prefix: n.Space, IsAttribute: true}
	switch {
	case n.Space == "":
		if n.Local == "xmlns" {
			name.Namespace = scope.XMLNSNamespace
		}
	default:
		if ns, ok := d.scopes.LookupNamespace(n.Space); ok {
			name.Namespace = ns
		} else {
			debug.Printf("markup: unbound prefix %q in attribute %s", n.Space, name)
		}
	}
	return name
}

func isSpace(s string) bool {
	return strings.TrimLeft(s, " \t\r\n") == ""
}
