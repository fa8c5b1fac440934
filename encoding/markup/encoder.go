package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/arnodel/jsonml/internal/format"
	"github.com/arnodel/jsonml/internal/scope"
	"github.com/arnodel/jsonml/token"
)

// An Encoder outputs a stream of Markup tokens as XML text.  Whitespace tokens
// are written as they are, so the layout of the output is entirely given by
// the stream.
type Encoder struct {
	format.Printer
	*format.Colorizer

	// If DeclareNamespaces is true, xmlns attributes are added for the
	// namespaces of element and attribute names that are not in scope.
	DeclareNamespaces bool
}

var _ token.StreamSink[token.Markup] = &Encoder{}

// an element whose start tag is still being collected
type startTag struct {
	name  token.Name
	void  bool
	attrs []attribute
}

type attribute struct {
	name  token.Name
	value string
}

// encoderState holds the state of one call to Consume.
type encoderState struct {
	*Encoder
	stream  *token.Stream[token.Markup]
	scopes  scope.Chain
	open    []token.Name
	pending *startTag
	wrote   bool
}

// Consume writes the markup of the stream.
//
// An error is returned if an attribute is out of place, if end tags do not
// match begin tags or if the Printer could not perform some writing operation.
func (e *Encoder) Consume(in token.ReadStream[token.Markup]) (err error) {
	defer format.CatchPrinterError(&err)
	st := &encoderState{Encoder: e, stream: token.NewStream(in)}
	for !st.stream.Completed() {
		if err := st.step(); err != nil {
			return err
		}
	}
	st.flushStartTag()
	if len(st.open) > 0 {
		return &token.TokenError[token.MarkupKind]{
			Err: token.ErrUnbalanced,
			Pos: st.stream.Pos(),
			Msg: fmt.Sprintf("unclosed element %s", st.open[len(st.open)-1]),
		}
	}
	if st.wrote {
		e.Printer.Reset()
	}
	return nil
}

func (st *encoderState) step() error {
	tok := st.stream.Pop()
	switch tok.Kind {
	case token.ElementBegin, token.ElementVoid:
		st.flushStartTag()
		st.pending = &startTag{name: tok.Name, void: tok.Kind == token.ElementVoid}
	case token.Attribute:
		if st.pending == nil {
			return token.UnexpectedToken(tok, st.stream.Pos()-1)
		}
		if st.stream.Completed() {
			return &token.TokenError[token.MarkupKind]{
				Err: token.ErrUnexpectedToken,
				Pos: st.stream.Pos(),
				Msg: fmt.Sprintf("missing value for attribute %s", tok.Name),
			}
		}
		value := st.stream.Pop()
		switch value.Kind {
		case token.TextValue, token.Whitespace, token.PrimitiveValue, token.UnparsedBlock:
		default:
			return token.UnexpectedToken(value, st.stream.Pos()-1)
		}
		st.pending.attrs = append(st.pending.attrs, attribute{name: tok.Name, value: value.ValueString()})
	case token.ElementEnd:
		st.flushStartTag()
		if len(st.open) == 0 {
			return token.UnexpectedToken(tok, st.stream.Pos()-1)
		}
		name := st.open[len(st.open)-1]
		st.open = st.open[:len(st.open)-1]
		st.scopes.Pop()
		st.PrintTag(st.Printer, []byte("</"+name.String()+">"))
	case token.TextValue, token.PrimitiveValue:
		st.flushStartTag()
		st.print([]byte(escapeText(tok.ValueString())))
	case token.Whitespace:
		st.flushStartTag()
		st.print([]byte(tok.ValueString()))
	case token.UnparsedBlock:
		st.flushStartTag()
		st.print([]byte(tok.ValueString()))
	default:
		return token.UnexpectedToken(tok, st.stream.Pos()-1)
	}
	return nil
}

// flushStartTag writes the pending start tag, if any, with its attributes and
// the namespace declarations it needs.
func (st *encoderState) flushStartTag() {
	tag := st.pending
	if tag == nil {
		return
	}
	st.pending = nil

	s := scope.New(tag.name)
	for _, attr := range tag.attrs {
		if attr.name.Namespace != scope.XMLNSNamespace {
			continue
		}
		if attr.name.Prefix == "" {
			s.Bind("", attr.value)
		} else {
			s.Bind(attr.name.Local, attr.value)
		}
	}
	st.scopes.Push(s)
	top := st.scopes.Top()

	var decls []attribute
	declare := func(prefix, ns string) {
		top.Bind(prefix, ns)
		decls = append(decls, attribute{name: namespaceDeclName(prefix), value: ns})
	}
	if st.DeclareNamespaces {
		if !st.bound(tag.name.Prefix, tag.name.Namespace) {
			declare(tag.name.Prefix, tag.name.Namespace)
		}
		for i, attr := range tag.attrs {
			ns := attr.name.Namespace
			switch {
			case ns == "" || ns == scope.XMLNSNamespace:
			case attr.name.Prefix == "":
				// unprefixed attributes are never in the default namespace
				prefix, ok := st.scopes.LookupPrefix(ns)
				if !ok || prefix == "" {
					prefix = fmt.Sprintf("ns%d", len(decls)+1)
					declare(prefix, ns)
				}
				tag.attrs[i].name.Prefix = prefix
			case !st.bound(attr.name.Prefix, ns):
				declare(attr.name.Prefix, ns)
			}
		}
	}

	st.PrintTag(st.Printer, []byte("<"+tag.name.String()))
	for _, attr := range decls {
		st.printAttribute(attr)
	}
	for _, attr := range tag.attrs {
		st.printAttribute(attr)
	}
	if tag.void {
		st.scopes.Pop()
		st.PrintTag(st.Printer, []byte("/>"))
	} else {
		st.open = append(st.open, tag.name)
		st.PrintTag(st.Printer, []byte(">"))
	}
	st.wrote = true
}

// bound reports whether prefix already stands for namespace.  A prefix cannot
// be bound to the empty namespace, so that case is always satisfied.
func (st *encoderState) bound(prefix, namespace string) bool {
	if namespace == "" && prefix != "" {
		return true
	}
	ns, ok := st.scopes.LookupNamespace(prefix)
	return ok && ns == namespace
}

func (st *encoderState) printAttribute(attr attribute) {
	st.print(spaceBytes)
	st.PrintAttribute(st.Printer, []byte(attr.name.String()))
	st.print(equalQuoteBytes)
	st.PrintScalar(st.Printer, token.ShapeString, []byte(escapeAttribute(attr.value)))
	st.print(quoteBytes)
}

func (st *encoderState) print(b []byte) {
	st.Printer.PrintBytes(b)
	st.wrote = true
}

func namespaceDeclName(prefix string) token.Name {
	if prefix == "" {
		return token.Name{Local: "xmlns", Namespace: scope.XMLNSNamespace, IsAttribute: true}
	}
	return token.Name{Local: prefix, Prefix: "xmlns", Namespace: scope.XMLNSNamespace, IsAttribute: true}
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttribute(s string) string {
	var b bytes.Buffer
	// Writing to a bytes.Buffer does not fail.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var (
	spaceBytes      = []byte(" ")
	equalQuoteBytes = []byte(`="`)
	quoteBytes      = []byte(`"`)
)
