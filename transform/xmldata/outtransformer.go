// Package xmldata turns value trees into markup, using an XML data model:
// objects become elements with one child element per property, arrays
// become elements with one "item" child per value and primitives become
// elements containing their value.
//
// Properties flagged as attributes become attributes of the element of their
// object, provided they come before the first property that is not an
// attribute.
package xmldata

import (
	"fmt"
	"strings"

	"github.com/arnodel/jsonml/internal/debug"
	"github.com/arnodel/jsonml/internal/scope"
	"github.com/arnodel/jsonml/token"
)

// itemName is the element name of array items.
var itemName = token.LocalName("item")

// An OutTransformer transforms Common tokens into Markup tokens.
//
// Each call to Transform has its own traversal state, so an OutTransformer
// may be used for several transformations, concurrently or not.
type OutTransformer struct {
	settings *Settings
}

// NewOutTransformer returns an OutTransformer with the given settings, which
// must not be nil and must have a Resolver.
func NewOutTransformer(settings *Settings) (*OutTransformer, error) {
	if err := settings.validate(); err != nil {
		return nil, invalidArgument(err.Error())
	}
	return &OutTransformer{settings: settings}, nil
}

// Transform reads all the values from in and returns the markup for them.
// The conversion is not incremental: in is drained before Transform returns.
func (t *OutTransformer) Transform(in token.ReadStream[token.Common]) ([]token.Markup, error) {
	if t == nil {
		return nil, invalidArgument("nil transformer")
	}
	if err := t.settings.validate(); err != nil {
		return nil, invalidArgument(err.Error())
	}
	if in == nil {
		return nil, invalidArgument("nil input stream")
	}
	w := &writer{settings: t.settings, stream: token.NewStream(in)}
	if err := w.run(); err != nil {
		return nil, err
	}
	if w.scopes.Len() != 0 {
		panic("logic error: unbalanced scope chain")
	}
	return w.out, nil
}

func invalidArgument(msg string) error {
	return &token.TokenError[token.CommonKind]{Err: token.ErrInvalidArgument, Msg: "invalid argument: " + msg}
}

// writer holds the state of one transformation.
type writer struct {
	settings *Settings
	stream   *token.Stream[token.Common]
	scopes   scope.Chain
	out      []token.Markup

	// indentation level
	depth int

	// a new line is due before the next token, if it is not an end tag
	pendingNewLine bool
}

func (w *writer) run() error {
	roots := 0
	for !w.stream.Completed() {
		if w.stream.Peek().Kind == token.ValueDelim {
			w.stream.Pop()
			continue
		}
		w.pendingNewLine = false
		if roots > 0 && w.settings.PrettyPrint {
			w.emitNewLine()
		}
		if err := w.transformValue(token.EmptyName); err != nil {
			return err
		}
		roots++
	}
	return nil
}

func (w *writer) transformValue(propertyName token.Name) error {
	if w.pendingNewLine {
		if w.settings.PrettyPrint {
			w.depth++
			w.emitNewLine()
		}
		w.pendingNewLine = false
	}

	tok := w.stream.Peek()
	switch tok.Kind {
	case token.ArrayBegin:
		return w.transformArray(propertyName)
	case token.ObjectBegin:
		return w.transformObject(propertyName)
	case token.Primitive:
		w.stream.Pop()
		if propertyName.IsEmpty() {
			propertyName = tok.Name
		}
		name, err := w.encodeName(propertyName, token.ShapeOf(tok.Value))
		if err != nil {
			return err
		}
		if tok.Value == nil {
			w.emitTag(name, nil, token.ElementVoid)
			return nil
		}
		w.emitTag(name, nil, token.ElementBegin)
		w.out = append(w.out, token.Retag(tok, token.PrimitiveValue))
		w.emitTag(name, nil, token.ElementEnd)
		return nil
	default:
		return w.unexpected(tok)
	}
}

func (w *writer) transformArray(propertyName token.Name) error {
	tok := w.stream.Pop()
	if propertyName.IsEmpty() {
		propertyName = tok.Name
	}
	name, err := w.encodeName(propertyName, token.ShapeArray)
	if err != nil {
		return err
	}

	w.emitTag(name, nil, token.ElementBegin)
	w.pendingNewLine = true

	needsValueDelim := false
	for !w.stream.Completed() {
		tok = w.stream.Peek()
		switch tok.Kind {
		case token.ValueDelim:
			w.stream.Pop()
		case token.ArrayEnd:
			w.stream.Pop()
			w.closeElement(name)
			return nil
		case token.ArrayBegin, token.ObjectBegin, token.Primitive:
			if needsValueDelim {
				if w.settings.PrettyPrint {
					w.emitNewLine()
				}
				needsValueDelim = false
			}
			if w.pendingNewLine {
				if w.settings.PrettyPrint {
					w.depth++
					w.emitNewLine()
				}
				w.pendingNewLine = false
			}
			if err := w.transformValue(itemName); err != nil {
				return err
			}
			w.pendingNewLine = false
			needsValueDelim = true
		default:
			return w.unexpected(tok)
		}
	}
	return w.unclosed(name)
}

func (w *writer) transformObject(propertyName token.Name) error {
	tok := w.stream.Pop()
	if propertyName.IsEmpty() {
		propertyName = tok.Name
	}
	name, err := w.encodeName(propertyName, token.ShapeObject)
	if err != nil {
		return err
	}

	// Attributes are collected until the begin tag is emitted, i.e. until the
	// first property that is not an attribute.
	needsBeginTag := true
	attrs := newAttributeSet()

	needsValueDelim := false
	for !w.stream.Completed() {
		tok = w.stream.Peek()
		switch tok.Kind {
		case token.ValueDelim:
			w.stream.Pop()
		case token.ObjectEnd:
			w.stream.Pop()
			if needsBeginTag {
				w.emitTag(name, attrs, token.ElementBegin)
				w.pendingNewLine = true
			}
			w.closeElement(name)
			return nil
		case token.Property:
			w.stream.Pop()
			if needsValueDelim {
				if w.settings.PrettyPrint {
					w.emitNewLine()
				}
				needsValueDelim = false
			}
			if needsBeginTag {
				if tok.Name.IsAttribute {
					if err := w.bufferAttribute(tok, attrs); err != nil {
						return err
					}
					continue
				}
				needsBeginTag = false
				w.emitTag(name, attrs, token.ElementBegin)
				w.pendingNewLine = true
			}
			if w.stream.Completed() {
				return &token.TokenError[token.CommonKind]{
					Err: token.ErrUnexpectedToken,
					Pos: w.stream.Pos(),
					Msg: fmt.Sprintf("missing value for property %s", tok.Name),
				}
			}
			if w.pendingNewLine {
				if w.settings.PrettyPrint {
					w.depth++
					w.emitNewLine()
				}
				w.pendingNewLine = false
			}
			if err := w.transformValue(tok.Name); err != nil {
				return err
			}
			w.pendingNewLine = false
			needsValueDelim = true
		default:
			return w.unexpected(tok)
		}
	}
	if needsBeginTag {
		w.emitTag(name, attrs, token.ElementBegin)
		w.pendingNewLine = true
	}
	return w.unclosed(name)
}

// bufferAttribute consumes the value of the attribute property prop.
func (w *writer) bufferAttribute(prop token.Common, attrs *attributeSet) error {
	if w.stream.Completed() {
		return &token.TokenError[token.CommonKind]{
			Err: token.ErrAttributeValueNotPrimitive,
			Pos: w.stream.Pos(),
			Msg: fmt.Sprintf("missing value for attribute %s", prop.Name),
		}
	}
	value := w.stream.Peek()
	if value.Kind != token.Primitive {
		return &token.TokenError[token.CommonKind]{
			Err:   token.ErrAttributeValueNotPrimitive,
			Token: value,
			Pos:   w.stream.Pos(),
			Msg:   "attribute values must be primitive",
		}
	}
	w.stream.Pop()

	attrName := prop.Name
	if attrName.IsEmpty() {
		attrName = value.Name
	}
	attrName, err := w.encodeName(attrName, token.ShapeOf(value.Value))
	if err != nil {
		return err
	}
	attrName.IsAttribute = true
	if !attrs.add(attrName, value) {
		debug.Printf("xmldata: dropping duplicate attribute %s", attrName)
	}
	return nil
}

// closeElement emits the end tag of an array or object element.
func (w *writer) closeElement(name token.Name) {
	if w.pendingNewLine {
		w.pendingNewLine = false
	} else if w.settings.PrettyPrint {
		w.depth--
		w.emitNewLine()
	}
	w.emitTag(name, nil, token.ElementEnd)
	w.pendingNewLine = true
}

// unclosed handles input that ran out inside the element name.
func (w *writer) unclosed(name token.Name) error {
	if w.settings.Strict {
		return &token.TokenError[token.CommonKind]{
			Err: token.ErrUnbalanced,
			Pos: w.stream.Pos(),
			Msg: fmt.Sprintf("input ended inside element %s", name),
		}
	}
	debug.Printf("xmldata: closing unclosed element %s", name)
	w.closeElement(name)
	return nil
}

func (w *writer) unexpected(tok token.Common) error {
	return token.UnexpectedToken(tok, w.stream.Pos())
}

func (w *writer) emitTag(name token.Name, attrs *attributeSet, kind token.MarkupKind) {
	if w.pendingNewLine {
		if w.settings.PrettyPrint {
			w.depth++
			w.emitNewLine()
		}
		w.pendingNewLine = false
	}

	if kind == token.ElementEnd {
		w.out = append(w.out, token.NewElementEnd())
		w.scopes.Pop()
		return
	}

	name.IsAttribute = false
	s := scope.New(name)
	if !w.scopes.ContainsNamespace(name.Namespace) {
		s.Bind(name.Prefix, name.Namespace)
	}
	w.scopes.Push(s)

	if kind == token.ElementVoid {
		w.out = append(w.out, token.NewElementVoid(name))
	} else {
		w.out = append(w.out, token.NewElementBegin(name))
	}
	if w.settings.DeclareNamespaces {
		for prefix, ns := range s.Bindings() {
			w.out = append(w.out, token.NewAttribute(namespaceDeclName(prefix)), token.NewPrimitiveValue(ns))
		}
	}
	attrs.each(func(attr attribute) {
		w.out = append(w.out, token.NewAttribute(attr.name), token.Retag(attr.value, token.PrimitiveValue))
	})

	if kind == token.ElementVoid {
		// void elements open and close at once
		w.scopes.Pop()
	}
}

func namespaceDeclName(prefix string) token.Name {
	if prefix == "" {
		return token.Name{Local: "xmlns", Namespace: scope.XMLNSNamespace, IsAttribute: true}
	}
	return token.Name{Local: prefix, Prefix: "xmlns", Namespace: scope.XMLNSNamespace, IsAttribute: true}
}

func (w *writer) emitNewLine() {
	tab, newLine := w.settings.Tab, w.settings.NewLine
	if tab == "" && newLine == "" {
		return
	}
	w.out = append(w.out, token.NewWhitespace(newLine+strings.Repeat(tab, w.depth)))
}

// encodeName makes name safe for markup, asking the resolver for a default if
// it is unspecified.
func (w *writer) encodeName(name token.Name, shape token.Shape) (token.Name, error) {
	if name.IsEmpty() {
		name = w.settings.Resolver.ResolveName(shape)
		if name.IsEmpty() {
			return name, invalidArgument(fmt.Sprintf("no default name for %s values", shape))
		}
	}
	return name.Encoded(), nil
}
