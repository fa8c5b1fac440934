package token

import (
	"fmt"
	"strings"
)

// A Token is an item in a stream that encodes either a value tree (Common
// tokens) or a markup document (Markup tokens).  For example, the JSON value
//
//	{"id": 123, "tags": ["important", "new"]}
//
// would be represented by the stream of Common tokens (in pseudocode for
// clarity):
//
//	{            -> ObjectBegin
//	"id":        -> Property(id)
//	123,         -> Primitive(123)
//	"tags":      -> Property(tags)
//	[            -> ArrayBegin
//	"important", -> Primitive("important")
//	"new"        -> Primitive("new")
//	]            -> ArrayEnd
//	}            -> ObjectEnd
//
// while the markup <a x="1">hi</a> is the stream of Markup tokens
//
//	ElementBegin(a) Attribute(x) TextValue("1") TextValue("hi") ElementEnd
//
// Name is meaningful for begin tokens, properties and attributes.  Value holds
// primitive values, text and the raw content of unparsed blocks.
type Token[K Kind] struct {
	Kind  K
	Name  Name
	Value any
}

// Common tokens describe a value tree.
type Common = Token[CommonKind]

// Markup tokens describe a tag / attribute / text document.
type Markup = Token[MarkupKind]

// Kind is satisfied by the two closed sets of token kinds.
type Kind interface {
	CommonKind | MarkupKind
	fmt.Stringer
}

// CommonKind enumerates Common tokens.
type CommonKind uint8

const (
	ObjectBegin CommonKind = iota + 1
	ObjectEnd
	ArrayBegin
	ArrayEnd
	Property
	Primitive
	// ValueDelim separates values.  It is a formatting hint only: consumers
	// never need it to find the structure of a stream.
	ValueDelim
)

var commonKindNames = [...]string{
	ObjectBegin: "ObjectBegin",
	ObjectEnd:   "ObjectEnd",
	ArrayBegin:  "ArrayBegin",
	ArrayEnd:    "ArrayEnd",
	Property:    "Property",
	Primitive:   "Primitive",
	ValueDelim:  "ValueDelim",
}

func (k CommonKind) String() string {
	if int(k) < len(commonKindNames) && commonKindNames[k] != "" {
		return commonKindNames[k]
	}
	return fmt.Sprintf("CommonKind(%d)", uint8(k))
}

// MarkupKind enumerates Markup tokens.
type MarkupKind uint8

const (
	ElementBegin MarkupKind = iota + 1
	ElementVoid
	ElementEnd
	Attribute
	TextValue
	Whitespace
	UnparsedBlock
	// PrimitiveValue is a typed value node, e.g. a number taken from a value
	// tree.  Writers render it as text.
	PrimitiveValue
)

var markupKindNames = [...]string{
	ElementBegin:   "ElementBegin",
	ElementVoid:    "ElementVoid",
	ElementEnd:     "ElementEnd",
	Attribute:      "Attribute",
	TextValue:      "TextValue",
	Whitespace:     "Whitespace",
	UnparsedBlock:  "UnparsedBlock",
	PrimitiveValue: "PrimitiveValue",
}

func (k MarkupKind) String() string {
	if int(k) < len(markupKindNames) && markupKindNames[k] != "" {
		return markupKindNames[k]
	}
	return fmt.Sprintf("MarkupKind(%d)", uint8(k))
}

func (t Token[K]) String() string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	if t.Name.IsEmpty() && t.Value == nil {
		return b.String()
	}
	b.WriteByte('(')
	if !t.Name.IsEmpty() {
		b.WriteString(t.Name.String())
		if t.Value != nil {
			b.WriteString(", ")
		}
	}
	if t.Value != nil {
		fmt.Fprintf(&b, "%#v", t.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// ValueString returns the value of the token as text.  Strings are returned
// verbatim, names in their prefix:local form and nil as the empty string.
func (t Token[K]) ValueString() string {
	return ValueString(t.Value)
}

// ValueString renders a primitive value as text.
func ValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Name:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Retag returns a copy of t with the given kind, keeping its name and value.
func Retag[To, From Kind](t Token[From], kind To) Token[To] {
	return Token[To]{Kind: kind, Name: t.Name, Value: t.Value}
}

//
// Common token constructors
//

func NewObjectBegin() Common {
	return Common{Kind: ObjectBegin}
}

// NewNamedObjectBegin starts an object that carries its own element name.
func NewNamedObjectBegin(name Name) Common {
	return Common{Kind: ObjectBegin, Name: name}
}

func NewObjectEnd() Common {
	return Common{Kind: ObjectEnd}
}

func NewArrayBegin() Common {
	return Common{Kind: ArrayBegin}
}

// NewNamedArrayBegin starts an array that carries its own element name.
func NewNamedArrayBegin(name Name) Common {
	return Common{Kind: ArrayBegin, Name: name}
}

func NewArrayEnd() Common {
	return Common{Kind: ArrayEnd}
}

func NewProperty(name Name) Common {
	return Common{Kind: Property, Name: name}
}

func NewPrimitive(value any) Common {
	return Common{Kind: Primitive, Value: value}
}

// NewNamedPrimitive returns a primitive that carries a name, used for opaque
// values such as unparsed markup blocks.
func NewNamedPrimitive(name Name, value any) Common {
	return Common{Kind: Primitive, Name: name, Value: value}
}

func NewValueDelim() Common {
	return Common{Kind: ValueDelim}
}

//
// Markup token constructors
//

func NewElementBegin(name Name) Markup {
	return Markup{Kind: ElementBegin, Name: name}
}

func NewElementVoid(name Name) Markup {
	return Markup{Kind: ElementVoid, Name: name}
}

func NewElementEnd() Markup {
	return Markup{Kind: ElementEnd}
}

func NewAttribute(name Name) Markup {
	name.IsAttribute = true
	return Markup{Kind: Attribute, Name: name}
}

func NewText(text string) Markup {
	return Markup{Kind: TextValue, Value: text}
}

func NewWhitespace(text string) Markup {
	return Markup{Kind: Whitespace, Value: text}
}

// NewUnparsed returns a block passed through verbatim (comments, processing
// instructions...).  The name identifies the kind of block, raw is its full
// literal text.
func NewUnparsed(name Name, raw string) Markup {
	return Markup{Kind: UnparsedBlock, Name: name, Value: raw}
}

func NewPrimitiveValue(value any) Markup {
	return Markup{Kind: PrimitiveValue, Value: value}
}
