package jsonml

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arnodel/jsonml/token"
)

var (
	nameA = token.LocalName("a")
	nameB = token.LocalName("b")
	nameC = token.LocalName("c")
)

func convert(t *testing.T, c *ReadConverter, in []token.Markup) ([]token.Common, error) {
	t.Helper()
	return c.Tokens(token.NewSliceReadStream(in))
}

func TestReadConverter(t *testing.T) {
	tests := []struct {
		name     string
		input    []token.Markup
		expected []token.Common
	}{
		{
			name: "element with attribute",
			input: []token.Markup{
				token.NewElementBegin(nameA),
				token.NewAttribute(token.LocalName("x")),
				token.NewText("1"),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewObjectBegin(),
				token.NewProperty(token.AttributeName("x")),
				token.NewPrimitive("1"),
				token.NewObjectEnd(),
				token.NewArrayEnd(),
			},
		},
		{
			name: "several attributes",
			input: []token.Markup{
				token.NewElementVoid(nameA),
				token.NewAttribute(token.LocalName("x")),
				token.NewText("1"),
				token.NewAttribute(token.LocalName("y")),
				token.NewPrimitiveValue(int64(2)),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewObjectBegin(),
				token.NewProperty(token.AttributeName("x")),
				token.NewPrimitive("1"),
				token.NewValueDelim(),
				token.NewProperty(token.AttributeName("y")),
				token.NewPrimitive(int64(2)),
				token.NewObjectEnd(),
				token.NewArrayEnd(),
			},
		},
		{
			name: "children",
			input: []token.Markup{
				token.NewElementBegin(nameA),
				token.NewText("x"),
				token.NewElementVoid(nameB),
				token.NewElementBegin(nameC),
				token.NewElementEnd(),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewPrimitive("x"),
				token.NewValueDelim(),
				token.NewArrayBegin(),
				token.NewPrimitive(nameB),
				token.NewArrayEnd(),
				token.NewValueDelim(),
				token.NewArrayBegin(),
				token.NewPrimitive(nameC),
				token.NewArrayEnd(),
				token.NewArrayEnd(),
			},
		},
		{
			name: "adjacent text is coalesced",
			input: []token.Markup{
				token.NewElementBegin(nameA),
				token.NewText("x"),
				token.NewWhitespace(" "),
				token.NewPrimitiveValue(int64(1)),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewPrimitive("x 1"),
				token.NewArrayEnd(),
			},
		},
		{
			name: "single primitive value keeps its type",
			input: []token.Markup{
				token.NewElementBegin(nameA),
				token.NewPrimitiveValue(true),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewPrimitive(true),
				token.NewArrayEnd(),
			},
		},
		{
			name: "unparsed blocks",
			input: []token.Markup{
				token.NewUnparsed(token.LocalName("#comment"), "<!--x-->"),
				token.NewElementVoid(nameA),
			},
			expected: []token.Common{
				token.NewNamedPrimitive(token.LocalName("#comment"), "<!--x-->"),
				token.NewValueDelim(),
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewArrayEnd(),
			},
		},
		{
			name: "unclosed elements are closed",
			input: []token.Markup{
				token.NewElementBegin(nameA),
				token.NewElementBegin(nameB),
				token.NewElementBegin(nameC),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewValueDelim(),
				token.NewArrayBegin(),
				token.NewPrimitive(nameB),
				token.NewValueDelim(),
				token.NewArrayBegin(),
				token.NewPrimitive(nameC),
				token.NewArrayEnd(),
				token.NewArrayEnd(),
				token.NewArrayEnd(),
			},
		},
		{
			name: "unmatched end tags are ignored",
			input: []token.Markup{
				token.NewElementEnd(),
				token.NewElementVoid(nameA),
				token.NewElementEnd(),
			},
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(nameA),
				token.NewArrayEnd(),
			},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert(t, &ReadConverter{}, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadConverterDepthBalance(t *testing.T) {
	got, err := convert(t, &ReadConverter{}, []token.Markup{
		token.NewElementBegin(nameA),
		token.NewElementBegin(nameB),
		token.NewElementBegin(nameC),
		token.NewElementEnd(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	depth := 0
	for _, tok := range got {
		switch tok.Kind {
		case token.ArrayBegin:
			depth++
		case token.ArrayEnd:
			depth--
		}
		if depth < 0 {
			t.Fatal("more ends than begins")
		}
	}
	if depth != 0 {
		t.Errorf("final depth is %d", depth)
	}
}

func TestReadConverterErrors(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		input    []token.Markup
		expected error
	}{
		{
			name:     "attribute outside a start tag",
			input:    []token.Markup{token.NewAttribute(nameA), token.NewText("1")},
			expected: token.ErrUnexpectedToken,
		},
		{
			name:     "missing attribute value",
			input:    []token.Markup{token.NewElementVoid(nameA), token.NewAttribute(nameB)},
			expected: token.ErrUnexpectedToken,
		},
		{
			name: "attribute value is not text",
			input: []token.Markup{
				token.NewElementVoid(nameA),
				token.NewAttribute(nameB),
				token.NewElementVoid(nameC),
			},
			expected: token.ErrUnexpectedToken,
		},
		{
			name:     "strict unclosed element",
			strict:   true,
			input:    []token.Markup{token.NewElementBegin(nameA)},
			expected: token.ErrUnbalanced,
		},
		{
			name:     "strict unmatched end tag",
			strict:   true,
			input:    []token.Markup{token.NewElementVoid(nameA), token.NewElementEnd()},
			expected: token.ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert(t, &ReadConverter{Strict: tt.strict}, tt.input)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestReadConverterNilInput(t *testing.T) {
	_, err := (&ReadConverter{}).Transform(nil)
	if !errors.Is(err, token.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

// pullCounter records how many tokens were pulled from the input.
type pullCounter struct {
	token.ReadStream[token.Markup]
	pulled int
}

func (p *pullCounter) Next() (token.Markup, bool) {
	tok, ok := p.ReadStream.Next()
	if ok {
		p.pulled++
	}
	return tok, ok
}

func TestReadConverterIsLazy(t *testing.T) {
	in := &pullCounter{ReadStream: token.NewSliceReadStream([]token.Markup{
		token.NewElementBegin(nameA),
		token.NewText("x"),
		token.NewElementEnd(),
		token.NewElementVoid(nameB),
	})}
	seq, err := (&ReadConverter{}).Transform(in)
	if err != nil {
		t.Fatal(err)
	}

	var got []token.Common
	for tok, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, tok)
		if tok.Kind == token.Primitive && tok.Value == nameA {
			break
		}
	}
	want := []token.Common{token.NewArrayBegin(), token.NewPrimitive(nameA)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}
	// The begin tag, plus one token of lookahead for attributes at most
	if in.pulled > 2 {
		t.Errorf("pulled %d tokens to produce 2", in.pulled)
	}
}
