package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arnodel/jsonml/internal/scope"
	"github.com/arnodel/jsonml/token"
)

func TestDecoder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.Markup
	}{
		{
			name:  "elements and text",
			input: `<?xml version="1.0"?><root a="1"><b>hi</b><c/><d></d> <!-- c --></root>`,
			expected: []token.Markup{
				token.NewElementBegin(token.LocalName("root")),
				token.NewAttribute(token.LocalName("a")),
				token.NewText("1"),
				token.NewElementBegin(token.LocalName("b")),
				token.NewText("hi"),
				token.NewElementEnd(),
				token.NewElementVoid(token.LocalName("c")),
				token.NewElementVoid(token.LocalName("d")),
				token.NewWhitespace(" "),
				token.NewUnparsed(CommentName, "<!-- c -->"),
				token.NewElementEnd(),
			},
		},
		{
			name:  "entities",
			input: `<a>x &amp; y</a>`,
			expected: []token.Markup{
				token.NewElementBegin(token.LocalName("a")),
				token.NewText("x & y"),
				token.NewElementEnd(),
			},
		},
		{
			name:  "namespaces",
			input: `<x:a xmlns:x="urn:x" xmlns="urn:d"><b x:k="v"/></x:a>`,
			expected: []token.Markup{
				token.NewElementBegin(token.Name{Local: "a", Prefix: "x", Namespace: "urn:x"}),
				token.NewAttribute(token.Name{Local: "x", Prefix: "xmlns", Namespace: scope.XMLNSNamespace}),
				token.NewText("urn:x"),
				token.NewAttribute(token.Name{Local: "xmlns", Namespace: scope.XMLNSNamespace}),
				token.NewText("urn:d"),
				token.NewElementVoid(token.Name{Local: "b", Namespace: "urn:d"}),
				token.NewAttribute(token.Name{Local: "k", Prefix: "x", Namespace: "urn:x"}),
				token.NewText("v"),
				token.NewElementEnd(),
			},
		},
		{
			name:  "namespace scopes end with their element",
			input: `<a><b xmlns="urn:b"/><c/></a>`,
			expected: []token.Markup{
				token.NewElementBegin(token.LocalName("a")),
				token.NewElementVoid(token.Name{Local: "b", Namespace: "urn:b"}),
				token.NewAttribute(token.Name{Local: "xmlns", Namespace: scope.XMLNSNamespace}),
				token.NewText("urn:b"),
				token.NewElementVoid(token.LocalName("c")),
				token.NewElementEnd(),
			},
		},
		{
			name:  "directives and processing instructions",
			input: "<!DOCTYPE r><?pi data?>\n<r/>",
			expected: []token.Markup{
				token.NewUnparsed(DirectiveName, "<!DOCTYPE r>"),
				token.NewUnparsed(ProcInstName, "<?pi data?>"),
				token.NewWhitespace("\n"),
				token.NewElementVoid(token.LocalName("r")),
			},
		},
		{
			name: "empty input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := decodeString(tt.input)
			if err != nil {
				t.Fatalf("decode error: %s", err)
			}
			if diff := cmp.Diff(tt.expected, toks); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoderErrors(t *testing.T) {
	for _, input := range []string{"<a", "<a b=>", "<a>&unknown;</a>"} {
		if _, err := decodeString(input); err == nil {
			t.Errorf("expected an error for %q", input)
		}
	}
}

func TestDecoderHTML(t *testing.T) {
	d := NewDecoder(strings.NewReader("<p>a&nbsp;b</p>"))
	d.SetHTML()
	toks, err := collect(d)
	if err != nil {
		t.Fatalf("decode error: %s", err)
	}
	expected := []token.Markup{
		token.NewElementBegin(token.LocalName("p")),
		token.NewText("a\u00a0b"),
		token.NewElementEnd(),
	}
	if diff := cmp.Diff(expected, toks); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}
}

func decodeString(input string) ([]token.Markup, error) {
	return collect(NewDecoder(strings.NewReader(input)))
}

func collect(d *Decoder) ([]token.Markup, error) {
	ch := make(chan token.Markup)
	var err error
	go func() {
		err = d.Produce(ch)
		close(ch)
	}()
	toks := token.Collect[token.Markup](token.ChannelReadStream[token.Markup](ch))
	return toks, err
}
