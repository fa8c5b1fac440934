package csv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arnodel/jsonml/token"
)

func decodeCSV(t *testing.T, decoder *Decoder) ([]token.Common, error) {
	t.Helper()
	ch := make(chan token.Common)
	var err error
	go func() {
		defer close(ch)
		err = decoder.Produce(ch)
	}()
	toks := token.Collect[token.Common](token.ChannelReadStream[token.Common](ch))
	return toks, err
}

// TestDecoderArrays tests basic CSV decoding to arrays
func TestDecoderArrays(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.Common
	}{
		{
			name:  "single row",
			input: "1,2,3",
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive(int64(1)),
				token.NewPrimitive(int64(2)),
				token.NewPrimitive(int64(3)),
				token.NewArrayEnd(),
			},
		},
		{
			name:  "rows of different lengths",
			input: "a\nb,c\n",
			expected: []token.Common{
				token.NewArrayBegin(),
				token.NewPrimitive("a"),
				token.NewArrayEnd(),
				token.NewArrayBegin(),
				token.NewPrimitive("b"),
				token.NewPrimitive("c"),
				token.NewArrayEnd(),
			},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := decodeCSV(t, NewDecoder(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tt.expected, toks); diff != "" {
				t.Errorf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecoderObjects tests CSV decoding to objects, with and without header
func TestDecoderObjects(t *testing.T) {
	decoder := NewDecoder(strings.NewReader("name, age\nbob,42,x\n"))
	decoder.HasHeader = true
	decoder.RecordsProduceObjects = true
	toks, err := decodeCSV(t, decoder)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expected := []token.Common{
		token.NewObjectBegin(),
		token.NewProperty(token.LocalName("name")),
		token.NewPrimitive("bob"),
		token.NewProperty(token.LocalName("age")),
		token.NewPrimitive(int64(42)),
		token.NewProperty(token.LocalName("field_3")),
		token.NewPrimitive("x"),
		token.NewObjectEnd(),
	}
	if diff := cmp.Diff(expected, toks); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}

	decoder = NewDecoder(strings.NewReader("1,2"))
	decoder.RecordsProduceObjects = true
	toks, err = decodeCSV(t, decoder)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expected = []token.Common{
		token.NewObjectBegin(),
		token.NewProperty(token.LocalName("field_1")),
		token.NewPrimitive(int64(1)),
		token.NewProperty(token.LocalName("field_2")),
		token.NewPrimitive(int64(2)),
		token.NewObjectEnd(),
	}
	if diff := cmp.Diff(expected, toks); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}
}

// TestFieldValue tests the typing of field values
func TestFieldValue(t *testing.T) {
	tests := []struct {
		field    string
		expected any
	}{
		{"", nil},
		{"true", true},
		{"false", false},
		{"TRUE", "TRUE"},
		{"42", int64(42)},
		{"-1.5", -1.5},
		{"1e3", float64(1000)},
		{"007", "007"},
		{"1.2.3", "1.2.3"},
		{"-", "-"},
		{"hello world", "hello world"},
		{`say "hi"`, `say "hi"`},
	}

	for _, tt := range tests {
		if got := fieldValue(tt.field); got != tt.expected {
			t.Errorf("field %q: expected %#v, got %#v", tt.field, tt.expected, got)
		}
	}
}

// TestDecoderMalformedCSV tests that reader errors are returned
func TestDecoderMalformedCSV(t *testing.T) {
	_, err := decodeCSV(t, NewDecoder(strings.NewReader("a,\"b\n")))
	if err == nil {
		t.Error("expected an error for an unterminated quote")
	}
}
