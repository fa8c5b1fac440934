package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/arnodel/jsonml/token"
)

func TestDefaultPrinter(t *testing.T) {
	tests := []struct {
		name       string
		indentSize int
		expected   string
	}{
		{"indented", 2, "[\n  1\n]\n"},
		{"no indentation", 0, "[\n1\n]\n"},
		{"single line", -1, "[1]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			p := &DefaultPrinter{Writer: &b, IndentSize: tt.indentSize}
			p.PrintBytes([]byte("["))
			p.Indent()
			p.PrintBytes([]byte("1"))
			p.Dedent()
			p.PrintBytes([]byte("]"))
			p.Reset()
			if b.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, b.String())
			}
		})
	}
}

type countingFlusher struct {
	count int
}

func (f *countingFlusher) Flush() error {
	f.count++
	return nil
}

func TestDefaultPrinterFlush(t *testing.T) {
	var b bytes.Buffer
	f := &countingFlusher{}
	p := &DefaultPrinter{Writer: &b, Flusher: f}
	p.PrintBytes([]byte("x"))
	p.Reset()
	p.Reset()
	if f.count != 2 {
		t.Errorf("expected 2 flushes, got %d", f.count)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestCatchPrinterError(t *testing.T) {
	write := func() (err error) {
		defer CatchPrinterError(&err)
		p := &DefaultPrinter{Writer: failingWriter{}}
		p.PrintBytes([]byte("x"))
		return nil
	}
	err := write()
	var perr *PrinterError
	if !errors.As(err, &perr) || !errors.Is(err, errWrite) {
		t.Fatalf("expected a printer error, got %v", err)
	}

	defer func() {
		if r := recover(); r != "other" {
			t.Errorf("other panics should go through, got %v", r)
		}
	}()
	func() (err error) {
		defer CatchPrinterError(&err)
		panic("other")
	}()
}

func TestColorizer(t *testing.T) {
	var b bytes.Buffer
	p := &DefaultPrinter{Writer: &b}

	var nilColorizer *Colorizer
	nilColorizer.PrintKey(p, []byte("k"))
	nilColorizer.PrintScalar(p, token.ShapeString, []byte("s"))
	if b.String() != "ks" {
		t.Errorf("nil colorizer should print verbatim, got %q", b.String())
	}

	b.Reset()
	c := &Colorizer{
		KeyColorCode:     []byte("<k>"),
		ScalarColorCodes: [4][]byte{token.ShapeNumber: []byte("<n>")},
		TagColorCode:     []byte("<t>"),
		ResetCode:        []byte("</>"),
	}
	c.PrintKey(p, []byte("a"))
	c.PrintScalar(p, token.ShapeNumber, []byte("1"))
	c.PrintScalar(p, token.ShapeString, []byte("s"))
	c.PrintScalar(p, token.ShapeObject, []byte("o"))
	c.PrintTag(p, []byte("<a>"))
	c.PrintAttribute(p, []byte("x"))
	if expected := "<k>a</><n>1</>s" + "o<t><a></>x"; b.String() != expected {
		t.Errorf("expected %q, got %q", expected, b.String())
	}
}
