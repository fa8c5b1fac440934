package json

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/arnodel/jsonml/internal/format"
	"github.com/arnodel/jsonml/token"
)

// An Encoder outputs a stream of Common tokens as JSON text, using the given
// Printer for formatting.
type Encoder struct {
	format.Printer
	*format.Colorizer

	// Arrays of primitives that fit within CompactWidthLimit are printed on a
	// single line.  Zero means never.
	CompactWidthLimit int

	// AttributePrefix is put in front of the keys of attribute properties.
	AttributePrefix string
}

var _ token.StreamSink[token.Common] = &Encoder{}

// Consume formats the values of the stream.  ValueDelim tokens are ignored,
// the structure is given by the begin and end tokens.
//
// An error can be returned if the stream is not well formed or if the
// Printer could not perform some writing operation.  A typical example is if
// it attempts to write to a closed pipe.
func (e *Encoder) Consume(in token.ReadStream[token.Common]) (err error) {
	defer format.CatchPrinterError(&err)
	s := token.NewStream(in)
	for !s.Completed() {
		if s.Peek().Kind == token.ValueDelim {
			s.Pop()
			continue
		}
		if err := e.writeValue(s); err != nil {
			return err
		}
		e.Printer.Reset()
	}
	return nil
}

func (e *Encoder) writeValue(s *token.Stream[token.Common]) error {
	if err := skipDelims(s); err != nil {
		return err
	}
	tok := s.Pop()
	switch tok.Kind {
	case token.Primitive:
		lit, shape := ScalarLiteral(tok.Value)
		e.Colorizer.PrintScalar(e.Printer, shape, lit)
		return nil
	case token.ObjectBegin:
		return e.writeObject(s)
	case token.ArrayBegin:
		return e.writeArray(s)
	default:
		return token.UnexpectedToken(tok, s.Pos()-1)
	}
}

func (e *Encoder) writeObject(s *token.Stream[token.Common]) error {
	e.PrintBytes(openObjectBytes)
	firstItem := true
	for {
		if err := skipDelims(s); err != nil {
			return err
		}
		tok := s.Pop()
		switch tok.Kind {
		case token.ObjectEnd:
			if !firstItem {
				e.Dedent()
			}
			e.PrintBytes(closeObjectBytes)
			return nil
		case token.Property:
			if !firstItem {
				e.PrintBytes(itemSeparatorBytes)
				e.NewLine()
			} else {
				e.Indent()
				firstItem = false
			}
			key := tok.Name.String()
			if tok.Name.IsAttribute {
				key = e.AttributePrefix + key
			}
			e.Colorizer.PrintKey(e.Printer, QuoteString(key))
			e.PrintBytes(keyValueSeparatorBytes)
			if err := e.writeValue(s); err != nil {
				return err
			}
		default:
			return token.UnexpectedToken(tok, s.Pos()-1)
		}
	}
}

type scalarItem struct {
	lit   []byte
	shape token.Shape
}

func (e *Encoder) writeArray(s *token.Stream[token.Common]) error {
	e.PrintBytes(openArrayBytes)

	// Collect primitive items while the array may still fit on one line.
	var pendingItems []scalarItem
	totalWidth := -2
	compact := e.CompactWidthLimit > 0
	for compact {
		if err := skipDelims(s); err != nil {
			return err
		}
		tok := s.Peek()
		if tok.Kind == token.ArrayEnd {
			s.Pop()
			for i, item := range pendingItems {
				if i > 0 {
					e.PrintBytes(compactItemSeparatorBytes)
				}
				e.Colorizer.PrintScalar(e.Printer, item.shape, item.lit)
			}
			e.PrintBytes(closeArrayBytes)
			return nil
		}
		if tok.Kind != token.Primitive {
			break
		}
		s.Pop()
		lit, shape := ScalarLiteral(tok.Value)
		pendingItems = append(pendingItems, scalarItem{lit: lit, shape: shape})
		totalWidth += len(lit) + 2 // 2 for ", "
		compact = totalWidth <= e.CompactWidthLimit
	}

	firstItem := true
	for _, item := range pendingItems {
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
			firstItem = false
		}
		e.Colorizer.PrintScalar(e.Printer, item.shape, item.lit)
	}
	for {
		if err := skipDelims(s); err != nil {
			return err
		}
		if s.Peek().Kind == token.ArrayEnd {
			s.Pop()
			if !firstItem {
				e.Dedent()
			}
			e.PrintBytes(closeArrayBytes)
			return nil
		}
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
			firstItem = false
		}
		if err := e.writeValue(s); err != nil {
			return err
		}
	}
}

// skipDelims discards ValueDelim tokens and fails if the stream ends.
func skipDelims(s *token.Stream[token.Common]) error {
	for !s.Completed() {
		if s.Peek().Kind != token.ValueDelim {
			return nil
		}
		s.Pop()
	}
	return &token.TokenError[token.CommonKind]{
		Err: token.ErrUnbalanced,
		Pos: s.Pos(),
		Msg: "unexpected end of stream",
	}
}

// ScalarLiteral returns the JSON literal for a primitive value.  Names are
// written as strings, values that JSON cannot represent (NaN, infinities) as
// null, and opaque values as the string of their text.
func ScalarLiteral(v any) ([]byte, token.Shape) {
	shape := token.ShapeOf(v)
	switch x := v.(type) {
	case nil:
		return nullBytes, token.ShapeNull
	case bool:
		if x {
			return trueBytes, shape
		}
		return falseBytes, shape
	case int64:
		return strconv.AppendInt(nil, x, 10), shape
	case int:
		return strconv.AppendInt(nil, int64(x), 10), shape
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nullBytes, token.ShapeNull
		}
		return strconv.AppendFloat(nil, x, 'g', -1, 64), shape
	case json.Number:
		return []byte(x), shape
	}
	switch shape {
	case token.ShapeNumber:
		return []byte(token.ValueString(v)), shape
	default:
		return QuoteString(token.ValueString(v)), token.ShapeString
	}
}

// QuoteString returns the JSON string literal for s.
func QuoteString(s string) []byte {
	var b bytes.Buffer
	encoder := json.NewEncoder(&b)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		panic(err)
	}
	// Remove the new line at the end
	return bytes.TrimSuffix(b.Bytes(), newLineBytes)
}

var (
	openObjectBytes           = []byte("{")
	closeObjectBytes          = []byte("}")
	openArrayBytes            = []byte("[")
	closeArrayBytes           = []byte("]")
	itemSeparatorBytes        = []byte(",")
	compactItemSeparatorBytes = []byte(", ")
	keyValueSeparatorBytes    = []byte(": ")
	newLineBytes              = []byte("\n")
)
