// Package jsonml turns markup token streams into value trees using the JsonML
// convention.
//
// An element becomes an array whose first item is the tag name, followed by
// an object holding the attributes (if there are any), followed by the
// children in document order.  E.g.
//
//	<p class="x">Hello <b>you</b></p>
//
// becomes
//
//	["p", {"class": "x"}, "Hello ", ["b", "you"]]
package jsonml

import (
	"iter"
	"strings"

	"github.com/arnodel/jsonml/internal/debug"
	"github.com/arnodel/jsonml/token"
)

// A ReadConverter transforms Markup tokens into Common tokens.
//
// By default it repairs badly nested input: end tags with no matching begin
// tag are ignored and elements still open when the input runs out are
// closed.  Set Strict to report both as token.ErrUnbalanced instead.
type ReadConverter struct {
	Strict bool
}

// Transform returns the Common token sequence for the markup read from in.
// Tokens are produced lazily: in is only pulled as far as needed to produce
// the token the caller asks for, so arbitrarily large input can be converted
// with bounded memory.
//
// The sequence stops at the first error, which is yielded with a zero token.
// The returned error is only non-nil if in is nil.
func (c *ReadConverter) Transform(in token.ReadStream[token.Markup]) (iter.Seq2[token.Common, error], error) {
	if in == nil {
		return nil, &token.TokenError[token.MarkupKind]{Err: token.ErrInvalidArgument, Msg: "nil input stream"}
	}
	strict := c.Strict
	return func(yield func(token.Common, error) bool) {
		r := reader{stream: token.NewStream(in), strict: strict, yield: yield}
		if err := r.run(); err != nil && err != errStopped {
			yield(token.Common{}, err)
		}
	}, nil
}

// Tokens is a convenience wrapper around Transform that collects the whole
// output.
func (c *ReadConverter) Tokens(in token.ReadStream[token.Markup]) ([]token.Common, error) {
	seq, err := c.Transform(in)
	if err != nil {
		return nil, err
	}
	return token.CollectSeq2(seq)
}

// reader holds the state of one transformation.
type reader struct {
	stream *token.Stream[token.Markup]
	strict bool
	yield  func(token.Common, error) bool

	// number of open elements, each one an open array in the output
	depth int

	// a value was already written in the current array
	needsValueDelim bool
}

type stopped struct{}

func (stopped) Error() string { return "consumer stopped" }

// errStopped is returned internally when the consumer breaks out of the loop.
var errStopped error = stopped{}

func (r *reader) emit(tok token.Common) error {
	if !r.yield(tok, nil) {
		return errStopped
	}
	return nil
}

func (r *reader) emitAll(toks ...token.Common) error {
	for _, tok := range toks {
		if err := r.emit(tok); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) run() error {
	for !r.stream.Completed() {
		var err error
		tok := r.stream.Peek()
		switch tok.Kind {
		case token.ElementBegin, token.ElementVoid:
			err = r.element()
		case token.ElementEnd:
			err = r.elementEnd()
		case token.TextValue, token.Whitespace, token.PrimitiveValue:
			err = r.text()
		case token.UnparsedBlock:
			r.stream.Pop()
			err = r.delimited(token.NewNamedPrimitive(tok.Name, tok.Value))
		default:
			// Attributes are only legal straight after a begin tag.
			return token.UnexpectedToken(tok, r.stream.Pos())
		}
		if err != nil {
			return err
		}
	}
	if r.depth > 0 {
		if r.strict {
			return &token.TokenError[token.MarkupKind]{
				Err: token.ErrUnbalanced,
				Pos: r.stream.Pos(),
				Msg: "input ended with unclosed elements",
			}
		}
		debug.Printf("jsonml: closing %d unclosed element(s)", r.depth)
	}
	for r.depth > 0 {
		r.depth--
		if err := r.emit(token.NewArrayEnd()); err != nil {
			return err
		}
	}
	return nil
}

// delimited emits a value in the current array, preceded by a delimiter if it
// is not the first.
func (r *reader) delimited(tok token.Common) error {
	if r.needsValueDelim {
		if err := r.emit(token.NewValueDelim()); err != nil {
			return err
		}
	}
	r.needsValueDelim = true
	return r.emit(tok)
}

func (r *reader) element() error {
	tok := r.stream.Pop()
	isVoid := tok.Kind == token.ElementVoid

	if r.needsValueDelim {
		if err := r.emit(token.NewValueDelim()); err != nil {
			return err
		}
		r.needsValueDelim = false
	}
	if err := r.emitAll(token.NewArrayBegin(), token.NewPrimitive(tok.Name)); err != nil {
		return err
	}

	hasAttributes := false
	for !r.stream.Completed() && r.stream.Peek().Kind == token.Attribute {
		attr := r.stream.Pop()
		if !hasAttributes {
			hasAttributes = true
			if err := r.emitAll(token.NewValueDelim(), token.NewObjectBegin()); err != nil {
				return err
			}
		} else if err := r.emit(token.NewValueDelim()); err != nil {
			return err
		}
		if err := r.emit(token.NewProperty(attr.Name)); err != nil {
			return err
		}
		if r.stream.Completed() {
			return &token.TokenError[token.MarkupKind]{
				Err: token.ErrUnexpectedToken,
				Pos: r.stream.Pos(),
				Msg: "missing attribute value",
			}
		}
		value := r.stream.Peek()
		switch value.Kind {
		case token.TextValue, token.Whitespace, token.PrimitiveValue:
			if err := r.emit(token.NewPrimitive(value.Value)); err != nil {
				return err
			}
		case token.UnparsedBlock:
			if err := r.emit(token.NewNamedPrimitive(value.Name, value.Value)); err != nil {
				return err
			}
		default:
			return token.UnexpectedToken(value, r.stream.Pos())
		}
		r.stream.Pop()
	}
	if hasAttributes {
		if err := r.emit(token.NewObjectEnd()); err != nil {
			return err
		}
	}
	r.needsValueDelim = true

	if isVoid {
		return r.emit(token.NewArrayEnd())
	}
	r.depth++
	return nil
}

func (r *reader) elementEnd() error {
	tok := r.stream.Pop()
	if r.depth == 0 {
		if r.strict {
			return &token.TokenError[token.MarkupKind]{
				Err:   token.ErrUnbalanced,
				Token: tok,
				Pos:   r.stream.Pos() - 1,
				Msg:   "end tag without matching begin tag",
			}
		}
		debug.Printf("jsonml: ignoring unmatched end tag at position %d", r.stream.Pos()-1)
		return nil
	}
	r.depth--
	r.needsValueDelim = true
	return r.emit(token.NewArrayEnd())
}

// text coalesces adjacent text nodes into a single primitive.
func (r *reader) text() error {
	first := r.stream.Pop()
	if r.stream.Completed() || !isText(r.stream.Peek().Kind) {
		return r.delimited(token.NewPrimitive(textValue(first)))
	}
	var b strings.Builder
	b.WriteString(first.ValueString())
	for !r.stream.Completed() && isText(r.stream.Peek().Kind) {
		b.WriteString(r.stream.Pop().ValueString())
	}
	return r.delimited(token.NewPrimitive(b.String()))
}

func isText(k token.MarkupKind) bool {
	return k == token.TextValue || k == token.Whitespace || k == token.PrimitiveValue
}

// textValue keeps typed values as they are, text nodes are always strings.
func textValue(tok token.Markup) any {
	if tok.Kind == token.PrimitiveValue {
		return tok.Value
	}
	return tok.ValueString()
}
