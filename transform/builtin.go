// Package transform provides token stream filters.  They all wrap a
// token.ReadStream and are read streams themselves, so they can be chained
// between a decoder and a converter or encoder.
package transform

import (
	"log"

	"github.com/arnodel/jsonml/token"
)

// MaxDepthFilter truncates the stream to a given depth.  Collections which
// are more deeply nested than MaxDepth are emptied.
//
// E.g.
//
//	[1, 2, {"x": [3, 4], "y": 2}]
//
// At MaxDepth=0:
//
//	[]
//
// At MaxDepth=1
//
//	[1, 2, {}]
//
// At MaxDepth=2
//
//	[1, 2, {"x": [], "y": 2}]
type MaxDepthFilter struct {
	MaxDepth int

	in    token.ReadStream[token.Common]
	depth int
}

var _ token.ReadStream[token.Common] = &MaxDepthFilter{}

func NewMaxDepthFilter(in token.ReadStream[token.Common], maxDepth int) *MaxDepthFilter {
	return &MaxDepthFilter{MaxDepth: maxDepth, in: in}
}

func (f *MaxDepthFilter) Next() (token.Common, bool) {
	for {
		tok, ok := f.in.Next()
		if !ok {
			return tok, false
		}
		postIncr := 0
		switch tok.Kind {
		case token.ArrayBegin, token.ObjectBegin:
			postIncr++
		case token.ArrayEnd, token.ObjectEnd:
			f.depth--
		}
		keep := f.depth <= f.MaxDepth
		f.depth += postIncr
		if keep {
			return tok, true
		}
	}
}

// ExplodeArray turns top level arrays into a stream of values.  It copies
// other values unchanged.
//
// E.g.
//
//	[1, 2, 3]        -> 1 2 3
//	{"x": 2, "y": 5} -> {"x": 2, "y": 5}
type ExplodeArray struct {
	in        token.ReadStream[token.Common]
	depth     int
	exploding bool
}

var _ token.ReadStream[token.Common] = &ExplodeArray{}

func NewExplodeArray(in token.ReadStream[token.Common]) *ExplodeArray {
	return &ExplodeArray{in: in}
}

func (f *ExplodeArray) Next() (token.Common, bool) {
	for {
		tok, ok := f.in.Next()
		if !ok {
			return tok, false
		}
		switch tok.Kind {
		case token.ArrayBegin, token.ObjectBegin:
			f.depth++
			if f.depth == 1 && tok.Kind == token.ArrayBegin {
				f.exploding = true
				continue
			}
		case token.ArrayEnd, token.ObjectEnd:
			f.depth--
			if f.depth == 0 && f.exploding {
				f.exploding = false
				continue
			}
		}
		return tok, true
	}
}

// JoinStream is the reverse of ExplodeArray.  It turns a stream of values
// into a single array.
//
// E.g.
//
//	1 2 3          -> [1, 2, 3]
//	[1, 2, 3]      -> [[1, 2, 3]]
//	<empty stream> -> []
type JoinStream struct {
	in      token.ReadStream[token.Common]
	started bool
	done    bool
}

var _ token.ReadStream[token.Common] = &JoinStream{}

func NewJoinStream(in token.ReadStream[token.Common]) *JoinStream {
	return &JoinStream{in: in}
}

func (f *JoinStream) Next() (token.Common, bool) {
	switch {
	case f.done:
		return token.Common{}, false
	case !f.started:
		f.started = true
		return token.NewArrayBegin(), true
	}
	if tok, ok := f.in.Next(); ok {
		return tok, true
	}
	f.done = true
	return token.NewArrayEnd(), true
}

// Trace logs all the stream items as they are read, passing them on
// unchanged.  It's useful for debugging streams.
type Trace[T any] struct {
	Prefix string

	in token.ReadStream[T]
}

var _ token.ReadStream[token.Markup] = &Trace[token.Markup]{}

func NewTrace[T any](in token.ReadStream[T], prefix string) *Trace[T] {
	return &Trace[T]{Prefix: prefix, in: in}
}

func (t *Trace[T]) Next() (T, bool) {
	item, ok := t.in.Next()
	if ok {
		log.Printf("%s%v", t.Prefix, item)
	} else {
		log.Printf("%s<end of stream>", t.Prefix)
	}
	return item, ok
}

// DropWhitespace removes Whitespace tokens from a markup stream, i.e. text
// made only of spaces and new lines.  Attribute values are kept even if they
// are whitespace.
type DropWhitespace struct {
	in             token.ReadStream[token.Markup]
	afterAttribute bool
}

var _ token.ReadStream[token.Markup] = &DropWhitespace{}

func NewDropWhitespace(in token.ReadStream[token.Markup]) *DropWhitespace {
	return &DropWhitespace{in: in}
}

func (f *DropWhitespace) Next() (token.Markup, bool) {
	for {
		tok, ok := f.in.Next()
		if !ok {
			return tok, false
		}
		keep := tok.Kind != token.Whitespace || f.afterAttribute
		f.afterAttribute = tok.Kind == token.Attribute
		if keep {
			return tok, true
		}
	}
}
