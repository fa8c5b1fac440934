package token

import "iter"

// A ReadStream is a source of items pulled one at a time.  Next returns false
// once the stream is exhausted, and keeps returning false afterwards.
type ReadStream[T any] interface {
	Next() (T, bool)
}

type ChannelReadStream[T any] <-chan T

var _ ReadStream[Common] = make(ChannelReadStream[Common])

func (r ChannelReadStream[T]) Next() (T, bool) {
	tok, ok := <-r
	return tok, ok
}

type SliceReadStream[T any] struct {
	toks []T
}

var _ ReadStream[Markup] = &SliceReadStream[Markup]{}

func NewSliceReadStream[T any](toks []T) *SliceReadStream[T] {
	return &SliceReadStream[T]{toks: toks}
}

func (r *SliceReadStream[T]) Next() (tok T, ok bool) {
	if len(r.toks) > 0 {
		tok, ok = r.toks[0], true
		r.toks = r.toks[1:]
	}
	return
}

// Stream gives one item of lookahead over a ReadStream.  The underlying
// stream is pulled lazily, at most once per position.
//
// Check Completed before calling Peek or Pop: they panic past the end of the
// stream.
type Stream[T any] struct {
	src     ReadStream[T]
	current T
	pos     int
	fetched bool
	done    bool
}

func NewStream[T any](src ReadStream[T]) *Stream[T] {
	return &Stream[T]{src: src}
}

func (s *Stream[T]) fetch() {
	if s.fetched || s.done {
		return
	}
	tok, ok := s.src.Next()
	if !ok {
		s.done = true
		return
	}
	s.current = tok
	s.fetched = true
}

// Completed reports whether the stream is exhausted.
func (s *Stream[T]) Completed() bool {
	s.fetch()
	return s.done
}

// Peek returns the current item without consuming it.
func (s *Stream[T]) Peek() T {
	if s.Completed() {
		panic("token stream: peek past end of stream")
	}
	return s.current
}

// Pop returns the current item and advances to the next one.
func (s *Stream[T]) Pop() T {
	if s.Completed() {
		panic("token stream: pop past end of stream")
	}
	tok := s.current
	var zero T
	s.current = zero
	s.fetched = false
	s.pos++
	return tok
}

// Pos is the zero based index of the current item.
func (s *Stream[T]) Pos() int {
	return s.pos
}

// Collect drains a ReadStream into a slice.
func Collect[T any](src ReadStream[T]) []T {
	var toks []T
	for {
		tok, ok := src.Next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}

// CollectSeq2 drains a fallible token sequence, stopping at the first error.
// The tokens produced before the error are returned with it.
func CollectSeq2[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var toks []T
	for tok, err := range seq {
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}
