package token

// A StreamSource produces a token stream, e.g. by decoding some text.
type StreamSource[T any] interface {
	Produce(out chan<- T) error
}

// A StreamSink consumes a token stream, e.g. by encoding it as text.
type StreamSink[T any] interface {
	Consume(in ReadStream[T]) error
}

// StartStream uses the source to start producing items and returns a
// channel where these items are produced.  This is always fast because the
// source is computed in a goroutine.
//
// As a source can produce errors, a handleError function can be provided.
func StartStream[T any](source StreamSource[T], handleError func(error)) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		err := source.Produce(out)
		if err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}
