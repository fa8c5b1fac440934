package token

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedToken is returned when the kind of a token is illegal at
	// its position in the stream.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrAttributeValueNotPrimitive is returned when an attribute property is
	// not followed by a primitive value.
	ErrAttributeValueNotPrimitive = errors.New("attribute values must be primitive")

	// ErrInvalidArgument is returned when a transformation is started without
	// its required input or configuration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnbalanced is returned in strict mode when begin and end tokens do
	// not pair up.
	ErrUnbalanced = errors.New("unbalanced token stream")
)

// A TokenError reports the token that aborted a transformation and where it
// was found in the input stream.  Use errors.Is with the sentinel errors of
// this package to find out what went wrong.
type TokenError[K Kind] struct {
	Err error

	// Token is the offending token.  It is the zero token if the input ended
	// unexpectedly.
	Token Token[K]

	// Pos is the index of the offending token in the input stream.
	Pos int

	Msg string
}

func (e *TokenError[K]) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Err.Error()
	}
	if errors.Is(e.Err, ErrInvalidArgument) {
		return msg
	}
	if e.Token.Kind == 0 {
		return fmt.Sprintf("%s at end of stream (position %d)", msg, e.Pos)
	}
	return fmt.Sprintf("%s: %s at position %d", msg, e.Token, e.Pos)
}

func (e *TokenError[K]) Unwrap() error {
	return e.Err
}

// UnexpectedToken builds an ErrUnexpectedToken error for tok.
func UnexpectedToken[K Kind](tok Token[K], pos int) *TokenError[K] {
	return &TokenError[K]{
		Err:   ErrUnexpectedToken,
		Token: tok,
		Pos:   pos,
		Msg:   fmt.Sprintf("unexpected token (%s)", tok.Kind),
	}
}
