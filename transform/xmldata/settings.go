package xmldata

import (
	"errors"

	"github.com/arnodel/jsonml/naming"
)

// Settings configure an OutTransformer.
type Settings struct {
	// PrettyPrint inserts Whitespace tokens to lay out nested elements on
	// separate, indented lines.
	PrettyPrint bool

	// Tab is repeated once per nesting level when pretty printing.
	Tab string

	// NewLine starts every pretty printed line.
	NewLine string

	// Resolver names values that have no name of their own, e.g. the root
	// value.  It is required.
	Resolver naming.Resolver

	// DeclareNamespaces emits an xmlns attribute on the element that first
	// uses a namespace.
	DeclareNamespaces bool

	// Strict reports input that ends inside an open array or object as
	// token.ErrUnbalanced instead of closing the open elements.
	Strict bool
}

// DefaultSettings returns compact output settings using
// naming.DefaultResolver.
func DefaultSettings() *Settings {
	return &Settings{
		Tab:      "\t",
		NewLine:  "\n",
		Resolver: naming.DefaultResolver,
	}
}

// PrettySettings returns DefaultSettings with pretty printing enabled.
func PrettySettings() *Settings {
	s := DefaultSettings()
	s.PrettyPrint = true
	return s
}

func (s *Settings) validate() error {
	if s == nil {
		return errors.New("nil settings")
	}
	if s.Resolver == nil {
		return errors.New("nil name resolver")
	}
	return nil
}
