// Package naming provides default element names for values that do not
// carry one.
//
// A converter that needs to turn a value into an element and has no name for
// it asks a Resolver, giving it the shape of the value:
//
//	var r naming.Resolver = naming.DefaultResolver
//	r.ResolveName(token.ShapeArray) // -> "array"
package naming

import "github.com/arnodel/jsonml/token"

// A Resolver returns a default name for a value of the given shape.
type Resolver interface {
	ResolveName(shape token.Shape) token.Name
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(shape token.Shape) token.Name

func (f ResolverFunc) ResolveName(shape token.Shape) token.Name {
	return f(shape)
}

// DefaultResolver names values after their shape: "object", "array",
// "string", "number", "boolean", "null" and "opaque".
var DefaultResolver Resolver = ResolverFunc(func(shape token.Shape) token.Name {
	return token.LocalName(shape.String())
})

// Fixed gives the same name to values of all shapes.
type Fixed token.Name

func (f Fixed) ResolveName(token.Shape) token.Name {
	return token.Name(f)
}

// Map names values by shape.  Shapes missing from Names are delegated to
// Fallback, or DefaultResolver if Fallback is nil.
type Map struct {
	Names    map[token.Shape]token.Name
	Fallback Resolver
}

var _ Resolver = (*Map)(nil)

func (m *Map) ResolveName(shape token.Shape) token.Name {
	if name, ok := m.Names[shape]; ok && !name.IsEmpty() {
		return name
	}
	if m.Fallback != nil {
		return m.Fallback.ResolveName(shape)
	}
	return DefaultResolver.ResolveName(shape)
}

// Set records the name for a shape and returns m so calls can be chained.
func (m *Map) Set(shape token.Shape, name token.Name) *Map {
	if m.Names == nil {
		m.Names = make(map[token.Shape]token.Name)
	}
	m.Names[shape] = name
	return m
}
