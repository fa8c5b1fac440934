// Package scope tracks namespace prefix bindings while walking nested
// elements.
package scope

import "github.com/arnodel/jsonml/token"

// Reserved namespaces, always in scope.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// A Scope holds the prefix bindings introduced by one element.
type Scope struct {
	TagName  token.Name
	bindings map[string]string
}

// New returns an empty scope for the given element.
func New(tagName token.Name) Scope {
	return Scope{TagName: tagName}
}

// Bind maps prefix to a namespace URI in this scope.  The empty prefix is the
// default namespace.
func (s *Scope) Bind(prefix, namespace string) {
	if s.bindings == nil {
		s.bindings = make(map[string]string, 1)
	}
	s.bindings[prefix] = namespace
}

func (s *Scope) Lookup(prefix string) (string, bool) {
	ns, ok := s.bindings[prefix]
	return ns, ok
}

// Bindings returns the prefixes bound in this scope and their namespaces.
// The map must not be modified.
func (s *Scope) Bindings() map[string]string {
	return s.bindings
}

func (s *Scope) Len() int {
	return len(s.bindings)
}

// A Chain is the stack of scopes of the currently open elements, root first.
// The zero value is an empty chain ready to use.
type Chain struct {
	scopes []Scope
}

func (c *Chain) Push(s Scope) {
	c.scopes = append(c.scopes, s)
}

// Pop removes the innermost scope and returns it.  It panics if the chain is
// empty, as that means begin and end tags were not paired.
func (c *Chain) Pop() Scope {
	n := len(c.scopes)
	if n == 0 {
		panic("scope: pop from empty chain")
	}
	s := c.scopes[n-1]
	c.scopes[n-1] = Scope{}
	c.scopes = c.scopes[:n-1]
	return s
}

// Top returns the innermost scope, or nil if the chain is empty.
func (c *Chain) Top() *Scope {
	if len(c.scopes) == 0 {
		return nil
	}
	return &c.scopes[len(c.scopes)-1]
}

func (c *Chain) Len() int {
	return len(c.scopes)
}

// ContainsNamespace reports whether some scope in the chain binds namespace.
// The empty namespace and the reserved xml / xmlns namespaces are always in
// scope.
func (c *Chain) ContainsNamespace(namespace string) bool {
	_, ok := c.LookupPrefix(namespace)
	return ok
}

// LookupNamespace resolves a prefix, innermost binding first.
func (c *Chain) LookupNamespace(prefix string) (string, bool) {
	switch prefix {
	case "xml":
		return XMLNamespace, true
	case "xmlns":
		return XMLNSNamespace, true
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if ns, ok := c.scopes[i].bindings[prefix]; ok {
			return ns, true
		}
	}
	if prefix == "" {
		// no default namespace declared; use empty namespace.
		return "", true
	}
	return "", false
}

// LookupPrefix finds a prefix bound to namespace, innermost binding first.
// A prefix is only returned if it has not been rebound to another namespace
// by a nested scope.
func (c *Chain) LookupPrefix(namespace string) (string, bool) {
	switch namespace {
	case "":
		return "", true
	case XMLNamespace:
		return "xml", true
	case XMLNSNamespace:
		return "xmlns", true
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		for prefix, ns := range c.scopes[i].bindings {
			if ns != namespace {
				continue
			}
			if resolved, _ := c.LookupNamespace(prefix); resolved == namespace {
				return prefix, true
			}
		}
	}
	return "", false
}
