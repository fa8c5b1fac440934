package xmldata

import (
	"github.com/tidwall/btree"

	"github.com/arnodel/jsonml/token"
)

type attribute struct {
	name  token.Name
	value token.Common
}

// attributeSet buffers the attributes of one element, in name order.  Names
// must be encoded before they are added.
type attributeSet struct {
	tree *btree.BTreeG[attribute]
}

func lessAttribute(a, b attribute) bool {
	return token.Compare(a.name, b.name) < 0
}

func newAttributeSet() *attributeSet {
	return &attributeSet{}
}

// add records an attribute unless one with the same name is already present:
// XML does not allow duplicate attributes, the first one wins.
func (s *attributeSet) add(name token.Name, value token.Common) bool {
	if s.tree == nil {
		s.tree = btree.NewBTreeGOptions(lessAttribute, btree.Options{NoLocks: true})
	}
	attr := attribute{name: name, value: value}
	if _, found := s.tree.Get(attr); found {
		return false
	}
	s.tree.Set(attr)
	return true
}

func (s *attributeSet) len() int {
	if s == nil || s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

// each calls f for every attribute in name order.
func (s *attributeSet) each(f func(attribute)) {
	if s.len() == 0 {
		return
	}
	s.tree.Scan(func(attr attribute) bool {
		f(attr)
		return true
	})
}
