package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// A Name qualifies properties, elements and attributes alike.  A Name with an
// empty Local part is the "unspecified" name: it must be given a default
// before it is used as an element or attribute name.
//
// Only Namespace and Local take part in comparisons, Prefix is cosmetic.
type Name struct {
	Local       string
	Prefix      string
	Namespace   string
	IsAttribute bool
}

// EmptyName is the unspecified name.
var EmptyName = Name{}

// LocalName returns a name with only a local part.
func LocalName(local string) Name {
	return Name{Local: local}
}

// AttributeName returns a local name flagged as an attribute.
func AttributeName(local string) Name {
	return Name{Local: local, IsAttribute: true}
}

func (n Name) IsEmpty() bool {
	return n.Local == ""
}

func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// GoString makes %#v output readable in test failures.
func (n Name) GoString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name(%q", n.Local)
	if n.Prefix != "" {
		fmt.Fprintf(&b, ", prefix=%q", n.Prefix)
	}
	if n.Namespace != "" {
		fmt.Fprintf(&b, ", ns=%q", n.Namespace)
	}
	if n.IsAttribute {
		b.WriteString(", attr")
	}
	b.WriteByte(')')
	return b.String()
}

// Compare orders names by namespace then local part.  It returns -1, 0 or 1.
func Compare(a, b Name) int {
	if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
		return c
	}
	return strings.Compare(a.Local, b.Local)
}

// Encoded returns n with its local part made safe for use as an XML element
// or attribute name (see EncodeLocalName).  If no character needed replacing,
// n itself is returned.
func (n Name) Encoded() Name {
	local := EncodeLocalName(n.Local)
	if local == n.Local {
		return n
	}
	n.Local = local
	return n
}

// EncodeLocalName replaces each rune of s that is not allowed in an XML local
// name with _xHHHH_ (or _xHHHHHHHH_ outside the BMP), where H are the upper
// case hex digits of the code point.  Existing "_x" sequences are not
// escaped, so two different inputs can encode to the same name.
func EncodeLocalName(s string) string {
	i := firstInvalidNameRune(s)
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])
	for i < len(s) {
		r, size, ok := nameRune(s, i)
		if ok {
			b.WriteString(s[i : i+size])
		} else if r > 0xFFFF {
			fmt.Fprintf(&b, "_x%08X_", r)
		} else {
			fmt.Fprintf(&b, "_x%04X_", r)
		}
		i += size
	}
	return b.String()
}

func firstInvalidNameRune(s string) int {
	for i := 0; i < len(s); {
		_, size, ok := nameRune(s, i)
		if !ok {
			return i
		}
		i += size
	}
	return -1
}

// nameRune decodes the rune at byte offset i of s and reports whether it may
// appear there in a local name.  A byte that is not valid UTF-8 decodes as
// U+FFFD and is never allowed.
func nameRune(s string, i int) (r rune, size int, ok bool) {
	r, size = utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && size == 1 {
		return r, size, false
	}
	if i == 0 {
		return r, size, isNameStartChar(r)
	}
	return r, size, isNameChar(r)
}

// XML 1.0 (5th edition) NameStartChar, without ':' which cannot appear in a
// local part.
func isNameStartChar(r rune) bool {
	return r == '_' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0xC0 && r <= 0xD6) ||
		(r >= 0xD8 && r <= 0xF6) ||
		(r >= 0xF8 && r <= 0x2FF) ||
		(r >= 0x370 && r <= 0x37D) ||
		(r >= 0x37F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) ||
		r == '-' || r == '.' ||
		(r >= '0' && r <= '9') ||
		r == 0xB7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}
