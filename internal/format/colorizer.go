package format

import "github.com/arnodel/jsonml/token"

// A Colorizer wraps printed items in terminal color codes.  A nil *Colorizer
// is valid and prints without colors.
type Colorizer struct {
	KeyColorCode []byte

	// Indexed by token.ShapeNull .. token.ShapeString
	ScalarColorCodes [4][]byte

	TagColorCode       []byte
	AttributeColorCode []byte
	ResetCode          []byte
}

// PrintKey prints an object key.
func (c *Colorizer) PrintKey(p Printer, b []byte) {
	if c == nil {
		p.PrintBytes(b)
		return
	}
	c.print(p, c.KeyColorCode, b)
}

// PrintScalar prints the literal form of a value of the given shape.
func (c *Colorizer) PrintScalar(p Printer, shape token.Shape, b []byte) {
	if c == nil || int(shape) >= len(c.ScalarColorCodes) {
		p.PrintBytes(b)
		return
	}
	c.print(p, c.ScalarColorCodes[shape], b)
}

// PrintTag prints markup tag delimiters and names.
func (c *Colorizer) PrintTag(p Printer, b []byte) {
	if c == nil {
		p.PrintBytes(b)
		return
	}
	c.print(p, c.TagColorCode, b)
}

// PrintAttribute prints an attribute name.
func (c *Colorizer) PrintAttribute(p Printer, b []byte) {
	if c == nil {
		p.PrintBytes(b)
		return
	}
	c.print(p, c.AttributeColorCode, b)
}

func (c *Colorizer) print(p Printer, code []byte, b []byte) {
	if len(code) == 0 {
		p.PrintBytes(b)
		return
	}
	p.PrintBytes(code)
	p.PrintBytes(b)
	p.PrintBytes(c.ResetCode)
}
