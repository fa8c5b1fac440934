package token

import (
	"encoding/json"
	"fmt"
)

// Shape classifies values for the purpose of giving them a default name.
type Shape uint8

const (
	ShapeNull Shape = iota
	ShapeBoolean
	ShapeNumber
	ShapeString
	ShapeArray
	ShapeObject
	// ShapeOpaque is any value the engine does not interpret.
	ShapeOpaque
)

var shapeNames = [...]string{
	ShapeNull:    "null",
	ShapeBoolean: "boolean",
	ShapeNumber:  "number",
	ShapeString:  "string",
	ShapeArray:   "array",
	ShapeObject:  "object",
	ShapeOpaque:  "opaque",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// ParseShape is the inverse of Shape.String.
func ParseShape(s string) (Shape, bool) {
	for i, n := range shapeNames {
		if n == s {
			return Shape(i), true
		}
	}
	return 0, false
}

// ShapeOf returns the shape of a primitive value.  It does not use
// reflection: only the types that decoders in this module produce (and the
// other Go basic types) are recognised, anything else is ShapeOpaque.
func ShapeOf(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeNull
	case bool:
		return ShapeBoolean
	case string, Name, []byte:
		return ShapeString
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return ShapeNumber
	default:
		return ShapeOpaque
	}
}
