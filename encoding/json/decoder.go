package json

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arnodel/jsonml/internal/scanner"
	"github.com/arnodel/jsonml/token"
)

// A Decoder reads JSON input and streams it as Common tokens.
type Decoder struct {
	scanr *scanner.Scanner

	// If AttributePrefix is not empty, object keys starting with it become
	// attribute properties named after the rest of the key, e.g. with "@" the
	// key "@id" is the attribute "id".
	AttributePrefix string
}

var _ token.StreamSource[token.Common] = &Decoder{}

// NewDecoder sets up a new Decoder instance to read from the given input.
func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{scanr: scanner.NewScanner(in)}
}

// Produce reads a stream of JSON values and streams them, until it runs
// out of input or encounter invalid JSON, in which case it will return an
// error.
func (d *Decoder) Produce(out chan<- token.Common) error {
	for {
		b, err := d.scanr.SkipSpaceAndPeek()
		if err != nil || b == scanner.EOF {
			return err
		}
		err = d.ParseValue(out)
		if err != nil {
			return err
		}
	}
}

// ParseValue reads a single JSON value and streams it.  It can return a
// non-nil error if the input is invalid JSON.
func (d *Decoder) ParseValue(out chan<- token.Common) error {
	b, err := d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	switch b {
	case '"':
		s, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		out <- token.NewPrimitive(s)
		return nil
	case '[':
		return d.parseArray(out)
	case '{':
		return d.parseObject(out)
	case 't':
		if err := checkBytes(d.scanr, trueBytes); err != nil {
			return err
		}
		out <- token.NewPrimitive(true)
		return nil
	case 'f':
		if err := checkBytes(d.scanr, falseBytes); err != nil {
			return err
		}
		out <- token.NewPrimitive(false)
		return nil
	case 'n':
		if err := checkBytes(d.scanr, nullBytes); err != nil {
			return err
		}
		out <- token.NewPrimitive(nil)
		return nil
	default:
		if b == '-' || b >= '0' && b <= '9' {
			n, err := ParseNumber(d.scanr)
			if err != nil {
				return err
			}
			out <- token.NewPrimitive(n)
			return nil
		}
		return UnexpectedByte(d.scanr, "expected value, got")
	}
}

func (d *Decoder) parseArray(out chan<- token.Common) error {
	var b byte
	var err error
	err = ExpectByte(d.scanr, '[')
	if err != nil {
		return err
	}
	out <- token.NewArrayBegin()
	b, err = d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == ']' {
		d.scanr.Read()
		out <- token.NewArrayEnd()
		return nil
	}
	for {
		err = d.ParseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case ']':
			d.scanr.Read()
			out <- token.NewArrayEnd()
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected ']' or ',', got")
		}
	}
}

func (d *Decoder) parseObject(out chan<- token.Common) error {
	var b byte
	err := ExpectByte(d.scanr, '{')
	if err != nil {
		return err
	}
	out <- token.NewObjectBegin()
	b, err = d.scanr.SkipSpaceAndPeek()
	if err != nil {
		return err
	}
	if b == '}' {
		d.scanr.Read()
		out <- token.NewObjectEnd()
		return nil
	}
	for {
		if _, err := d.scanr.SkipSpaceAndPeek(); err != nil {
			return err
		}
		key, err := ParseString(d.scanr)
		if err != nil {
			return err
		}
		out <- token.NewProperty(d.propertyName(key))
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		if b != ':' {
			return UnexpectedByte(d.scanr, "expected ':', got")
		}
		d.scanr.Read()
		err = d.ParseValue(out)
		if err != nil {
			return err
		}
		b, err = d.scanr.SkipSpaceAndPeek()
		if err != nil {
			return err
		}
		switch b {
		case '}':
			d.scanr.Read()
			out <- token.NewObjectEnd()
			return nil
		case ',':
			d.scanr.Read()
		default:
			return UnexpectedByte(d.scanr, "expected '}' or ',' got")
		}
	}
}

func (d *Decoder) propertyName(key string) token.Name {
	if d.AttributePrefix != "" && len(key) > len(d.AttributePrefix) && strings.HasPrefix(key, d.AttributePrefix) {
		return token.AttributeName(key[len(d.AttributePrefix):])
	}
	return token.LocalName(key)
}

func ExpectByte(scanr *scanner.Scanner, xb byte) error {
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	if b != xb {
		scanr.Back()
		return UnexpectedByte(scanr, "expected %q, got", xb)
	}
	return nil
}

func UnexpectedByte(scanr *scanner.Scanner, expected string, args ...interface{}) error {
	pos := scanr.CurrentPos()
	b, err := scanr.Read()
	if err != nil {
		return err
	}
	if b == scanner.EOF {
		return fmt.Errorf("syntax error at %s: %s: <EOF>", pos, fmt.Sprintf(expected, args...))
	}
	return fmt.Errorf("syntax error at %s: %s: %q", pos, fmt.Sprintf(expected, args...), b)
}

// ParseString reads a JSON string literal and returns its value.
func ParseString(scanr *scanner.Scanner) (string, error) {
	scanr.StartToken()
	err := ExpectByte(scanr, '"')
	if err != nil {
		scanr.EndToken()
		return "", err
	}
	isUnescaped := true
	for {
		b, err := scanr.Read()
		if err != nil {
			scanr.EndToken()
			return "", err
		}
		switch b {
		case '\\':
			isUnescaped = false
			x, err := scanr.Read()
			if err != nil {
				scanr.EndToken()
				return "", err
			}
			switch x {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				continue
			case 'u':
				for i := 0; i < 4; i++ {
					b, err = scanr.Read()
					if err != nil {
						scanr.EndToken()
						return "", err
					}
					if !(b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F') {
						scanr.Back()
						scanr.EndToken()
						return "", UnexpectedByte(scanr, "expected hex, got")
					}
				}
			default:
				scanr.Back()
				scanr.EndToken()
				return "", UnexpectedByte(scanr, "invalid escape character")
			}
		case '"':
			literal := scanr.EndToken()
			if isUnescaped {
				return string(literal[1 : len(literal)-1]), nil
			}
			var s string
			if err := json.Unmarshal(literal, &s); err != nil {
				return "", err
			}
			return s, nil
		case scanner.EOF:
			scanr.EndToken()
			return "", fmt.Errorf("syntax error at %s: unterminated string", scanr.CurrentPos())
		default:
			if scanner.IsCtrl(b) {
				scanr.Back()
				scanr.EndToken()
				return "", UnexpectedByte(scanr, "invalid control character in string")
			}
		}
	}
}

// ParseNumber parses a JSON number from the scanner.  Integers that fit are
// returned as int64, other numbers as float64.
func ParseNumber(scanr *scanner.Scanner) (any, error) {
	scanr.StartToken()
	isInt, err := scanNumber(scanr)
	if err != nil {
		scanr.EndToken()
		return nil, err
	}
	scanr.Back()
	literal := scanr.EndToken()
	if isInt {
		if n, err := strconv.ParseInt(string(literal), 10, 64); err == nil {
			return n, nil
		}
	}
	x, err := strconv.ParseFloat(string(literal), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", literal, err)
	}
	return x, nil
}

func scanNumber(scanr *scanner.Scanner) (bool, error) {
	var n int
	isInt := true
	b, err := scanr.Read()

	// Sign part
	if b == '-' {
		b, err = scanr.Read()
	}
	if err != nil {
		return false, err
	}

	// Integer part
	if b == '0' {
		b, err = scanr.Read()
		if err != nil {
			return false, err
		}
	} else if b >= '1' && b <= '9' {
		b, _, err = ReadDigits(scanr)
		if err != nil {
			return false, err
		}
	} else {
		scanr.Back()
		return false, UnexpectedByte(scanr, "expected digit, got")
	}

	// Fraction part
	if b == '.' {
		isInt = false
		b, n, err = ReadDigits(scanr)
		if err != nil {
			return false, err
		}
		if n == 0 {
			scanr.Back()
			return false, UnexpectedByte(scanr, "expected digit, got")
		}
	}

	// Exponent part
	if b == 'e' || b == 'E' {
		isInt = false
		b, err = scanr.Peek()
		if err != nil {
			return false, err
		}
		if b == '-' || b == '+' {
			scanr.Read()
		}
		_, n, err = ReadDigits(scanr)
		if err != nil {
			return false, err
		}
		if n == 0 {
			scanr.Back()
			return false, UnexpectedByte(scanr, "expected digit, got")
		}
	}
	return isInt, nil
}

func ReadDigits(scanr *scanner.Scanner) (byte, int, error) {
	var n int
	for {
		b, err := scanr.Read()
		if err != nil {
			return 0, n, err
		}
		if !scanner.IsDigit(b) {
			return b, n, nil
		}
		n++
	}
}

func checkBytes(scanr *scanner.Scanner, expected []byte) error {
	for _, xb := range expected {
		if err := ExpectByte(scanr, xb); err != nil {
			return err
		}
	}
	return nil
}

var (
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
	nullBytes  = []byte("null")
)
