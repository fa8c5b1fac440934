// Package csv reads CSV records as Common tokens, so that tabular data can be
// converted like any other value tree.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/arnodel/jsonml/encoding/json"
	"github.com/arnodel/jsonml/internal/scanner"
	"github.com/arnodel/jsonml/token"
)

// A Decoder reads CSV input and streams each record as an array value, or as
// an object value keyed by field names.
type Decoder struct {
	reader                *csv.Reader
	HasHeader             bool // When true, treat the first record as a header
	RecordsProduceObjects bool // When false, produce an array for each record, else an object
	fieldNames            []token.Name
}

var _ token.StreamSource[token.Common] = &Decoder{}

// NewDecoder sets up a new Decoder instance to read from the given input.
// Records may have different numbers of fields.
func NewDecoder(in io.Reader) *Decoder {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	return &Decoder{reader: reader}
}

// Produce reads a stream of CSV records, until it runs out of input or
// encounters invalid CSV, in which case it will return an error
func (d *Decoder) Produce(out chan<- token.Common) error {
	recordCount := 0
	for {
		record, err := d.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if recordCount > 0 || !d.HasHeader {
			d.produceRecord(record, out)
		} else {
			d.SetFieldNames(record)
		}
		recordCount++
	}
}

// SetFieldNames sets the field names for records.  Should be called before
// Produce.  Names are used verbatim as property names, it is up to the
// consumer to make them valid element names.
func (d *Decoder) SetFieldNames(record []string) {
	for _, field := range record {
		d.fieldNames = append(d.fieldNames, token.LocalName(strings.TrimSpace(field)))
	}
}

func (d *Decoder) produceRecord(record []string, out chan<- token.Common) {
	if d.RecordsProduceObjects {
		out <- token.NewObjectBegin()
		for i, field := range record {
			out <- token.NewProperty(d.getFieldName(i))
			out <- token.NewPrimitive(fieldValue(field))
		}
		out <- token.NewObjectEnd()
	} else {
		out <- token.NewArrayBegin()
		for _, field := range record {
			out <- token.NewPrimitive(fieldValue(field))
		}
		out <- token.NewArrayEnd()
	}
}

func (d *Decoder) getFieldName(i int) token.Name {
	for j := len(d.fieldNames); j <= i; j++ {
		d.fieldNames = append(d.fieldNames, token.LocalName(fmt.Sprintf("field_%d", j+1)))
	}
	if d.fieldNames[i].IsEmpty() {
		d.fieldNames[i] = token.LocalName(fmt.Sprintf("field_%d", i+1))
	}
	return d.fieldNames[i]
}

// fieldValue gives a type to the text of a field: empty fields are null,
// true and false are booleans and JSON numbers are numbers.  Anything else is
// a string.
func fieldValue(field string) any {
	switch field {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if couldBeNumber(field) {
		scanr := scanner.NewScanner(strings.NewReader(field))
		n, err := json.ParseNumber(scanr)
		if err == nil {
			if b, err := scanr.Peek(); err == nil && b == scanner.EOF {
				return n
			}
		}
	}
	return field
}

func couldBeNumber(field string) bool {
	for _, b := range []byte(field) {
		if !scanner.IsDigit(b) && b != '.' && b != 'e' && b != 'E' && b != '+' && b != '-' {
			return false
		}
	}
	return true
}
