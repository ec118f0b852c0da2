// Package fieldmap converts between storage column names (snake_case) and wire
// field names (lowerCamelCase).
//
// The forward direction is algorithmic. The reverse direction is not: several
// underscore groupings collapse onto the same camelCase name, so every entity
// declares its wire/column pairs explicitly as a Fields table.
package fieldmap

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Row is a store row keyed by column name.
type Row map[string]any

// Record is a wire record keyed by lowerCamelCase field name.
type Record map[string]any

// ToCamel converts a snake_case name to lowerCamelCase. The first component is
// kept as is, every following component is title-cased.
func ToCamel(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		return name
	}

	var b strings.Builder
	b.Grow(len(name))
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString(titleCase(part))
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// FormatRecord maps the keys of row to camelCase. A nil row yields a nil
// record.
func FormatRecord(row Row) Record {
	if row == nil {
		return nil
	}
	record := make(Record, len(row))
	for key, value := range row {
		record[ToCamel(key)] = value
	}
	return record
}

// FormatRecords maps every row. The result is never nil so it encodes as [].
func FormatRecords(rows []Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, FormatRecord(row))
	}
	return records
}

// Kind is the storage type of a field.
type Kind int

const (
	Text Kind = iota
	Integer
	Timestamp
)

// Field pairs a wire name with its storage column.
type Field struct {
	Wire   string
	Column string
	Kind   Kind
	// Required fields must be present and non-null on create.
	Required bool
	// ReadOnly fields are computed by the store and never written.
	ReadOnly bool
}

// Normalize prepares a decoded JSON value for binding. JSON numbers decode as
// float64; whole numbers bound to integer columns are converted to int64.
func (f Field) Normalize(value any) any {
	if f.Kind != Integer {
		return value
	}
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v)
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
	}
	return value
}

// Fields is the explicit wire/column table of one entity.
type Fields []Field

// Lookup resolves a wire name to its field.
func (fs Fields) Lookup(wire string) (Field, bool) {
	for _, f := range fs {
		if f.Wire == wire {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the storage columns in declaration order.
func (fs Fields) Columns() []string {
	columns := make([]string, 0, len(fs))
	for _, f := range fs {
		columns = append(columns, f.Column)
	}
	return columns
}

// Writable returns the fields a client may set.
func (fs Fields) Writable() Fields {
	writable := make(Fields, 0, len(fs))
	for _, f := range fs {
		if !f.ReadOnly {
			writable = append(writable, f)
		}
	}
	return writable
}

// Required returns the wire names that must be supplied on create.
func (fs Fields) Required() []string {
	var required []string
	for _, f := range fs {
		if f.Required {
			required = append(required, f.Wire)
		}
	}
	return required
}
