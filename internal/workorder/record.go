// Package workorder assembles extracted fields into work-order records and
// orders them into a sheet-ready table.
package workorder

import (
	"fmt"
	"strings"
)

// Record is one work order taken from one page. It has exactly the columns
// of the field table it was built from; unmatched fields are "".
type Record struct {
	columns []string
	values  map[string]string

	// Source and Page locate the page the record came from.
	Source string
	Page   int
}

// NewRecord builds a record over columns, copying values for those columns
// only.
func NewRecord(columns []string, values map[string]string) Record {
	r := Record{
		columns: columns,
		values:  make(map[string]string, len(columns)),
	}
	for _, col := range columns {
		r.values[col] = values[col]
	}
	return r
}

// Get returns the value of a field, "" for unknown fields.
func (r Record) Get(name string) string {
	return r.values[name]
}

// Columns returns the field names in output order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Values returns the field values in column order.
func (r Record) Values() []string {
	out := make([]string, len(r.columns))
	for i, col := range r.columns {
		out[i] = r.values[col]
	}
	return out
}

// With returns a copy of r with one field replaced. Fields outside the
// column set are ignored.
func (r Record) With(name, value string) Record {
	if _, ok := r.values[name]; !ok {
		return r
	}
	next := Record{
		columns: r.columns,
		values:  make(map[string]string, len(r.values)),
		Source:  r.Source,
		Page:    r.Page,
	}
	for k, v := range r.values {
		next.values[k] = v
	}
	next.values[name] = value
	return next
}

func (r Record) String() string {
	parts := make([]string, len(r.columns))
	for i, col := range r.columns {
		parts[i] = fmt.Sprintf("%s=%q", col, r.values[col])
	}
	return "Record{" + strings.Join(parts, ", ") + "}"
}
