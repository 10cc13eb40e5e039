package workorder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/a3tai/workorder-sheet/internal/extract"
	"github.com/a3tai/workorder-sheet/internal/floor"
)

// UnknownDatePolicy places records whose date cannot be parsed.
type UnknownDatePolicy string

const (
	// UnknownLast sorts unparseable dates after every known date.
	UnknownLast UnknownDatePolicy = "last"
	// UnknownFirst sorts them before every known date.
	UnknownFirst UnknownDatePolicy = "first"
)

// ParseUnknownDatePolicy validates a policy name; "" selects UnknownLast.
func ParseUnknownDatePolicy(s string) (UnknownDatePolicy, error) {
	switch UnknownDatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnknownLast:
		return UnknownLast, nil
	case UnknownFirst:
		return UnknownFirst, nil
	default:
		return "", fmt.Errorf("invalid unknown-date policy %q (must be %q or %q)", s, UnknownFirst, UnknownLast)
	}
}

// dateLayouts are tried in order when reading a record's date.
var dateLayouts = []string{
	extract.CanonicalDateLayout,
	extract.ScheduleDateLayout,
	"January 2, 2006",
}

// ParseDate reads a record date in any supported layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Table is the ordered, normalized collection of records for one sheet.
type Table struct {
	Columns    []string
	Records    []Record
	DateField  string
	FloorField string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// Rows returns the record values in column order.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		rows[i] = r.Values()
	}
	return rows
}

// Normalize sorts records by date and then maps the floor field through
// symbols. Sorting is stable, so records sharing a date keep the order in
// which their pages were read. Floor symbols are applied only after the sort
// so they can never influence the order.
func Normalize(records []Record, table *extract.FieldTable, symbols floor.SymbolMap, unknown UnknownDatePolicy) *Table {
	out := &Table{
		Columns:    append([]string(nil), table.Columns...),
		Records:    make([]Record, len(records)),
		DateField:  table.DateField,
		FloorField: table.FloorField,
	}
	copy(out.Records, records)

	if table.DateField != "" {
		sortByDate(out.Records, table.DateField, unknown)
	}

	if table.FloorField != "" {
		for i, r := range out.Records {
			out.Records[i] = r.With(table.FloorField, floor.Normalize(r.Get(table.FloorField), symbols))
		}
	}
	return out
}

func sortByDate(records []Record, field string, unknown UnknownDatePolicy) {
	type keyed struct {
		rec   Record
		date  time.Time
		known bool
	}

	keys := make([]keyed, len(records))
	for i, r := range records {
		raw := r.Get(field)
		t, ok := ParseDate(raw)
		if ok {
			r = r.With(field, t.Format(extract.CanonicalDateLayout))
		}
		keys[i] = keyed{rec: r, date: t, known: ok}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.known != b.known {
			if unknown == UnknownFirst {
				return !a.known
			}
			return a.known
		}
		if !a.known {
			return false
		}
		return a.date.Before(b.date)
	})

	for i, k := range keys {
		records[i] = k.rec
	}
}
