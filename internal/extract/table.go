package extract

import (
	"fmt"
	"strings"
)

// FieldTable is the schema of one report layout: which columns exist, how
// each one is found and which of them carry the date and the floor.
type FieldTable struct {
	// Columns is the output order. Every record has exactly these fields.
	Columns []string

	Fields    []FieldSpec
	LineScans []LineScan
	Choices   []Choice

	// Literals are injected verbatim, e.g. an equipment tag.
	Literals map[string]string

	DateField  string
	FloorField string
}

// Extract runs every rule of the table over one page. The result holds an
// entry for each column; rules never see each other's output.
func (t *FieldTable) Extract(text string) map[string]string {
	values := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		values[col] = ""
	}
	for _, f := range t.Fields {
		values[f.Name] = ExtractField(text, f)
	}
	for _, scan := range t.LineScans {
		for name, v := range scan.Extract(text) {
			values[name] = v
		}
	}
	for _, choice := range t.Choices {
		for name, v := range choice.Extract(text) {
			values[name] = v
		}
	}
	for name, v := range t.Literals {
		values[name] = v
	}
	return values
}

// Validate checks that every rule writes to a declared column, that no two
// rules write the same column and that the date and floor fields exist.
func (t *FieldTable) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("field table has no columns")
	}

	declared := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if col == "" {
			return fmt.Errorf("field table has an empty column name")
		}
		if declared[col] {
			return fmt.Errorf("duplicate column %q", col)
		}
		declared[col] = true
	}

	owner := make(map[string]string)
	claim := func(name, rule string) error {
		if !declared[name] {
			return fmt.Errorf("%s writes undeclared column %q", rule, name)
		}
		if prev, ok := owner[name]; ok {
			return fmt.Errorf("column %q written by both %s and %s", name, prev, rule)
		}
		owner[name] = rule
		return nil
	}

	for _, f := range t.Fields {
		if f.Pattern == nil {
			return fmt.Errorf("field %q has no pattern", f.Name)
		}
		if err := claim(f.Name, "field "+f.Name); err != nil {
			return err
		}
	}
	for i, scan := range t.LineScans {
		if len(scan.Markers) == 0 {
			return fmt.Errorf("line scan %d has no markers", i)
		}
		for _, f := range scan.Fields {
			if err := claim(f.Name, fmt.Sprintf("line scan %d", i)); err != nil {
				return err
			}
		}
	}
	for i, choice := range t.Choices {
		for _, name := range choice.Names() {
			if err := claim(name, fmt.Sprintf("choice %d", i)); err != nil {
				return err
			}
		}
	}
	for name := range t.Literals {
		if err := claim(name, "literal "+name); err != nil {
			return err
		}
	}

	if t.DateField != "" && !declared[t.DateField] {
		return fmt.Errorf("date field %q is not a column", t.DateField)
	}
	if t.FloorField != "" && !declared[t.FloorField] {
		return fmt.Errorf("floor field %q is not a column", t.FloorField)
	}
	return nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func containsAll(line string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(line, m) {
			return false
		}
	}
	return true
}
