package workorder

import (
	"github.com/a3tai/workorder-sheet/internal/extract"
)

// Assemble extracts one record from a page. The boolean is false when the
// record fails the policy; such pages are dropped without error.
func Assemble(page string, table *extract.FieldTable, policy Policy) (Record, bool) {
	rec := NewRecord(table.Columns, table.Extract(page))
	if !policy.Accept(rec) {
		return Record{}, false
	}
	return rec, true
}

// Assembler binds a field table to its policy.
type Assembler struct {
	Table  *extract.FieldTable
	Policy Policy
}

// NewAssembler validates the table and policy together.
func NewAssembler(table *extract.FieldTable, policy Policy) (*Assembler, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(table.Columns); err != nil {
		return nil, err
	}
	return &Assembler{Table: table, Policy: policy}, nil
}

// Assemble builds the record for one page of source.
func (a *Assembler) Assemble(source string, pageNum int, text string) (Record, bool) {
	rec, ok := Assemble(text, a.Table, a.Policy)
	if !ok {
		return Record{}, false
	}
	rec.Source = source
	rec.Page = pageNum
	return rec, true
}
