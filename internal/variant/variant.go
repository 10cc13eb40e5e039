// Package variant holds the report layouts the extractor understands. A
// variant bundles the field table, the keep policy, the floor vocabulary
// and the sheet style of one layout.
package variant

import (
	"fmt"

	"github.com/a3tai/workorder-sheet/internal/extract"
	"github.com/a3tai/workorder-sheet/internal/floor"
	"github.com/a3tai/workorder-sheet/internal/render"
	"github.com/a3tai/workorder-sheet/internal/workorder"
)

// Variant is one report layout.
type Variant struct {
	Name        string
	Description string

	Table  *extract.FieldTable
	Policy workorder.Policy
	Floors floor.SymbolMap
	Style  render.Style
}

// Validate checks the table, the policy and the style together.
func (v *Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant has no name")
	}
	if v.Table == nil {
		return fmt.Errorf("variant %q has no field table", v.Name)
	}
	if err := v.Table.Validate(); err != nil {
		return fmt.Errorf("variant %q: %w", v.Name, err)
	}
	if err := v.Policy.Validate(v.Table.Columns); err != nil {
		return fmt.Errorf("variant %q: %w", v.Name, err)
	}
	if v.Style.ColorByDate && v.Table.DateField == "" {
		return fmt.Errorf("variant %q colors by date but has no date field", v.Name)
	}
	return nil
}

// Assembler returns a record assembler for the variant's table and policy.
func (v *Variant) Assembler() (*workorder.Assembler, error) {
	a, err := workorder.NewAssembler(v.Table, v.Policy)
	if err != nil {
		return nil, fmt.Errorf("variant %q: %w", v.Name, err)
	}
	return a, nil
}

// Summary describes a variant for listings.
type Summary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	Policy      string   `json:"policy"`
	Builtin     bool     `json:"builtin"`
}
