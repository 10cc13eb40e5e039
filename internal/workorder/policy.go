package workorder

import (
	"fmt"
	"strings"
)

// PolicyMode selects how the required fields of a policy combine.
type PolicyMode string

const (
	// RequireAny keeps a record when at least one required field is set.
	RequireAny PolicyMode = "any"
	// RequireAll keeps a record only when every required field is set.
	RequireAll PolicyMode = "all"
)

// Policy decides whether an assembled record is kept.
type Policy struct {
	Mode   PolicyMode
	Fields []string
}

// Any builds an inclusive-or policy.
func Any(fields ...string) Policy {
	return Policy{Mode: RequireAny, Fields: fields}
}

// All builds a conjunctive policy.
func All(fields ...string) Policy {
	return Policy{Mode: RequireAll, Fields: fields}
}

// Accept reports whether r satisfies the policy.
func (p Policy) Accept(r Record) bool {
	switch p.Mode {
	case RequireAll:
		for _, f := range p.Fields {
			if strings.TrimSpace(r.Get(f)) == "" {
				return false
			}
		}
		return true
	case RequireAny:
		for _, f := range p.Fields {
			if strings.TrimSpace(r.Get(f)) != "" {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Validate checks the mode and that every field is one of columns.
func (p Policy) Validate(columns []string) error {
	if p.Mode != RequireAny && p.Mode != RequireAll {
		return fmt.Errorf("invalid policy mode %q (must be %q or %q)", p.Mode, RequireAny, RequireAll)
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("policy needs at least one field")
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, f := range p.Fields {
		if !known[f] {
			return fmt.Errorf("policy field %q is not a column", f)
		}
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%s(%s)", p.Mode, strings.Join(p.Fields, ", "))
}
