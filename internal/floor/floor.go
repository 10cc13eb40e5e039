// Package floor maps free-text floor names and location-code fragments to
// the short floor symbols used in work-order sheets.
package floor

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SymbolMap maps a title-cased floor name (e.g. "First Mezzanine Floor") to
// its short symbol (e.g. "1M").
type SymbolMap map[string]string

// Canonical trims and title-cases a floor name so that "basement ",
// "BASEMENT" and "Basement" all produce the same lookup key.
func Canonical(raw string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.Und).String(strings.TrimSpace(raw))
}

// Normalize returns the symbol for raw, or the canonical form of raw when
// the table has no entry for it. It never fails: unmapped names must still
// reach the output.
func Normalize(raw string, table SymbolMap) string {
	key := Canonical(raw)
	if key == "" {
		return ""
	}
	if symbol, ok := table[key]; ok {
		return symbol
	}
	return key
}

// Names returns the floor names of the table in a stable order, longest
// first.
func (m SymbolMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// Pattern builds a case-insensitive regular expression matching any of the
// given floor names. Longer names are tried first so that "First Mezzanine
// Floor" wins over a shorter name sharing its prefix.
func Pattern(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, name := range sorted {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}
