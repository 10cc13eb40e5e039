package extract

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/workorder-sheet/internal/floor"
)

// Transform is a pure function applied to a captured value.
type Transform func(string) string

// Date layouts shared by the date transform and the table sorter.
const (
	// CanonicalDateLayout is the output form, e.g. "05-Jan-2024".
	CanonicalDateLayout = "02-Jan-2006"
	// ScheduleDateLayout is the report form, e.g. "Jan 5, 2024".
	ScheduleDateLayout = "Jan 2, 2006"
)

// Trim strips surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Upper trims and upper-cases.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TrimTitle trims and title-cases ("  first FLOOR" -> "First Floor").
func TrimTitle(s string) string {
	return floor.Canonical(s)
}

// LastChar returns the last character of the trimmed value. It derives the
// check type from a code such as "ABC-I".
func LastChar(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return string(r)
}

// TrailingUpperLetter returns the last upper-case letter of the value,
// ignoring any non-letter suffix ("PM-Q-01" -> "Q", "ABC-I." -> "I").
func TrailingUpperLetter(s string) string {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	if !unicode.IsUpper(r) {
		return ""
	}
	return string(r)
}

// ReformatDate rewrites "Jan 5, 2024" as "05-Jan-2024". Values not in
// month-name form are returned unchanged.
func ReformatDate(s string) string {
	raw := strings.TrimSpace(s)
	t, err := time.Parse(ScheduleDateLayout, strings.Join(strings.Fields(raw), " "))
	if err != nil {
		return raw
	}
	return t.Format(CanonicalDateLayout)
}

// MapThrough looks the trimmed value up in table; a miss keeps the value.
func MapThrough(table map[string]string) Transform {
	return func(s string) string {
		s = strings.TrimSpace(s)
		if mapped, ok := table[s]; ok {
			return mapped
		}
		return s
	}
}

// Chain applies transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(s string) string {
		for _, t := range transforms {
			if t != nil {
				s = t(s)
			}
		}
		return s
	}
}
