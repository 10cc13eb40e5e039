// Package extract locates labeled fields in the raw text of a report page.
//
// Extraction never fails for a missing label: the field simply comes back
// empty, because many pages legitimately lack some fields.
package extract

import (
	"regexp"
)

// FieldSpec describes how one named field is found on a page.
type FieldSpec struct {
	Name string

	// Pattern is searched once over the text; only the first match counts.
	Pattern *regexp.Regexp

	// Group selects the capture group holding the value. Zero means the
	// first group when the pattern has one, the whole match otherwise.
	Group int

	// Transform post-processes the captured value. Nil keeps it as is.
	Transform Transform
}

// ExtractField applies spec to text and returns the field value, or "" when
// the label is absent.
func ExtractField(text string, spec FieldSpec) string {
	if spec.Pattern == nil {
		return ""
	}
	match := spec.Pattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}

	group := spec.Group
	if group == 0 && len(match) > 1 {
		group = 1
	}
	if group >= len(match) {
		return ""
	}

	value := match[group]
	if spec.Transform != nil {
		value = spec.Transform(value)
	}
	return value
}

// LineScan restricts a set of fields to the first line of the page that
// contains every marker, e.g. a project-name marker and a phase marker on
// the same line.
type LineScan struct {
	Markers []string
	Fields  []FieldSpec
}

// Line returns the first line containing all markers.
func (s LineScan) Line(text string) (string, bool) {
	for _, line := range splitLines(text) {
		if containsAll(line, s.Markers) {
			return line, true
		}
	}
	return "", false
}

// Extract fills every field of the scan. When no line carries all markers,
// every field is "".
func (s LineScan) Extract(text string) map[string]string {
	values := make(map[string]string, len(s.Fields))
	line, ok := s.Line(text)
	for _, field := range s.Fields {
		if !ok {
			values[field.Name] = ""
			continue
		}
		values[field.Name] = ExtractField(line, field)
	}
	return values
}

// Branch is one alternative of a Choice.
type Branch struct {
	// When gates the branch. Nil always matches.
	When   *regexp.Regexp
	Fields []FieldSpec
}

// Choice picks the first branch whose gate matches the page and extracts
// all of that branch's fields, so related fields such as zone and floor
// always come from the same source.
type Choice struct {
	Branches []Branch
}

// Names returns every field name any branch can produce, in first-seen
// order.
func (c Choice) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, b := range c.Branches {
		for _, f := range b.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// Extract returns the values of the first matching branch. Fields of other
// branches are present and empty.
func (c Choice) Extract(text string) map[string]string {
	values := make(map[string]string)
	for _, name := range c.Names() {
		values[name] = ""
	}
	for _, b := range c.Branches {
		if b.When != nil && !b.When.MatchString(text) {
			continue
		}
		for _, f := range b.Fields {
			values[f.Name] = ExtractField(text, f)
		}
		break
	}
	return values
}
