package floor

import "strings"

// LocationDecoder reads a floor or zone out of a fixed-width location code
// such as "AB12CD3401GF07".
type LocationDecoder struct {
	Offset int
	Width  int

	// RequireFull rejects slices cut short by the end of the code.
	RequireFull bool

	// Upper upper-cases the slice before corrections and lookup.
	Upper bool

	// Corrections fixes known encoding confusions (e.g. "F0" for "OF")
	// before the name lookup.
	Corrections map[string]string

	// Names maps a floor code to a floor name. Nil keeps the corrected code.
	Names map[string]string
}

// Decode applies the decoder to a location code.
func (d LocationDecoder) Decode(code string) string {
	if d.RequireFull && len(code) < d.Offset+d.Width {
		return ""
	}
	fragment := Slice(code, d.Offset, d.Width)
	if fragment == "" {
		return ""
	}
	if d.Upper {
		fragment = strings.ToUpper(fragment)
	}
	if fixed, ok := d.Corrections[fragment]; ok {
		fragment = fixed
	}
	if name, ok := d.Names[fragment]; ok {
		return name
	}
	return fragment
}

// DecodeLocation extracts the width-character slice of code starting at
// offset, upper-cases it, runs it through corrections and finally through
// codeToName. A slice running past the end of code is truncated; an offset
// past the end yields "".
func DecodeLocation(code string, offset, width int, corrections, codeToName map[string]string) string {
	return LocationDecoder{
		Offset:      offset,
		Width:       width,
		Upper:       true,
		Corrections: corrections,
		Names:       codeToName,
	}.Decode(code)
}

// Slice returns code[offset:offset+width], clipped to the length of code.
func Slice(code string, offset, width int) string {
	if offset < 0 || width <= 0 || offset >= len(code) {
		return ""
	}
	end := offset + width
	if end > len(code) {
		end = len(code)
	}
	return code[offset:end]
}
