package variant

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/workorder-sheet/internal/extract"
	"github.com/a3tai/workorder-sheet/internal/floor"
	"github.com/a3tai/workorder-sheet/internal/render"
	"github.com/a3tai/workorder-sheet/internal/workorder"
)

// File is the on-disk form of a set of variant definitions.
type File struct {
	Variants []Definition `yaml:"variants"`
}

// Definition describes one layout in YAML.
type Definition struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Columns     []string          `yaml:"columns"`
	Fields      []FieldDef        `yaml:"fields"`
	LineScans   []LineScanDef     `yaml:"line_scans"`
	Choices     []ChoiceDef       `yaml:"choices"`
	Literals    map[string]string `yaml:"literals"`
	DateField   string            `yaml:"date_field"`
	FloorField  string            `yaml:"floor_field"`
	Policy      PolicyDef         `yaml:"policy"`
	Floors      map[string]string `yaml:"floors"`
	Style       *StyleDef         `yaml:"style"`
}

// FieldDef describes one field. Exactly one of Pattern and FloorNames
// selects what is matched.
type FieldDef struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	// FloorNames matches any name of the variant's floor vocabulary.
	FloorNames bool              `yaml:"floor_names"`
	Group      int               `yaml:"group"`
	Location   *LocationDef      `yaml:"location"`
	Transforms []string          `yaml:"transforms"`
	Map        map[string]string `yaml:"map"`
}

// LocationDef configures a fixed-width location code decoder.
type LocationDef struct {
	Offset      int               `yaml:"offset"`
	Width       int               `yaml:"width"`
	RequireFull bool              `yaml:"require_full"`
	Upper       bool              `yaml:"upper"`
	Corrections map[string]string `yaml:"corrections"`
	Names       map[string]string `yaml:"names"`
}

// LineScanDef describes fields read from the first line carrying all markers.
type LineScanDef struct {
	Markers []string   `yaml:"markers"`
	Fields  []FieldDef `yaml:"fields"`
}

// ChoiceDef lists alternative sources for a group of fields.
type ChoiceDef struct {
	Branches []BranchDef `yaml:"branches"`
}

// BranchDef is one alternative; an empty When always matches.
type BranchDef struct {
	When   string     `yaml:"when"`
	Fields []FieldDef `yaml:"fields"`
}

// PolicyDef selects which records are kept.
type PolicyDef struct {
	Mode   string   `yaml:"mode"`
	Fields []string `yaml:"fields"`
}

// StyleDef overrides the default sheet style.
type StyleDef struct {
	Sheet       string   `yaml:"sheet"`
	Align       *bool    `yaml:"align"`
	AutoWidth   *bool    `yaml:"auto_width"`
	ColorByDate *bool    `yaml:"color_by_date"`
	Palette     []string `yaml:"palette"`
}

// namedTransforms are the transforms a definition can refer to by name.
var namedTransforms = map[string]extract.Transform{
	"trim":           extract.Trim,
	"upper":          extract.Upper,
	"title":          extract.TrimTitle,
	"last_char":      extract.LastChar,
	"trailing_upper": extract.TrailingUpperLetter,
	"date":           extract.ReformatDate,
}

// LoadFile reads variant definitions from a YAML file.
func LoadFile(path string) ([]*Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read variants file: %w", err)
	}
	variants, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return variants, nil
}

// Parse decodes and builds every variant of a YAML document.
func Parse(data []byte) ([]*Variant, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid variants file: %w", err)
	}
	if len(file.Variants) == 0 {
		return nil, fmt.Errorf("variants file defines no variants")
	}

	variants := make([]*Variant, 0, len(file.Variants))
	for i, def := range file.Variants {
		v, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// Build compiles a definition into a validated variant.
func (d Definition) Build() (*Variant, error) {
	floors := floor.SymbolMap(d.Floors)
	if floors == nil {
		floors = floor.SymbolMap{}
	}
	b := &builder{floors: floors}

	table := &extract.FieldTable{
		Columns:    d.Columns,
		Literals:   d.Literals,
		DateField:  d.DateField,
		FloorField: d.FloorField,
	}

	var err error
	if table.Fields, err = b.fields(d.Fields); err != nil {
		return nil, err
	}
	for _, scan := range d.LineScans {
		fields, err := b.fields(scan.Fields)
		if err != nil {
			return nil, err
		}
		table.LineScans = append(table.LineScans, extract.LineScan{Markers: scan.Markers, Fields: fields})
	}
	for _, choice := range d.Choices {
		var c extract.Choice
		for _, branch := range choice.Branches {
			fields, err := b.fields(branch.Fields)
			if err != nil {
				return nil, err
			}
			br := extract.Branch{Fields: fields}
			if branch.When != "" {
				if br.When, err = regexp.Compile(branch.When); err != nil {
					return nil, fmt.Errorf("invalid branch condition %q: %w", branch.When, err)
				}
			}
			c.Branches = append(c.Branches, br)
		}
		table.Choices = append(table.Choices, c)
	}

	mode := workorder.PolicyMode(strings.ToLower(strings.TrimSpace(d.Policy.Mode)))
	if mode == "" {
		mode = workorder.RequireAny
	}

	style := render.DefaultStyle()
	if d.DateField == "" {
		style.ColorByDate = false
	}

	v := &Variant{
		Name:        d.Name,
		Description: d.Description,
		Table:       table,
		Policy:      workorder.Policy{Mode: mode, Fields: d.Policy.Fields},
		Floors:      floors,
		Style:       d.Style.apply(style),
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

type builder struct {
	floors floor.SymbolMap
}

func (b *builder) fields(defs []FieldDef) ([]extract.FieldSpec, error) {
	specs := make([]extract.FieldSpec, 0, len(defs))
	for _, def := range defs {
		spec, err := b.field(def)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (b *builder) field(def FieldDef) (extract.FieldSpec, error) {
	spec := extract.FieldSpec{Name: def.Name, Group: def.Group}

	switch {
	case def.FloorNames && def.Pattern != "":
		return spec, fmt.Errorf("field %q sets both pattern and floor_names", def.Name)
	case def.FloorNames:
		spec.Pattern = floor.Pattern(b.floors.Names())
		if spec.Pattern == nil {
			return spec, fmt.Errorf("field %q matches floor names but the variant has no floors", def.Name)
		}
	case def.Pattern != "":
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return spec, fmt.Errorf("field %q: invalid pattern: %w", def.Name, err)
		}
		spec.Pattern = re
	default:
		return spec, fmt.Errorf("field %q has no pattern", def.Name)
	}
	if def.Group < 0 || def.Group > spec.Pattern.NumSubexp() {
		return spec, fmt.Errorf("field %q: group %d out of range", def.Name, def.Group)
	}

	var chain []extract.Transform
	if def.Location != nil {
		chain = append(chain, floor.LocationDecoder{
			Offset:      def.Location.Offset,
			Width:       def.Location.Width,
			RequireFull: def.Location.RequireFull,
			Upper:       def.Location.Upper,
			Corrections: def.Location.Corrections,
			Names:       def.Location.Names,
		}.Decode)
	}
	for _, name := range def.Transforms {
		t, ok := namedTransforms[strings.ToLower(name)]
		if !ok {
			return spec, fmt.Errorf("field %q: unknown transform %q", def.Name, name)
		}
		chain = append(chain, t)
	}
	if len(def.Map) > 0 {
		chain = append(chain, extract.MapThrough(def.Map))
	}

	switch len(chain) {
	case 0:
	case 1:
		spec.Transform = chain[0]
	default:
		spec.Transform = extract.Chain(chain...)
	}
	return spec, nil
}

func (s *StyleDef) apply(style render.Style) render.Style {
	if s == nil {
		return style
	}
	if s.Sheet != "" {
		style.Sheet = s.Sheet
	}
	if s.Align != nil {
		style.Align = *s.Align
	}
	if s.AutoWidth != nil {
		style.AutoWidth = *s.AutoWidth
	}
	if s.ColorByDate != nil {
		style.ColorByDate = *s.ColorByDate
	}
	if len(s.Palette) > 0 {
		style.Palette = s.Palette
	}
	return style
}
