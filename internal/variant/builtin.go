package variant

import (
	"regexp"

	"github.com/a3tai/workorder-sheet/internal/extract"
	"github.com/a3tai/workorder-sheet/internal/floor"
	"github.com/a3tai/workorder-sheet/internal/render"
	"github.com/a3tai/workorder-sheet/internal/workorder"
)

// Built-in variant names.
const (
	FHC          = "fhc"
	FHCPipe      = "fhc-pipe"
	ProjectPhase = "project-phase"
)

// Labels shared by every maintenance report layout. "Scheduel" is how the
// reports spell it.
var (
	workOrderPattern = regexp.MustCompile(`WORKORDER\s*#\s*:\s*(\d+)`)
	jpCodePattern    = regexp.MustCompile(`JP Code\s*:\s*(\S+)`)
	assetQtyPattern  = regexp.MustCompile(`Asset QTY\s*:\s*(\d+)`)
	schedulePattern  = regexp.MustCompile(`Scheduel Start\s*:\s*(\w+\s+\d{1,2},\s+\d{4})`)
)

// mezzanineFloors is the vocabulary of the single-report layout.
func mezzanineFloors() floor.SymbolMap {
	return floor.SymbolMap{
		"Basement":               "B",
		"Ground Floor":           "GF",
		"Ground Mezanin":         "GM",
		"First Floor":            "1",
		"First Mezzanine Floor":  "1M",
		"Second Floor":           "2",
		"Second Mezzanine Floor": "2M",
		"Third Floor":            "3",
		"Third Mezzanine Floor":  "3M",
		"Fourth Floor":           "4",
		"Fifth Floor":            "5",
		"Sixth Floor":            "6",
		"Seventh Floor":          "7",
		"Eighth Floor":           "8",
		"Ninth Floor":            "9",
	}
}

// zoneFloors is the vocabulary of the multi-report zone layout.
func zoneFloors() floor.SymbolMap {
	return floor.SymbolMap{
		"Basement":       "B",
		"Bs":             "B",
		"Ground Floor":   "GF",
		"Ground Mezanin": "GM",
		"First Floor":    "1",
		"First Mezanin":  "1M",
		"Second Floor":   "2",
		"Second Mezanin": "2M",
		"Third Floor":    "3",
		"Third Mezanin":  "3M",
		"Fourth Floor":   "4",
		"Fifth Floor":    "5",
		"Sixth Floor":    "6",
		"Seventh Floor":  "7",
		"Eighth Floor":   "8",
		"Ninth Floor":    "9",
		"Rf":             "R",
		"Roof Floor":     "R",
	}
}

// locationFloorNames maps the two-letter floor code of a location code to a
// floor name.
func locationFloorNames() map[string]string {
	return map[string]string{
		"BF": "Basement", "GF": "Ground Floor", "GM": "Ground Mezanin",
		"FF": "First Floor", "FM": "First Mezanin",
		"SF": "Second Floor", "SM": "Second Mezanin",
		"TF": "Third Floor", "TM": "Third Mezanin",
		"OF": "Fourth Floor", "IF": "Fifth Floor", "XF": "Sixth Floor",
		"F07": "Seventh Floor", "F08": "Eighth Floor", "F09": "Ninth Floor",
	}
}

// locationCorrections fixes digits typed in place of letters.
func locationCorrections() map[string]string {
	return map[string]string{"F0": "OF", "0F": "OF", "IF": "IF", "1F": "IF"}
}

func newFHC() *Variant {
	floors := mezzanineFloors()
	return &Variant{
		Name:        FHC,
		Description: "Single fire hose cabinet report: floor named anywhere on the page, phase/column/axis labels",
		Table: &extract.FieldTable{
			Columns: []string{"Workorder num", "Floor", "Phase", "Column", "Axis", "Quantity", "Equipment", "Type of check", "Date"},
			Fields: []extract.FieldSpec{
				{Name: "Workorder num", Pattern: workOrderPattern},
				{Name: "Floor", Pattern: floor.Pattern(floors.Names()), Transform: extract.TrimTitle},
				{Name: "Phase", Pattern: regexp.MustCompile(`Phase\s*#\s*(\d+)`)},
				{Name: "Column", Pattern: regexp.MustCompile(`Column\s*([A-Z0-9]+)`)},
				{Name: "Axis", Pattern: regexp.MustCompile(`Axis\s*([A-Z0-9]+)`)},
				{Name: "Quantity", Pattern: assetQtyPattern},
				{Name: "Type of check", Pattern: jpCodePattern, Transform: extract.LastChar},
				{Name: "Date", Pattern: schedulePattern, Transform: extract.ReformatDate},
			},
			Literals:   map[string]string{"Equipment": "FHC"},
			DateField:  "Date",
			FloorField: "Floor",
		},
		Policy: workorder.Any("Workorder num", "Floor", "Quantity", "Type of check"),
		Floors: floors,
		Style: render.Style{
			Sheet: render.DefaultSheet,
			Align: true,
		},
	}
}

func newFHCPipe() *Variant {
	return &Variant{
		Name:        FHCPipe,
		Description: "Zone reports for hose cabinets and pipework: zone/floor from the asset line or the location code",
		Table: &extract.FieldTable{
			Columns: []string{"Work Order", "Zone", "Floor", "Quantity", "Equipment", "Type of Check", "Date"},
			Fields: []extract.FieldSpec{
				{Name: "Work Order", Pattern: workOrderPattern},
				{Name: "Quantity", Pattern: assetQtyPattern},
				{Name: "Type of Check", Pattern: jpCodePattern, Transform: extract.LastChar},
				{Name: "Date", Pattern: schedulePattern, Transform: extract.ReformatDate},
			},
			Choices: []extract.Choice{{
				Branches: []extract.Branch{
					{
						When: regexp.MustCompile(`Zone#(\d+),\s*([^,]+)\s*Asset QTY`),
						Fields: []extract.FieldSpec{
							{Name: "Zone", Pattern: regexp.MustCompile(`Zone#(\d+),\s*([^,]+)\s*Asset QTY`), Group: 1},
							{Name: "Floor", Pattern: regexp.MustCompile(`Zone#(\d+),\s*([^,]+)\s*Asset QTY`), Group: 2, Transform: extract.Trim},
						},
					},
					{
						Fields: []extract.FieldSpec{
							{
								Name:    "Zone",
								Pattern: regexp.MustCompile(`Location Code\s*:\s*(\S+)`),
								Transform: floor.LocationDecoder{
									Offset:      8,
									Width:       2,
									RequireFull: true,
								}.Decode,
							},
							{
								Name:    "Floor",
								Pattern: regexp.MustCompile(`Location Code\s*:\s*(\S+)`),
								Transform: floor.LocationDecoder{
									Offset:      10,
									Width:       2,
									Upper:       true,
									Corrections: locationCorrections(),
									Names:       locationFloorNames(),
								}.Decode,
							},
						},
					},
				},
			}},
			Literals:   map[string]string{"Equipment": "FHC&PIPE"},
			DateField:  "Date",
			FloorField: "Floor",
		},
		Policy: workorder.All("Work Order", "Zone", "Floor", "Quantity", "Type of Check", "Date"),
		Floors: zoneFloors(),
		Style:  render.DefaultStyle(),
	}
}

func newProjectPhase() *Variant {
	floors := mezzanineFloors()
	return &Variant{
		Name:        ProjectPhase,
		Description: "Project reports: project name and phase read from the one line carrying both",
		Table: &extract.FieldTable{
			Columns: []string{"Workorder num", "Project", "Phase", "Floor", "Quantity", "Equipment", "Type of check", "Date"},
			Fields: []extract.FieldSpec{
				{Name: "Workorder num", Pattern: workOrderPattern},
				{Name: "Floor", Pattern: floor.Pattern(floors.Names()), Transform: extract.TrimTitle},
				{Name: "Quantity", Pattern: assetQtyPattern},
				{Name: "Type of check", Pattern: jpCodePattern, Transform: extract.TrailingUpperLetter},
				{Name: "Date", Pattern: schedulePattern, Transform: extract.ReformatDate},
			},
			LineScans: []extract.LineScan{{
				Markers: []string{"Project", "Phase"},
				Fields: []extract.FieldSpec{
					{Name: "Project", Pattern: regexp.MustCompile(`Project\s*:?\s*(.+?)\s*[-,]?\s*Phase`), Transform: extract.Trim},
					{Name: "Phase", Pattern: regexp.MustCompile(`Phase\s*#?\s*(\d+)`)},
				},
			}},
			Literals:   map[string]string{"Equipment": "FHC"},
			DateField:  "Date",
			FloorField: "Floor",
		},
		Policy: workorder.Any("Workorder num", "Quantity"),
		Floors: floors,
		Style:  render.DefaultStyle(),
	}
}

// Builtins returns fresh copies of the built-in variants.
func Builtins() []*Variant {
	return []*Variant{newFHC(), newFHCPipe(), newProjectPhase()}
}
