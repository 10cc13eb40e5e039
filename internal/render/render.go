// Package render writes a work-order table as a styled xlsx workbook.
package render

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/workorder-sheet/internal/workorder"
)

const (
	// DefaultSheet matches the sheet name spreadsheet tools create by default.
	DefaultSheet = "Sheet1"

	widthPadding = 5
	maxColWidth  = 255
)

// Style controls the presentation of the rendered sheet.
type Style struct {
	Sheet string

	// Align centers every cell both ways and wraps its text.
	Align bool
	// AutoWidth sizes each column to its longest value plus padding.
	AutoWidth bool
	// ColorByDate fills every data row with the color of its date.
	ColorByDate bool

	Palette   []string
	ColorSeed int
}

// DefaultStyle enables every presentation option.
func DefaultStyle() Style {
	return Style{
		Sheet:       DefaultSheet,
		Align:       true,
		AutoWidth:   true,
		ColorByDate: true,
		Palette:     DefaultPalette,
	}
}

// Render writes the header and one row per record and returns the workbook
// bytes.
func Render(table *workorder.Table, style Style) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("table cannot be nil")
	}
	if style.Sheet == "" {
		style.Sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if style.Sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, style.Sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	w := &sheetWriter{file: f, sheet: style.Sheet, style: style, fills: make(map[string]int)}
	if err := w.write(table); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	file  *excelize.File
	sheet string
	style Style

	colors *ColorCache
	fills  map[string]int
	plain  int
}

func (w *sheetWriter) write(table *workorder.Table) error {
	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := w.file.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(w.sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if len(table.Columns) == 0 {
		return nil
	}
	if err := w.applyStyles(table); err != nil {
		return err
	}
	if w.style.AutoWidth {
		return w.sizeColumns(table)
	}
	return nil
}

func (w *sheetWriter) applyStyles(table *workorder.Table) error {
	if !w.style.Align && !w.style.ColorByDate {
		return nil
	}

	lastCol, err := excelize.ColumnNumberToName(len(table.Columns))
	if err != nil {
		return err
	}

	if w.style.Align {
		headerStyle, err := w.file.NewStyle(&excelize.Style{
			Alignment: alignment(),
			Font:      &excelize.Font{Bold: true},
		})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		if err := w.file.SetCellStyle(w.sheet, "A1", lastCol+"1", headerStyle); err != nil {
			return err
		}
	}

	dateIdx := -1
	for i, col := range table.Columns {
		if col == table.DateField {
			dateIdx = i
		}
	}
	if w.style.ColorByDate && dateIdx >= 0 {
		w.colors = NewColorCache(w.style.Palette, w.style.ColorSeed)
	}

	for i, rec := range table.Records {
		styleID, err := w.rowStyle(rec, table.DateField)
		if err != nil {
			return err
		}
		if styleID == 0 {
			continue
		}
		row := i + 2
		if err := w.file.SetCellStyle(w.sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), styleID); err != nil {
			return err
		}
	}
	return nil
}

// rowStyle returns the style of a data row; 0 means the default style.
func (w *sheetWriter) rowStyle(rec workorder.Record, dateField string) (int, error) {
	if w.colors == nil {
		if !w.style.Align {
			return 0, nil
		}
		if w.plain == 0 {
			id, err := w.file.NewStyle(&excelize.Style{Alignment: alignment()})
			if err != nil {
				return 0, fmt.Errorf("failed to create cell style: %w", err)
			}
			w.plain = id
		}
		return w.plain, nil
	}

	color := w.colors.Color(rec.Get(dateField))
	if id, ok := w.fills[color]; ok {
		return id, nil
	}
	s := &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + color}},
	}
	if w.style.Align {
		s.Alignment = alignment()
	}
	id, err := w.file.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("failed to create fill style: %w", err)
	}
	w.fills[color] = id
	return id, nil
}

func (w *sheetWriter) sizeColumns(table *workorder.Table) error {
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range table.Rows() {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width += widthPadding
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := w.file.SetColWidth(w.sheet, name, name, float64(width)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}

func alignment() *excelize.Alignment {
	return &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
}
