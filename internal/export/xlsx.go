// Package export writes cached tables to spreadsheet files.
package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/rshade/gss-search/internal/table"
)

// DefaultSheetName is used when no usable sheet name is given.
const DefaultSheetName = "Sheet1"

const (
	// columnPadding is added to the widest cell when sizing columns.
	columnPadding = 2
	maxColWidth   = 60
)

// WriteXLSX writes tbl to path as a single worksheet named sheetName: the
// header in bold on row 1 with the body below it, and the header row frozen.
func WriteXLSX(tbl *table.Table, path, sheetName string) error {
	if tbl == nil {
		return fmt.Errorf("export: nil table")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := SanitizeSheetName(sheetName)
	if name != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, name); err != nil {
			return fmt.Errorf("naming sheet %q: %w", name, err)
		}
	}

	if len(tbl.Header) > 0 {
		if err := writeHeader(f, name, tbl.Header); err != nil {
			return err
		}
	}
	for i, row := range tbl.Body {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(name, cell, rowValues(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := sizeColumns(f, name, tbl.Columns); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header table.Row) error {
	if err := f.SetSheetRow(sheet, "A1", rowValues(header)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func sizeColumns(f *excelize.File, sheet string, columns []table.Column) error {
	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := max(col.MaxContentLength, table.CellWidth(col.Title)) + columnPadding
		if err = f.SetColWidth(sheet, name, name, float64(min(width, maxColWidth))); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	return nil
}

func rowValues(row table.Row) *[]any {
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	return &values
}

// SanitizeSheetName makes name acceptable as a worksheet name: forbidden
// characters become "_", surrounding quotes are trimmed and the result is
// cut to 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")

	if utf8.RuneCountInString(name) > excelize.MaxSheetNameLength {
		name = string([]rune(name)[:excelize.MaxSheetNameLength])
	}
	if name == "" {
		return DefaultSheetName
	}
	return name
}
