package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Rendering defaults.
const (
	// DefaultMaxColumnWidth caps the padded width of any one column.
	DefaultMaxColumnWidth = 20

	// DefaultDelimiter separates rendered cells.
	DefaultDelimiter = " | "
)

// RenderOptions controls single-line row rendering.
type RenderOptions struct {
	MaxColumnWidth int
	Delimiter      string
}

// DefaultRenderOptions returns the standard 20-cell, pipe-delimited layout.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		MaxColumnWidth: DefaultMaxColumnWidth,
		Delimiter:      DefaultDelimiter,
	}
}

// RenderRow renders row as one line. Each cell is left-aligned and padded to
// min(column.MaxContentLength, MaxColumnWidth); longer cells are kept whole so
// every character stays searchable. Cells missing from a short row render as
// blanks. The column metadata is passed in rather than looked up through the
// row so rows carry no reference to their table.
func RenderRow(row Row, columns []Column, opts RenderOptions) string {
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = DefaultMaxColumnWidth
	}

	cells := make([]string, len(columns))
	for i, col := range columns {
		width := min(col.MaxContentLength, opts.MaxColumnWidth)
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		cells[i] = runewidth.FillRight(cell, width)
	}
	return strings.Join(cells, opts.Delimiter)
}

// Lines renders every body row, in order.
func (t *Table) Lines(opts RenderOptions) []string {
	lines := make([]string, len(t.Body))
	for i, r := range t.Body {
		lines[i] = RenderRow(r, t.Columns, opts)
	}
	return lines
}

// Field is one titled cell of a record view.
type Field struct {
	Title string
	Value string
}

// Fields pairs each cell of row with its column title. Columns the row does not
// reach yield empty values.
func Fields(row Row, columns []Column) []Field {
	fields := make([]Field, len(columns))
	for i, col := range columns {
		fields[i].Title = col.Title
		if i < len(row) {
			fields[i].Value = row[i]
		}
	}
	return fields
}
