// Package table holds the tabular data model persisted by the cache: a header
// row, ordered body rows and per-column display metadata.
//
// A Table is built once from raw rows and never mutated afterwards; a refresh
// builds a new Table from scratch and replaces the old one wholesale.
package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
)

// ErrColumnMismatch indicates a decoded table violates the column invariant.
var ErrColumnMismatch = errors.New("column count does not match widest row")

// Row is an ordered sequence of rendered cells.
type Row []string

// Column carries display metadata derived from the rows at build time.
type Column struct {
	// Title is the header cell at the same position, or empty when the header is shorter.
	Title string `json:"title"`

	// MaxContentLength is the widest body cell at this position, in terminal cells.
	MaxContentLength int `json:"max_content_length"`
}

// Table is the structured form of one sheet.
type Table struct {
	Header  Row      `json:"header"`
	Body    []Row    `json:"body"`
	Columns []Column `json:"columns"`
}

// Empty returns the table produced by input with no non-empty rows.
func Empty() *Table {
	return &Table{
		Header:  Row{},
		Body:    []Row{},
		Columns: []Column{},
	}
}

// Build turns raw rows into a Table. The column count is the widest input row
// (measured before empty rows are dropped), the first non-empty row becomes the
// header and the remaining non-empty rows, in order, become the body.
func Build(rows [][]string) *Table {
	columnCount := 0
	for _, r := range rows {
		columnCount = max(columnCount, len(r))
	}

	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		kept = append(kept, append(Row(nil), r...))
	}

	if len(kept) == 0 {
		return Empty()
	}

	t := &Table{
		Header:  kept[0],
		Body:    kept[1:],
		Columns: make([]Column, columnCount),
	}

	for i := range t.Columns {
		if i < len(t.Header) {
			t.Columns[i].Title = t.Header[i]
		}
	}

	for _, r := range t.Body {
		for i := 0; i < len(r) && i < columnCount; i++ {
			t.Columns[i].MaxContentLength = max(t.Columns[i].MaxContentLength, CellWidth(r[i]))
		}
	}

	return t
}

// FromValues coerces raw API values to text and builds a Table from them.
func FromValues(values [][]any) *Table {
	rows := make([][]string, len(values))
	for i, v := range values {
		row := make([]string, len(v))
		for j, cell := range v {
			row[j] = CellText(cell)
		}
		rows[i] = row
	}
	return Build(rows)
}

// CellText renders a scalar cell value as text. Numbers use their shortest
// decimal form; anything that is not a string or a number becomes "".
func CellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

// CellWidth is the number of terminal cells s occupies.
func CellWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Validate checks the column invariant on a table that did not come from Build,
// such as one decoded from disk.
func (t *Table) Validate() error {
	widest := len(t.Header)
	for _, r := range t.Body {
		widest = max(widest, len(r))
	}
	if widest != len(t.Columns) {
		return fmt.Errorf("%w: %d columns, widest row has %d cells", ErrColumnMismatch, len(t.Columns), widest)
	}
	return nil
}

// IsEmpty reports whether the table has no header (and therefore no body).
func (t *Table) IsEmpty() bool {
	return len(t.Header) == 0
}
