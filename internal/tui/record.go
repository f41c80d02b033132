package tui

import (
	"strconv"
	"strings"

	"github.com/rshade/gss-search/internal/table"
)

// RenderRecord formats a selected row as one "title: value" line per column.
// Untitled columns are labelled by their 1-based position. When styled is
// set the labels and values are rendered with lipgloss.
func RenderRecord(fields []table.Field, styled bool) string {
	var sb strings.Builder
	for i, f := range fields {
		title := f.Title
		if title == "" {
			title = "#" + strconv.Itoa(i+1)
		}

		if styled {
			sb.WriteString(LabelStyle.Render(title + ":"))
			sb.WriteString(" ")
			sb.WriteString(ValueStyle.Render(f.Value))
		} else {
			sb.WriteString(title)
			sb.WriteString(": ")
			sb.WriteString(f.Value)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
