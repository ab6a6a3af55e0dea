package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
)

// renderRecords renders a record set as an aligned table, with columns in
// schema order. A column missing from a record renders as an empty cell.
func renderRecords(tbl schema.Table, records []storage.Record) string {
	headers := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		headers[i] = col.Name
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(tbl.Columns))
		for j, col := range tbl.Columns {
			if v, ok := rec[col.Name]; ok {
				row[j] = v.String()
			}
		}
		rows[i] = row
	}

	return renderTable(headers, rows)
}

// renderTable renders headers and rows with width-aligned, padded cells and
// a divider under the header.
func renderTable(headers []string, rows [][]string) string {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}

	// Add padding to widths because lipgloss Width includes padding
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	sepStyle := lipgloss.NewStyle().Faint(true)

	var sb strings.Builder

	for i, h := range headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) {
				sb.WriteString(cellStyle.Width(colWidths[i]).Render(cell))
				if i < len(row)-1 {
					sb.WriteString(sepStyle.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
