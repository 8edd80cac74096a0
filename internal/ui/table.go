package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like the rest.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// Column widths grow to fit the widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]TableColumn, len(columns))
	copy(cols, columns)
	for i := range cols {
		cols[i].Width = max(cols[i].Width, lipgloss.Width(cols[i].Title))
		for _, row := range rows {
			if i < len(row) {
				cols[i].Width = max(cols[i].Width, lipgloss.Width(row[i]))
			}
		}
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(cols, tableRows)
	return t.View()
}

// MetricRow is one monitored counter in 'countertop check' output.
type MetricRow struct {
	Source  string
	Type    string
	Target  string // ssh host, "local" or the push address
	Counter string
}

// RenderMetricTable lists the monitored counters in table order.
func RenderMetricTable(rows []MetricRow) string {
	if len(rows) == 0 {
		return "No counters configured"
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Source, r.Counter, r.Type, r.Target}
	}
	return RenderSimpleTable([]TableColumn{
		{Title: "SOURCE"},
		{Title: "COUNTER"},
		{Title: "TYPE"},
		{Title: "FROM"},
	}, cells)
}

// ColumnRow is one configured column in 'countertop check' output.
type ColumnRow struct {
	Name  string
	Width int
	Shown bool
}

// RenderColumnList renders configured columns, marking hidden ones.
func RenderColumnList(cols []ColumnRow) string {
	var out string
	for _, c := range cols {
		if c.Shown {
			out += "  " + SuccessStyle().Render(SymbolComplete) + " " + c.Name +
				MutedStyle().Render(" ("+strconv.Itoa(c.Width)+")") + "\n"
		} else {
			out += "  " + MutedStyle().Render(SymbolHidden+" "+c.Name+" (hidden)") + "\n"
		}
	}
	return out
}
