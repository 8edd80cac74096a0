package table

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/countertop/internal/errors"
)

// DefaultNameColumn is the column pre-filled with the counter name.
const DefaultNameColumn = "Name"

// Border glyphs.
const (
	glyphJoint  = "|"
	glyphHeader = '='
	glyphDivide = '-'
)

// Column is a visible table column.
type Column struct {
	Name  string
	Width int
}

// Key identifies one monitored counter, and so one data row.
type Key struct {
	Source  string
	Counter string
}

func (k Key) String() string {
	return k.Source + "/" + k.Counter
}

// Layout is the input to Build. Columns and Metrics must already be in
// display order.
type Layout struct {
	Columns []Column
	Metrics []Key

	// NameColumn is the column whose data cells start out holding the
	// counter name. Defaults to DefaultNameColumn.
	NameColumn string
}

// Row is one line of the table.
type Row []Cell

// Table is the fixed structure produced by Build.
type Table struct {
	columns    []Column
	nameColumn string
	rows       []Row
	index      *Index

	mu       sync.Mutex
	rendered bool
	origin   Position
}

// Build validates the layout and constructs the table and its update index.
// Nothing is built when the layout is invalid.
func Build(layout Layout) (*Table, *Index, error) {
	if err := validateLayout(layout); err != nil {
		return nil, nil, err
	}

	nameColumn := layout.NameColumn
	if nameColumn == "" {
		nameColumn = DefaultNameColumn
	}

	t := &Table{
		columns:    append([]Column(nil), layout.Columns...),
		nameColumn: nameColumn,
		index:      newIndex(len(layout.Metrics)),
	}

	t.rows = append(t.rows,
		borderRow(layout.Columns, glyphHeader, string(glyphHeader)),
		headerRow(layout.Columns),
		borderRow(layout.Columns, glyphHeader, string(glyphHeader)),
	)

	for _, key := range layout.Metrics {
		row, cells := dataRow(layout.Columns, nameColumn, key.Counter)
		t.rows = append(t.rows, row, borderRow(layout.Columns, glyphDivide, glyphJoint))
		t.index.register(key, cells)
	}

	return t, t.index, nil
}

func validateLayout(layout Layout) error {
	if len(layout.Columns) == 0 {
		return errors.New(errors.ErrLayout,
			"No visible columns to lay out",
			"Set 'show: true' on at least one column.")
	}

	for _, col := range layout.Columns {
		if col.Width <= 0 {
			return errors.New(errors.ErrLayout,
				fmt.Sprintf("Column '%s' has width %d", col.Name, col.Width),
				"Column widths must be at least 1.")
		}
	}

	seen := make(map[Key]bool, len(layout.Metrics))
	for _, key := range layout.Metrics {
		if seen[key] {
			return errors.New(errors.ErrLayout,
				fmt.Sprintf("Counter '%s' is listed more than once", key),
				"Each source/counter pair can only appear once.")
		}
		seen[key] = true
	}

	return nil
}

// borderRow builds a divider: a joint, then per column a run of fill and a joint.
func borderRow(cols []Column, fill byte, joint string) Row {
	row := make(Row, 0, 2*len(cols)+1)
	row = append(row, NewBorderCell(joint))
	for _, col := range cols {
		row = append(row, NewBorderCell(strings.Repeat(string(fill), col.Width)))
		row = append(row, NewBorderCell(joint))
	}
	return row
}

func headerRow(cols []Column) Row {
	row := make(Row, 0, 2*len(cols)+1)
	row = append(row, NewBorderCell(glyphJoint))
	for _, col := range cols {
		row = append(row, NewHeaderCell(col.Name, col.Width))
		row = append(row, NewBorderCell(glyphJoint))
	}
	return row
}

func dataRow(cols []Column, nameColumn, counter string) (Row, []*DataCell) {
	row := make(Row, 0, 2*len(cols)+1)
	cells := make([]*DataCell, 0, len(cols))

	row = append(row, NewBorderCell(glyphJoint))
	for _, col := range cols {
		initial := ""
		if col.Name == nameColumn {
			initial = counter
		}
		cell := NewDataCell(initial, col.Width)
		cells = append(cells, cell)
		row = append(row, cell, NewBorderCell(glyphJoint))
	}
	return row, cells
}

// Columns returns the table columns in display order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Rows returns the table rows, top to bottom.
func (t *Table) Rows() []Row {
	return t.rows
}

// Index returns the update index built with the table.
func (t *Table) Index() *Index {
	return t.index
}

// Width is the display width of every row.
func (t *Table) Width() int {
	w := 1
	for _, col := range t.columns {
		w += col.Width + 1
	}
	return w
}

// Height is the number of terminal lines the table occupies.
func (t *Table) Height() int {
	return len(t.rows)
}

// Rendered reports whether Render has drawn the table.
func (t *Table) Rendered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rendered
}

// Origin returns the position the table was rendered at.
func (t *Table) Origin() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.origin
}
