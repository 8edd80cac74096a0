package table

import "github.com/rileyhilliard/countertop/internal/errors"

// Render draws the table onto term starting at origin, row by row, left to
// right. Each cell records the position it was drawn at. A table can only be
// rendered once: a second call returns an ErrRender error and draws nothing.
func Render(t *Table, term Terminal, origin Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rendered {
		return errors.New(errors.ErrRender,
			"Table has already been drawn",
			"Build a new table to draw it somewhere else.")
	}

	cursor := origin
	for _, row := range t.rows {
		cursor.Col = origin.Col
		for _, cell := range row {
			cell.Draw(term, cursor)
			cursor.Col += cell.Width()
		}
		cursor.Row++
	}

	t.rendered = true
	t.origin = origin
	return nil
}
