package table

import "github.com/rileyhilliard/countertop/internal/errors"

// Sink routes counter updates to the cells of a rendered table.
type Sink struct {
	index      *Index
	columns    []Column
	nameColumn string
}

// NewSink returns a sink for t. The table must already be rendered so that
// no update can race the initial paint.
func NewSink(t *Table) (*Sink, error) {
	if !t.Rendered() {
		return nil, errors.New(errors.ErrRender,
			"Table must be drawn before it can take updates",
			"Call table.Render before creating the sink.")
	}
	return &Sink{index: t.index, columns: t.columns, nameColumn: t.nameColumn}, nil
}

// HandleUpdate writes fields into the row for (source, counter), one cell per
// column in display order. A column with no entry in fields is blanked,
// except the name column, which keeps the counter name it was laid out with.
// Updates for counters that are not in the table are ignored; the return
// value reports whether the counter was found.
func (s *Sink) HandleUpdate(source, counter string, fields map[string]string) bool {
	e, ok := s.index.entries[Key{Source: source, Counter: counter}]
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, col := range s.columns {
		value, ok := fields[col.Name]
		if !ok && col.Name == s.nameColumn {
			continue
		}
		e.cells[i].Rewrite(value)
	}
	return true
}
