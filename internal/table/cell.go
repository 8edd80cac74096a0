package table

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Position is a zero-based terminal coordinate.
type Position struct {
	Row int
	Col int
}

// Cell is one fixed-width unit of a row.
// Draw binds the cell to term at the given position; a cell is drawn once.
type Cell interface {
	Width() int
	Draw(term Terminal, at Position)
}

// binding records where a cell was drawn. It is written once by Draw and
// read by every later rewrite.
type binding struct {
	term  Terminal
	pos   Position
	bound bool
}

func (b *binding) bind(term Terminal, at Position) {
	if b.bound {
		panic(fmt.Sprintf("table: cell already drawn at %d,%d", b.pos.Row, b.pos.Col))
	}
	b.term = term
	b.pos = at
	b.bound = true
}

// BorderCell is a static glyph run: a column joint or a row divider.
type BorderCell struct {
	glyph string
	binding
}

// NewBorderCell returns a border cell whose width is the display width of glyph.
func NewBorderCell(glyph string) *BorderCell {
	return &BorderCell{glyph: glyph}
}

func (c *BorderCell) Width() int { return ansi.StringWidth(c.glyph) }

func (c *BorderCell) Draw(term Terminal, at Position) {
	c.bind(term, at)
	term.WriteAt(at, c.glyph)
}

// HeaderCell is a column title padded to the column width.
type HeaderCell struct {
	label string
	width int
	binding
}

// NewHeaderCell returns a header cell for a column.
func NewHeaderCell(label string, width int) *HeaderCell {
	return &HeaderCell{label: sanitize(label), width: width}
}

func (c *HeaderCell) Width() int { return c.width }

func (c *HeaderCell) Draw(term Terminal, at Position) {
	c.bind(term, at)
	term.WriteAt(at, pad(c.label, c.width))
}

// DataCell holds one counter field and is the only cell that can be
// rewritten after the initial paint.
type DataCell struct {
	width int

	mu      sync.Mutex
	content string
	binding
}

// NewDataCell returns a data cell with initial text.
func NewDataCell(initial string, width int) *DataCell {
	return &DataCell{width: width, content: pad(sanitize(initial), width)}
}

func (c *DataCell) Width() int { return c.width }

func (c *DataCell) Draw(term Terminal, at Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(term, at)
	term.WriteAt(at, c.content)
}

// Rewrite replaces the cell text at its recorded position. Escape sequences
// are stripped and control characters become spaces, so a value can never
// move the cursor out of its span. Values shorter than the cell are space
// padded; an empty value blanks the cell.
// Calling Rewrite before the cell was drawn is a programming error and panics.
func (c *DataCell) Rewrite(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		panic("table: rewrite of a cell that was never drawn")
	}
	c.content = pad(sanitize(value), c.width)
	c.term.WriteAt(c.pos, c.content)
}

// Content returns the last text written to the cell, padding included.
func (c *DataCell) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Position reports where the cell was drawn and whether it has been drawn.
func (c *DataCell) Position() (Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos, c.bound
}

// sanitize reduces s to printable text: ANSI sequences are removed and any
// remaining C0/C1 control rune (newline, tab, bare ESC, ...) becomes a space.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// pad right-pads s with spaces to width display cells. Longer strings are
// returned unchanged.
func pad(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
