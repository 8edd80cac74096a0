package table

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Screen is an in-memory Terminal. It keeps a grid of terminal columns and
// counts writes. A wide rune takes two columns, like on a real terminal;
// zero-width runes are dropped. Used for previews and tests.
type Screen struct {
	mu     sync.Mutex
	lines  [][]rune
	writes int
}

// wideTail marks the second column of a wide rune.
const wideTail rune = -1

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{}
}

// WriteAt overwrites the grid starting at pos, growing it as needed.
func (s *Screen) WriteAt(pos Position, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	for len(s.lines) <= pos.Row {
		s.lines = append(s.lines, nil)
	}

	line := s.lines[pos.Row]
	col := pos.Col
	for _, r := range text {
		w := ansi.StringWidth(string(r))
		if w == 0 {
			continue
		}
		for len(line) < col+w {
			line = append(line, ' ')
		}
		line[col] = r
		for i := 1; i < w; i++ {
			line[col+i] = wideTail
		}
		col += w
	}
	s.lines[pos.Row] = line
}

// Line returns row as written, or "" past the last written row.
func (s *Screen) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.lines) {
		return ""
	}
	return render(s.lines[row])
}

// Span returns width columns of row starting at col, space filled.
func (s *Screen) Span(row, col, width int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var line []rune
	if row >= 0 && row < len(s.lines) {
		line = s.lines[row]
	}
	out := make([]rune, width)
	for i := range out {
		if c := col + i; c >= 0 && c < len(line) {
			out[i] = line[c]
		} else {
			out[i] = ' '
		}
	}
	return render(out)
}

// render turns grid columns back into text, skipping wide-rune tails.
func render(cols []rune) string {
	var b strings.Builder
	for _, r := range cols {
		if r != wideTail {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Writes returns the number of WriteAt calls so far.
func (s *Screen) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// String renders all rows, newline separated, with trailing spaces trimmed.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for i, line := range s.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRight(render(line), " "))
	}
	return b.String()
}
