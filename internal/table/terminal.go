package table

import (
	"io"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Terminal is the write primitive cells draw through.
// WriteAt must write s starting at pos as one atomic operation.
type Terminal interface {
	WriteAt(pos Position, s string)
}

// Escape sequences without a helper in x/ansi's stable surface.
const (
	seqClearScreen = "\x1b[2J\x1b[H"
	seqHideCursor  = "\x1b[?25l"
	seqShowCursor  = "\x1b[?25h"
)

// ANSITerminal writes cursor-addressed text to a VT100-compatible stream.
// Each WriteAt is a single Write of the cursor move followed by the text, so
// concurrent callers never split each other's move and text.
type ANSITerminal struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewANSITerminal returns a terminal writing to w (usually os.Stdout).
func NewANSITerminal(w io.Writer) *ANSITerminal {
	return &ANSITerminal{w: w}
}

// WriteAt moves the cursor to pos and writes s.
func (t *ANSITerminal) WriteAt(pos Position, s string) {
	t.write(ansi.CursorPosition(pos.Col+1, pos.Row+1) + s)
}

// MoveTo positions the cursor without writing.
func (t *ANSITerminal) MoveTo(pos Position) {
	t.write(ansi.CursorPosition(pos.Col+1, pos.Row+1))
}

// Clear erases the screen and homes the cursor.
func (t *ANSITerminal) Clear() {
	t.write(seqClearScreen)
}

// HideCursor hides the hardware cursor so rewrites don't flicker it around.
func (t *ANSITerminal) HideCursor() {
	t.write(seqHideCursor)
}

// ShowCursor restores the hardware cursor.
func (t *ANSITerminal) ShowCursor() {
	t.write(seqShowCursor)
}

// Err returns the first write error, if any. Later writes are dropped once a
// write has failed.
func (t *ANSITerminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *ANSITerminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := io.WriteString(t.w, s); err != nil {
		t.err = err
	}
}
