// Package table implements the live counter table: a bordered grid that is
// painted once and then updated cell by cell, in place.
//
// # Lifecycle
//
// The table goes through three phases, always in this order:
//
//  1. Build computes the rows (borders, header, one data row per metric)
//     and the Index from metric Key to that metric's DataCells.
//  2. Render walks the rows top to bottom once. Every cell draws itself at
//     the cursor and remembers that Position for the lifetime of the table.
//  3. A Sink, created from the rendered table, routes each update to the
//     indexed DataCells, which rewrite only their own screen span.
//
// Nothing is added, removed or moved after Render. Only DataCell content
// changes.
//
// # Layout
//
//	=============================
//	|Name      |Value   |Count  |
//	=============================
//	|cpu-usage |42.5    |3      |
//	|----------|--------|-------|
//
// A width-1 BorderCell sits before the first cell of every row and after
// every cell, so the joints line up across header, data and divider rows.
//
// # Concurrency
//
// Sink.HandleUpdate may be called from many goroutines. Updates for the same
// Key are serialized by a per-entry mutex, updates for different keys run in
// parallel. Terminal implementations must make each WriteAt atomic.
//
// # Widths
//
// Widths are terminal cells as measured by ansi.StringWidth. Values shorter
// than a cell are padded with spaces. Longer values are written as-is and
// spill into the neighbouring cell; columns are expected to be sized for
// their data.
package table
