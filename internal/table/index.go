package table

import "sync"

// Index maps a counter Key to the DataCells of its row, in column order.
// It is filled by Build and never changes afterwards.
type Index struct {
	entries map[Key]*indexEntry
	keys    []Key
}

// indexEntry guards one row so two updates for the same counter never
// interleave their column writes.
type indexEntry struct {
	mu    sync.Mutex
	cells []*DataCell
}

func newIndex(size int) *Index {
	return &Index{
		entries: make(map[Key]*indexEntry, size),
		keys:    make([]Key, 0, size),
	}
}

func (ix *Index) register(key Key, cells []*DataCell) {
	ix.entries[key] = &indexEntry{cells: cells}
	ix.keys = append(ix.keys, key)
}

// Lookup returns the cells registered for key.
func (ix *Index) Lookup(key Key) ([]*DataCell, bool) {
	e, ok := ix.entries[key]
	if !ok {
		return nil, false
	}
	return e.cells, true
}

// Len returns the number of registered counters.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Keys returns the registered keys in row order.
func (ix *Index) Keys() []Key {
	return append([]Key(nil), ix.keys...)
}
