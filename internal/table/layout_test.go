package table

import (
	"testing"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioLayout() Layout {
	return Layout{
		Columns: []Column{{Name: "Name", Width: 10}, {Name: "Value", Width: 8}},
		Metrics: []Key{{Source: "App", Counter: "cpu-usage"}},
	}
}

func TestBuild_RowStructure(t *testing.T) {
	tbl, idx, err := Build(Layout{
		Columns: []Column{{Name: "Name", Width: 10}, {Name: "Mean", Width: 6}, {Name: "Count", Width: 5}},
		Metrics: []Key{
			{Source: "App", Counter: "cpu-usage"},
			{Source: "App", Counter: "gc-count"},
			{Source: "host", Counter: "load-1"},
		},
	})
	require.NoError(t, err)

	// border, header, border, then data+divider per metric
	assert.Equal(t, 3+2*3, tbl.Height())
	assert.Equal(t, 3, idx.Len())

	for _, key := range idx.Keys() {
		cells, ok := idx.Lookup(key)
		require.True(t, ok)
		assert.Len(t, cells, 3, "one data cell per visible column for %s", key)
	}

	// every row: leading joint plus a cell and a joint per column
	for i, row := range tbl.Rows() {
		assert.Len(t, row, 7, "row %d", i)
		width := 0
		for _, c := range row {
			width += c.Width()
		}
		assert.Equal(t, tbl.Width(), width, "row %d width", i)
	}
}

func TestBuild_DataCellsStartWithCounterName(t *testing.T) {
	_, idx, err := Build(scenarioLayout())
	require.NoError(t, err)

	cells, ok := idx.Lookup(Key{Source: "App", Counter: "cpu-usage"})
	require.True(t, ok)
	assert.Equal(t, "cpu-usage ", cells[0].Content())
	assert.Equal(t, "        ", cells[1].Content())
}

func TestBuild_CustomNameColumn(t *testing.T) {
	_, idx, err := Build(Layout{
		Columns:    []Column{{Name: "Counter", Width: 12}, {Name: "Mean", Width: 6}},
		Metrics:    []Key{{Source: "App", Counter: "requests"}},
		NameColumn: "Counter",
	})
	require.NoError(t, err)

	cells, _ := idx.Lookup(Key{Source: "App", Counter: "requests"})
	assert.Equal(t, "requests    ", cells[0].Content())
}

func TestBuild_IndexKeepsRowOrder(t *testing.T) {
	metrics := []Key{
		{Source: "a", Counter: "x"},
		{Source: "a", Counter: "y"},
		{Source: "b", Counter: "x"},
	}
	_, idx, err := Build(Layout{Columns: []Column{{Name: "Name", Width: 4}}, Metrics: metrics})
	require.NoError(t, err)
	assert.Equal(t, metrics, idx.Keys())
}

func TestBuild_KeyWithSeparatorCharacters(t *testing.T) {
	// "a-b"/"c" and "a"/"b-c" would collide under a joined "source-counter" key.
	_, idx, err := Build(Layout{
		Columns: []Column{{Name: "Name", Width: 6}},
		Metrics: []Key{{Source: "a-b", Counter: "c"}, {Source: "a", Counter: "b-c"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		errMsg string
	}{
		{
			name:   "no columns",
			layout: Layout{Metrics: []Key{{Source: "App", Counter: "x"}}},
			errMsg: "No visible columns",
		},
		{
			name: "zero width",
			layout: Layout{
				Columns: []Column{{Name: "Name", Width: 10}, {Name: "Mean", Width: 0}},
			},
			errMsg: "Column 'Mean' has width 0",
		},
		{
			name: "negative width",
			layout: Layout{
				Columns: []Column{{Name: "Name", Width: -3}},
			},
			errMsg: "Column 'Name' has width -3",
		},
		{
			name: "duplicate metric",
			layout: Layout{
				Columns: []Column{{Name: "Name", Width: 10}},
				Metrics: []Key{{Source: "App", Counter: "x"}, {Source: "App", Counter: "x"}},
			},
			errMsg: "'App/x' is listed more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, idx, err := Build(tt.layout)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.Nil(t, idx)
			assert.True(t, errors.IsCode(err, errors.ErrLayout))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBuild_NoMetrics(t *testing.T) {
	tbl, idx, err := Build(Layout{Columns: []Column{{Name: "Name", Width: 4}}})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Height())
	assert.Equal(t, 0, idx.Len())
}

func TestTable_Width(t *testing.T) {
	tbl, _, err := Build(scenarioLayout())
	require.NoError(t, err)
	assert.Equal(t, 21, tbl.Width())
	assert.Equal(t, []Column{{Name: "Name", Width: 10}, {Name: "Value", Width: 8}}, tbl.Columns())
}
