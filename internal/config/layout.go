package config

import (
	"sort"

	"github.com/rileyhilliard/countertop/internal/table"
)

// VisibleColumns returns the shown columns in config order.
func (c *Config) VisibleColumns() []ColumnConfig {
	var cols []ColumnConfig
	for _, col := range c.Columns {
		if col.Visible() {
			cols = append(cols, col)
		}
	}
	return cols
}

// Metrics returns every configured (source, counter) pair, sources sorted
// by name and each source's counters sorted, so the same config always
// lays out the same table regardless of the order it was written in.
func (c *Config) Metrics() []table.Key {
	sources := make([]SourceConfig, len(c.Sources))
	copy(sources, c.Sources)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})

	var keys []table.Key
	for _, src := range sources {
		counters := append([]string(nil), src.Counters...)
		sort.Strings(counters)
		for _, counter := range counters {
			keys = append(keys, table.Key{Source: src.Name, Counter: counter})
		}
	}
	return keys
}

// Layout converts the config into the input of table.Build.
func (c *Config) Layout() table.Layout {
	visible := c.VisibleColumns()
	cols := make([]table.Column, len(visible))
	for i, col := range visible {
		cols[i] = table.Column{Name: col.Name, Width: col.Width}
	}
	return table.Layout{
		Columns:    cols,
		Metrics:    c.Metrics(),
		NameColumn: c.NameColumn,
	}
}

// Source returns the source named name.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return SourceConfig{}, false
}
