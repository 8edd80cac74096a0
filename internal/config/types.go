package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Source types.
const (
	// SourcePush sources receive events over the listener or stdin.
	SourcePush = "push"
	// SourceHost sources poll /proc locally, or remotely when SSH is set.
	SourceHost = "host"
)

// Config represents the complete countertop.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Interval is how often sources publish counter values.
	// Push sources get it as a hint; host sources poll on it.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// NameColumn is the column pre-filled with the counter name.
	NameColumn string `yaml:"name_column" mapstructure:"name_column"`

	Columns []ColumnConfig `yaml:"columns" mapstructure:"columns"`
	Sources []SourceConfig `yaml:"sources" mapstructure:"sources"`

	// Listen is the address push events are accepted on: host:port or unix:/path.
	// Empty disables the listener.
	Listen string `yaml:"listen,omitempty" mapstructure:"listen"`

	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Prometheus PrometheusConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ColumnConfig is one table column.
type ColumnConfig struct {
	// Name is both the header label and the event field the column shows.
	Name string `yaml:"name" mapstructure:"name"`

	// Show hides the column when false. Columns without it are shown.
	Show *bool `yaml:"show,omitempty" mapstructure:"show"`

	// Width is the column width in terminal cells.
	Width int `yaml:"width" mapstructure:"width"`
}

// Visible reports whether the column takes part in the table.
func (c ColumnConfig) Visible() bool {
	return c.Show == nil || *c.Show
}

// SourceConfig is one event source and the counters shown for it.
type SourceConfig struct {
	Name string `yaml:"name" mapstructure:"name"`

	// Type is "push" (default) or "host".
	Type string `yaml:"type,omitempty" mapstructure:"type"`

	// SSH is the ssh alias or user@host a host source polls. Empty polls locally.
	SSH string `yaml:"ssh,omitempty" mapstructure:"ssh"`

	Counters []string `yaml:"counters" mapstructure:"counters"`
}

// LogConfig controls the log file written while the table is on screen.
type LogConfig struct {
	// File is the log path. Supports ~ expansion. Empty logs to stderr
	// when stderr is not a terminal, and nowhere otherwise.
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
}

// PrometheusConfig controls the self-metrics endpoint.
type PrometheusConfig struct {
	// Addr serves /metrics when set, e.g. "127.0.0.1:9464".
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:    CurrentConfigVersion,
		Interval:   time.Second,
		NameColumn: "Name",
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// StarterConfig is the config written by 'countertop init': the
// EventCounters column set and one host source.
func StarterConfig() *Config {
	cfg := DefaultConfig()
	hidden := false
	cfg.Columns = []ColumnConfig{
		{Name: "Name", Width: 16},
		{Name: "Last", Width: 12},
		{Name: "Mean", Width: 12},
		{Name: "Min", Width: 12},
		{Name: "Max", Width: 12},
		{Name: "StandardDeviation", Width: 10, Show: &hidden},
		{Name: "Count", Width: 6},
		{Name: "DisplayUnits", Width: 8},
	}
	cfg.Sources = []SourceConfig{
		{
			Name:     "localhost",
			Type:     SourceHost,
			Counters: []string{"cpu-usage", "load-1", "mem-used", "mem-available", "net-rx", "net-tx"},
		},
	}
	return cfg
}
