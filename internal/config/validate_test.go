package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Columns = []ColumnConfig{{Name: "Name", Width: 10}, {Name: "Value", Width: 8}}
	cfg.Sources = []SourceConfig{{Name: "App", Type: SourcePush, Counters: []string{"cpu-usage"}}}
	return cfg
}

func TestValidate(t *testing.T) {
	hidden := false

	tests := []struct {
		name        string
		modify      func(cfg *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			modify: func(cfg *Config) {},
		},
		{
			name:        "future version",
			modify:      func(cfg *Config) { cfg.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "zero interval",
			modify:      func(cfg *Config) { cfg.Interval = 0 },
			wantErr:     true,
			errContains: "Interval must be positive",
		},
		{
			name:        "negative interval",
			modify:      func(cfg *Config) { cfg.Interval = -time.Second },
			wantErr:     true,
			errContains: "Interval must be positive",
		},
		{
			name:        "empty name column",
			modify:      func(cfg *Config) { cfg.NameColumn = " " },
			wantErr:     true,
			errContains: "'name_column' is empty",
		},
		{
			name:        "no columns",
			modify:      func(cfg *Config) { cfg.Columns = nil },
			wantErr:     true,
			errContains: "No visible columns",
		},
		{
			name: "all columns hidden",
			modify: func(cfg *Config) {
				for i := range cfg.Columns {
					cfg.Columns[i].Show = &hidden
				}
			},
			wantErr:     true,
			errContains: "No visible columns",
		},
		{
			name:        "unnamed column",
			modify:      func(cfg *Config) { cfg.Columns[1].Name = "" },
			wantErr:     true,
			errContains: "Column #2 has no name",
		},
		{
			name:        "duplicate column",
			modify:      func(cfg *Config) { cfg.Columns[1].Name = "Name" },
			wantErr:     true,
			errContains: "Column 'Name' is defined twice",
		},
		{
			name:        "zero width",
			modify:      func(cfg *Config) { cfg.Columns[1].Width = 0 },
			wantErr:     true,
			errContains: "Column 'Value' has width 0",
		},
		{
			name: "hidden column still needs a width",
			modify: func(cfg *Config) {
				cfg.Columns = append(cfg.Columns, ColumnConfig{Name: "Min", Show: &hidden})
			},
			wantErr:     true,
			errContains: "Column 'Min' has width 0",
		},
		{
			name:        "no sources",
			modify:      func(cfg *Config) { cfg.Sources = nil },
			wantErr:     true,
			errContains: "No sources configured",
		},
		{
			name:        "unnamed source",
			modify:      func(cfg *Config) { cfg.Sources[0].Name = "" },
			wantErr:     true,
			errContains: "Source #1 has no name",
		},
		{
			name: "duplicate source",
			modify: func(cfg *Config) {
				cfg.Sources = append(cfg.Sources, SourceConfig{Name: "App", Counters: []string{"x"}})
			},
			wantErr:     true,
			errContains: "Source 'App' is defined twice",
		},
		{
			name:        "unknown source type",
			modify:      func(cfg *Config) { cfg.Sources[0].Type = "etw" },
			wantErr:     true,
			errContains: "unknown type 'etw'",
		},
		{
			name:        "ssh on push source",
			modify:      func(cfg *Config) { cfg.Sources[0].SSH = "box" },
			wantErr:     true,
			errContains: "sets 'ssh' but is a push source",
		},
		{
			name: "ssh on host source",
			modify: func(cfg *Config) {
				cfg.Sources[0].Type = SourceHost
				cfg.Sources[0].SSH = "user@box"
			},
		},
		{
			name: "ssh target with spaces",
			modify: func(cfg *Config) {
				cfg.Sources[0].Type = SourceHost
				cfg.Sources[0].SSH = "user@box -p 22"
			},
			wantErr:     true,
			errContains: "invalid ssh target",
		},
		{
			name:        "no counters",
			modify:      func(cfg *Config) { cfg.Sources[0].Counters = nil },
			wantErr:     true,
			errContains: "Source 'App' has no counters",
		},
		{
			name:        "blank counter",
			modify:      func(cfg *Config) { cfg.Sources[0].Counters = []string{"cpu-usage", ""} },
			wantErr:     true,
			errContains: "empty counter name",
		},
		{
			name:        "duplicate counter",
			modify:      func(cfg *Config) { cfg.Sources[0].Counters = []string{"a", "a"} },
			wantErr:     true,
			errContains: "Counter 'a' is listed twice",
		},
		{
			name:   "tcp listen address",
			modify: func(cfg *Config) { cfg.Listen = "127.0.0.1:7070" },
		},
		{
			name:   "unix listen address",
			modify: func(cfg *Config) { cfg.Listen = "unix:/tmp/countertop.sock" },
		},
		{
			name:        "unix listen without path",
			modify:      func(cfg *Config) { cfg.Listen = "unix:" },
			wantErr:     true,
			errContains: "has no socket path",
		},
		{
			name:        "listen without port",
			modify:      func(cfg *Config) { cfg.Listen = "localhost" },
			wantErr:     true,
			errContains: "Invalid listen address",
		},
		{
			name:        "bad metrics address",
			modify:      func(cfg *Config) { cfg.Prometheus.Addr = "9464" },
			wantErr:     true,
			errContains: "Invalid metrics address",
		},
		{
			name:        "negative log size",
			modify:      func(cfg *Config) { cfg.Log.MaxSizeMB = -1 },
			wantErr:     true,
			errContains: "log.max_size_mb can't be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateNil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidateWithHostCounters(t *testing.T) {
	known := []string{"cpu-usage", "load-1"}

	cfg := validConfig()
	cfg.Sources = []SourceConfig{
		{Name: "box", Type: SourceHost, Counters: []string{"cpu-usage", "load-1"}},
		{Name: "App", Type: SourcePush, Counters: []string{"anything-goes"}},
	}
	assert.NoError(t, Validate(cfg, WithHostCounters(known)))

	cfg.Sources[0].Counters = append(cfg.Sources[0].Counters, "gpu-usage")
	err := Validate(cfg, WithHostCounters(known))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't collect 'gpu-usage'")

	// Without the option, host counters aren't checked.
	assert.NoError(t, Validate(cfg))
}
