package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_StarterConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, check(&buf, config.StarterConfig(), "countertop.yaml", false))
	out := buf.String()

	assert.Contains(t, out, "countertop.yaml is valid")
	assert.Contains(t, out, "Columns")
	assert.Contains(t, out, "StandardDeviation (hidden)")
	assert.Contains(t, out, "Counters")
	assert.Contains(t, out, "cpu-usage")
	assert.Contains(t, out, "local /proc")
	assert.Contains(t, out, "6 rows")
	assert.NotContains(t, out, "|Name", "no preview without --preview")
}

func TestCheck_Preview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, check(&buf, pushConfig(), "c.yaml", true))
	out := buf.String()

	assert.Contains(t, out, "|Name      |Last    |")
	assert.Contains(t, out, "|errors    |        |")
	assert.Contains(t, out, "|requests  |        |")
}

func TestCheck_Invalid(t *testing.T) {
	cfg := pushConfig()
	cfg.Sources = nil

	var buf bytes.Buffer
	err := check(&buf, cfg, "c.yaml", false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Empty(t, buf.String())
}

func TestCheckCommand_ConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, config.Save(path, pushConfig()))

	orig := cfgFile
	cfgFile = path
	defer func() { cfgFile = orig }()

	var buf bytes.Buffer
	require.NoError(t, checkCommand(&buf, false))
	assert.Contains(t, buf.String(), path+" is valid")
	assert.Contains(t, buf.String(), "stdin")
}

func TestDescribeTarget(t *testing.T) {
	withListen := pushConfig()
	withListen.Listen = "unix:/tmp/ct.sock"

	tests := []struct {
		name string
		cfg  *config.Config
		src  config.SourceConfig
		want string
	}{
		{"remote host", pushConfig(), config.SourceConfig{Type: config.SourceHost, SSH: "gpu-box"}, "ssh gpu-box"},
		{"local host", pushConfig(), config.SourceConfig{Type: config.SourceHost}, "local /proc"},
		{"push with listener", withListen, config.SourceConfig{Type: config.SourcePush}, "unix:/tmp/ct.sock or stdin"},
		{"push", pushConfig(), config.SourceConfig{Type: config.SourcePush}, "stdin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeTarget(tt.cfg, tt.src))
		})
	}
}
