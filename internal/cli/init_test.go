package cli

import (
	"bytes"
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProbe replaces the SSH probe for the duration of the test.
func stubProbe(t *testing.T, err error) *[]string {
	t.Helper()
	var probed []string
	orig := probeHost
	probeHost = func(_ context.Context, host string) error {
		probed = append(probed, host)
		return err
	}
	t.Cleanup(func() { probeHost = orig })
	return &probed
}

func TestInit_WritesStarterConfig(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, Init(InitOptions{Dir: dir, NonInteractive: true, Out: &out}))
	assert.Contains(t, out.String(), "Created")
	assert.Contains(t, out.String(), "countertop watch")

	path := filepath.Join(dir, config.ConfigFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# countertop configuration"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StarterConfig().Columns, cfg.Columns)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "localhost", cfg.Sources[0].Name)
	assert.NoError(t, config.Validate(cfg, config.WithHostCounters(source.HostCounters())))
}

func TestInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0644))

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep: me\n", string(data))

	require.NoError(t, Init(InitOptions{Dir: dir, NonInteractive: true, Overwrite: true, Out: &bytes.Buffer{}}))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 1)
}

func TestInit_SSHHost(t *testing.T) {
	probed := stubProbe(t, nil)
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, Init(InitOptions{Dir: dir, SSH: "deploy@build-01", NonInteractive: true, Out: &out}))
	assert.Equal(t, []string{"deploy@build-01"}, *probed)

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 2)

	remote, ok := cfg.Source("build-01")
	require.True(t, ok)
	assert.Equal(t, config.SourceHost, remote.Type)
	assert.Equal(t, "deploy@build-01", remote.SSH)
	assert.Equal(t, cfg.Sources[0].Counters, remote.Counters)
	assert.NoError(t, config.Validate(cfg, config.WithHostCounters(source.HostCounters())))
}

func TestInit_SSHProbeFails(t *testing.T) {
	stubProbe(t, goerrors.New("connection refused"))
	dir := t.TempDir()

	err := Init(InitOptions{Dir: dir, SSH: "gpu-box", NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.Contains(t, err.Error(), "ssh gpu-box")

	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "nothing written when the host can't be reached")
}

func TestRemoteSourceName(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"gpu-box", "gpu-box"},
		{"deploy@build-01", "build-01"},
		{"deploy@build-01:2222", "build-01"},
		{"10.0.0.5:22", "10.0.0.5"},
		{"root@localhost", "remote"},
		{"", "remote"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, remoteSourceName(tt.host))
		})
	}
}
