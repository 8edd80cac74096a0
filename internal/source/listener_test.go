package source

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAddr(t *testing.T) {
	tests := []struct {
		addr        string
		wantNetwork string
		wantAddress string
	}{
		{"127.0.0.1:7070", "tcp", "127.0.0.1:7070"},
		{":7070", "tcp", ":7070"},
		{"unix:/tmp/countertop.sock", "unix", "/tmp/countertop.sock"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			network, address := SplitAddr(tt.addr)
			assert.Equal(t, tt.wantNetwork, network)
			assert.Equal(t, tt.wantAddress, address)
		})
	}
}

// startListener binds l and runs it until the test ends.
func startListener(t *testing.T, l *Listener, h Handler) {
	t.Helper()
	require.NoError(t, l.Bind(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, h) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("listener did not stop")
		}
	})
}

func TestListener_TCP(t *testing.T) {
	l := NewListener("127.0.0.1:0", WithLogger(logger.NewBufferLogger()))
	assert.Empty(t, l.Addr())

	rec := newRecorder()
	startListener(t, l, rec.handle)
	require.NotEmpty(t, l.Addr())

	// Two clients at once, each its own stream.
	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", l.Addr())
		require.NoError(t, err)
		defer conn.Close()
		fmt.Fprintf(conn, `{"source":"App","counter":"c%d","fields":{"Mean":%d}}`+"\n", i, i)
		fmt.Fprintln(conn, "not json")
	}

	evs := rec.waitFor(t, 2)
	counters := []string{evs[0].Counter, evs[1].Counter}
	assert.ElementsMatch(t, []string{"c0", "c1"}, counters)
}

func TestListener_Unix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.sock")
	l := NewListener(UnixPrefix + path)
	assert.Equal(t, "listen unix:"+path, l.Name())

	rec := newRecorder()
	startListener(t, l, rec.handle)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	fmt.Fprintln(conn, `{"source":"App","fields":{"Name":"cpu-usage","Mean":1.5}}`)

	evs := rec.waitFor(t, 1)
	assert.Equal(t, Event{Source: "App", Counter: "cpu-usage", Fields: map[string]string{
		"Name": "cpu-usage", "Mean": "1.5",
	}}, evs[0])
}

func TestListener_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	stale, err := net.Listen("unix", path)
	require.NoError(t, err)
	// Leave the file behind the way a crashed process would.
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())
	_, err = os.Lstat(path)
	require.NoError(t, err)

	l := NewListener(UnixPrefix + path)
	require.NoError(t, l.Bind(context.Background()))
	require.NoError(t, l.ln.Close())
}

func TestListener_KeepsNonSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	err := NewListener(UnixPrefix + path).Bind(context.Background())
	require.Error(t, err)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "data", string(data))
}

func TestListener_AddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	err = NewListener(taken.Addr().String()).Run(context.Background(), func(Event) {})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSource))
	assert.Contains(t, err.Error(), "Can't listen for events")
}

func TestListener_CloseReleasesAddress(t *testing.T) {
	l := NewListener("127.0.0.1:0")
	require.NoError(t, l.Bind(context.Background()))
	addr := l.Addr()
	require.NotEmpty(t, addr)

	require.NoError(t, l.Close())
	assert.Empty(t, l.Addr())
	assert.NoError(t, l.Close(), "closing twice is harmless")

	again, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	again.Close()
}

func TestListener_CancelClosesConnections(t *testing.T) {
	l := NewListener("127.0.0.1:0")
	require.NoError(t, l.Bind(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, func(Event) {}) }()

	conn, err := net.Dial("tcp", l.Addr())
	require.NoError(t, err)
	defer conn.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener waited on an idle connection")
	}
}
