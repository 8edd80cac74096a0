package integration

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/countertop/internal/cli"
	"github.com/rileyhilliard/countertop/internal/table"
	"github.com/rileyhilliard/countertop/pkg/sshutil"
)

// RequireSSH skips the test if the SSH test server is not configured.
func RequireSSH(t *testing.T) string {
	t.Helper()
	host := os.Getenv("COUNTERTOP_TEST_SSH_HOST")
	if host == "" {
		t.Skip("Skipping: COUNTERTOP_TEST_SSH_HOST not set (SSH test server not available)")
	}
	if os.Getenv("COUNTERTOP_TEST_SSH_KEY") == "" {
		t.Skip("Skipping: COUNTERTOP_TEST_SSH_KEY not set (SSH test key not available)")
	}
	t.Setenv(sshutil.EnvSSHKey, os.Getenv("COUNTERTOP_TEST_SSH_KEY"))
	if user := os.Getenv("COUNTERTOP_TEST_SSH_USER"); user != "" {
		t.Setenv(sshutil.EnvSSHUser, user)
	}

	// The test server's host key is generated per run.
	sshutil.StrictHostKeyChecking = false
	t.Cleanup(func() {
		sshutil.StrictHostKeyChecking = true
		sshutil.CloseAgent()
	})
	return host
}

// syncBuffer is a bytes.Buffer safe to read while a watch writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runningWatch is a watch started in the background.
type runningWatch struct {
	out   *syncBuffer
	ready cli.WatchReady
	stop  context.CancelFunc
	done  chan error
}

// startWatch runs w against an ANSI terminal writing to a buffer.
func startWatch(t *testing.T, w *cli.Watch) *runningWatch {
	t.Helper()
	rw := &runningWatch{out: &syncBuffer{}, done: make(chan error, 1)}
	w.Display = table.NewANSITerminal(rw.out)

	ready := make(chan cli.WatchReady, 1)
	w.OnReady = func(r cli.WatchReady) { ready <- r }

	ctx, cancel := context.WithCancel(context.Background())
	rw.stop = cancel
	go func() { rw.done <- w.Run(ctx) }()

	select {
	case rw.ready = <-ready:
	case err := <-rw.done:
		cancel()
		t.Fatalf("watch ended before it was ready: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		t.Fatal("timed out waiting for watch to start")
	}
	t.Cleanup(cancel)
	return rw
}

// Stop cancels the watch and returns its result.
func (rw *runningWatch) Stop(t *testing.T) error {
	t.Helper()
	rw.stop()
	select {
	case err := <-rw.done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
		return nil
	}
}

// cellAt returns the position a counter's column was drawn at.
func (rw *runningWatch) cellAt(t *testing.T, source, counter string, column int) table.Position {
	t.Helper()
	cells, ok := rw.ready.Table.Index().Lookup(table.Key{Source: source, Counter: counter})
	if !ok {
		t.Fatalf("no row for %s/%s", source, counter)
	}
	pos, drawn := cells[column].Position()
	if !drawn {
		t.Fatalf("cell %d of %s/%s was never drawn", column, source, counter)
	}
	return pos
}
