package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/countertop/internal/source"
	"github.com/rileyhilliard/countertop/internal/source/procfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSHReader_ReadsRemoteProc(t *testing.T) {
	host := RequireSSH(t)

	r := procfs.NewSSHReader(host, 10*time.Second)
	defer r.Close()

	out, err := r.Read(context.Background())
	require.NoError(t, err)

	sample, err := procfs.Parse(out, time.Now())
	require.NoError(t, err)
	assert.Positive(t, sample.CPU.Cores)
	assert.Positive(t, sample.Memory.Total)
	assert.NotEmpty(t, sample.Net)

	// Second read reuses the connection.
	_, err = r.Read(context.Background())
	require.NoError(t, err)
}

func TestHostProvider_RemoteEvents(t *testing.T) {
	host := RequireSSH(t)

	h := source.NewHost("remote", procfs.NewSSHReader(host, 10*time.Second), 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	got := make(chan source.Event, 64)
	go func() {
		_ = h.Run(ctx, func(ev source.Event) {
			select {
			case got <- ev:
			default:
			}
		})
	}()

	seen := map[string]bool{}
	for len(seen) < len(source.HostCounters()) {
		select {
		case ev := <-got:
			assert.Equal(t, "remote", ev.Source)
			assert.NotEmpty(t, ev.Fields["Last"])
			seen[ev.Counter] = true
		case <-ctx.Done():
			t.Fatalf("only saw %d counters: %v", len(seen), seen)
		}
	}
}
