package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/rileyhilliard/countertop/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects events from any number of goroutines.
type recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan struct{}, 1024)}
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// waitFor blocks until at least n events arrived.
func (r *recorder) waitFor(t *testing.T, n int) []Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if evs := r.snapshot(); len(evs) >= n {
			return evs
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", n, len(r.snapshot()))
		}
	}
}

type fakeUpdater struct {
	known map[string]bool
	calls []Event
}

func (f *fakeUpdater) HandleUpdate(source, counter string, fields map[string]string) bool {
	f.calls = append(f.calls, Event{Source: source, Counter: counter, Fields: fields})
	return f.known[source+"/"+counter]
}

func TestRoute(t *testing.T) {
	u := &fakeUpdater{known: map[string]bool{"App/cpu-usage": true}}
	log := logger.NewBufferLogger()
	h := Route(u, log)

	h(Event{Source: "App", Counter: "cpu-usage", Fields: map[string]string{"Mean": "1"}})
	h(Event{Source: "App", Counter: "gc-count"})

	require.Len(t, u.calls, 2)
	assert.Equal(t, "1", u.calls[0].Fields["Mean"])

	msgs := log.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "debug", msgs[0].Level)
	assert.Contains(t, msgs[0].Message, "App/gc-count")
}

func TestRoute_IntoRenderedTable(t *testing.T) {
	tbl, _, err := table.Build(table.Layout{
		Columns: []table.Column{{Name: "Name", Width: 10}, {Name: "Value", Width: 8}},
		Metrics: []table.Key{{Source: "App", Counter: "cpu-usage"}},
	})
	require.NoError(t, err)
	screen := table.NewScreen()
	require.NoError(t, table.Render(tbl, screen, table.Position{}))
	sink, err := table.NewSink(tbl)
	require.NoError(t, err)

	ev, err := DecodeEvent([]byte(`{"source":"App","counter":"cpu-usage","fields":{"Value":42.5}}`))
	require.NoError(t, err)
	Route(sink, nil)(ev)

	assert.Equal(t, "|cpu-usage |42.5    |", screen.Line(3))
}

func TestWarnLimit(t *testing.T) {
	log := logger.NewBufferLogger()
	o := newOptions([]Option{WithLogger(log), WithWarnLimit(0, 2)})

	for i := 0; i < 5; i++ {
		o.warn("problem %d", i)
	}
	assert.Len(t, log.Snapshot(), 2)
}

func TestWithLogger_NilKeepsNoop(t *testing.T) {
	o := newOptions([]Option{WithLogger(nil)})
	assert.NotNil(t, o.log)
	o.warn("no panic")
}

// blockingProvider emits one event and waits for ctx.
type blockingProvider struct {
	name string
}

func (p *blockingProvider) Name() string { return p.name }

func (p *blockingProvider) Run(ctx context.Context, h Handler) error {
	h(Event{Source: p.name, Counter: "up"})
	<-ctx.Done()
	return ctx.Err()
}
