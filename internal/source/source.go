// Package source produces counter events for the live table. A Session runs
// a set of Providers concurrently and hands every event they produce to a
// single Handler.
package source

import (
	"context"

	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/rileyhilliard/countertop/internal/metrics"
	"golang.org/x/time/rate"
)

// Event is one counter update. Fields never hold a null; absent values are
// missing keys.
type Event struct {
	Source  string
	Counter string
	Fields  map[string]string
}

// Handler receives events. It is called from many goroutines.
type Handler func(Event)

// Provider produces events until its input ends or ctx is cancelled.
type Provider interface {
	Name() string
	Run(ctx context.Context, h Handler) error
}

// Updater is the part of *table.Sink a Handler routes into.
type Updater interface {
	HandleUpdate(source, counter string, fields map[string]string) bool
}

// Route returns a Handler that applies events to u and counts the outcome.
func Route(u Updater, log logger.Logger) Handler {
	if log == nil {
		log = logger.Noop()
	}
	return func(ev Event) {
		applied := u.HandleUpdate(ev.Source, ev.Counter, ev.Fields)
		metrics.RecordUpdate(applied)
		if !applied {
			log.Debug("no row for %s/%s, event dropped", ev.Source, ev.Counter)
		}
	}
}

// Option configures a provider.
type Option func(*options)

type options struct {
	log     logger.Logger
	limiter *rate.Limiter
}

// WithLogger sets the provider's logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithWarnLimit caps how many warnings per second a provider logs for
// recurring problems like malformed input.
func WithWarnLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		log:     logger.Noop(),
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// warn logs when the limiter allows it.
func (o *options) warn(format string, args ...interface{}) {
	if o.limiter.Allow() {
		o.log.Warn(format, args...)
	}
}
