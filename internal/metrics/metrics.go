package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event results.
const (
	ResultApplied   = "applied"
	ResultIgnored   = "ignored"
	ResultMalformed = "malformed"
)

var (
	// Event routing
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countertop_events_total",
		Help: "Counter events received, by what the table did with them",
	}, []string{"result"})

	renderedCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "countertop_rendered_cells",
		Help: "Data cells drawn by the initial render",
	})

	// Sources
	sourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countertop_source_errors_total",
		Help: "Failed polls or reads per source",
	}, []string{"source"})

	pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "countertop_poll_duration_seconds",
		Help:    "Time taken to collect one host sample",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"source"})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "countertop_listener_connections_active",
		Help: "Open event connections on the listener",
	})
)

// RecordEvent counts one routed event under result.
func RecordEvent(result string) {
	eventsTotal.WithLabelValues(result).Inc()
}

// RecordUpdate counts an event by whether the sink matched a row.
func RecordUpdate(applied bool) {
	if applied {
		RecordEvent(ResultApplied)
		return
	}
	RecordEvent(ResultIgnored)
}

// SetRenderedCells records how many data cells the table holds.
func SetRenderedCells(n int) {
	renderedCells.Set(float64(n))
}

// RecordSourceError counts a failed poll or read.
func RecordSourceError(source string) {
	sourceErrorsTotal.WithLabelValues(source).Inc()
}

// ObservePoll records how long a host sample took.
func ObservePoll(source string, d time.Duration) {
	pollDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ConnectionOpened and ConnectionClosed track listener connections.
func ConnectionOpened() { connectionsActive.Inc() }

func ConnectionClosed() { connectionsActive.Dec() }
