package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/countertop/internal/metrics"
	"github.com/rileyhilliard/countertop/internal/source/procfs"
)

// maxRetryInterval caps the wait between failed polls.
const maxRetryInterval = 30 * time.Second

// hostCounter derives one counter from consecutive samples.
type hostCounter struct {
	name    string
	display string
	units   string
	format  func(float64) string
	// value returns false when the counter needs a previous sample.
	value func(prev, cur *procfs.Sample) (float64, bool)
}

var hostCounters = []hostCounter{
	{"cpu-usage", "CPU Usage", "%", formatFixed(1), cpuUsage},
	{"cpu-cores", "CPU Cores", "cores", formatFixed(0), func(_, cur *procfs.Sample) (float64, bool) {
		return float64(cur.CPU.Cores), true
	}},
	{"load-1", "Load Average (1m)", "", formatFixed(2), loadAvg(0)},
	{"load-5", "Load Average (5m)", "", formatFixed(2), loadAvg(1)},
	{"load-15", "Load Average (15m)", "", formatFixed(2), loadAvg(2)},
	{"mem-used", "Memory Used", "bytes", formatBytes, memory(func(m procfs.Memory) int64 { return m.Used() })},
	{"mem-available", "Memory Available", "bytes", formatBytes, memory(func(m procfs.Memory) int64 { return m.Available })},
	{"mem-total", "Memory Total", "bytes", formatBytes, memory(func(m procfs.Memory) int64 { return m.Total })},
	{"net-rx", "Network Received", "bytes/s", formatRate, netRate(true)},
	{"net-tx", "Network Sent", "bytes/s", formatRate, netRate(false)},
}

// HostCounters returns the counter names host sources emit.
func HostCounters() []string {
	names := make([]string, len(hostCounters))
	for i, c := range hostCounters {
		names[i] = c.name
	}
	return names
}

func cpuUsage(prev, cur *procfs.Sample) (float64, bool) {
	if prev == nil {
		return 0, false
	}
	total := cur.CPU.Total - prev.CPU.Total
	idle := cur.CPU.Idle - prev.CPU.Idle
	if total <= 0 {
		return 0, false
	}
	return float64(total-idle) / float64(total) * 100, true
}

func loadAvg(i int) func(_, cur *procfs.Sample) (float64, bool) {
	return func(_, cur *procfs.Sample) (float64, bool) {
		return cur.Load[i], true
	}
}

func memory(get func(procfs.Memory) int64) func(_, cur *procfs.Sample) (float64, bool) {
	return func(_, cur *procfs.Sample) (float64, bool) {
		return float64(get(cur.Memory)), true
	}
}

func netRate(rx bool) func(prev, cur *procfs.Sample) (float64, bool) {
	return func(prev, cur *procfs.Sample) (float64, bool) {
		if prev == nil {
			return 0, false
		}
		elapsed := cur.Time.Sub(prev.Time).Seconds()
		if elapsed <= 0 {
			return 0, false
		}
		prevRx, prevTx := prev.NetTotals()
		curRx, curTx := cur.NetTotals()
		delta := curTx - prevTx
		if rx {
			delta = curRx - prevRx
		}
		// Counters reset when an interface goes away.
		if delta < 0 {
			return 0, false
		}
		return float64(delta) / elapsed, true
	}
}

func formatFixed(decimals int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
}

func formatBytes(v float64) string {
	if v < 0 {
		v = 0
	}
	return humanize.IBytes(uint64(v))
}

func formatRate(v float64) string {
	return formatBytes(v) + "/s"
}

// stats keeps running statistics with Welford's method.
type stats struct {
	count int64
	mean  float64
	m2    float64
	min   float64
	max   float64
}

func (s *stats) add(v float64) {
	s.count++
	if s.count == 1 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	delta := v - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (v - s.mean)
}

func (s *stats) stddev() float64 {
	if s.count < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.count))
}

// Host polls /proc through a Reader and emits one event per counter per
// sample.
type Host struct {
	name     string
	reader   procfs.Reader
	interval time.Duration
	opts     *options
	now      func() time.Time

	prev  *procfs.Sample
	stats map[string]*stats
}

// NewHost returns a provider publishing host counters as source name.
func NewHost(name string, reader procfs.Reader, interval time.Duration, opts ...Option) *Host {
	if interval <= 0 {
		interval = time.Second
	}
	return &Host{
		name:     name,
		reader:   reader,
		interval: interval,
		opts:     newOptions(opts),
		now:      time.Now,
		stats:    make(map[string]*stats, len(hostCounters)),
	}
}

func (p *Host) Name() string { return p.name }

// Run polls immediately and then every interval. Failed polls are logged,
// counted and retried with exponential backoff starting at the interval.
// Run only returns when ctx is cancelled.
func (p *Host) Run(ctx context.Context, h Handler) error {
	defer p.reader.Close()

	retry := &backoff.ExponentialBackOff{
		InitialInterval:     p.interval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         max(maxRetryInterval, p.interval),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	retry.Reset()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		next := p.interval
		if err := p.Poll(ctx, h); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			metrics.RecordSourceError(p.name)
			next = retry.NextBackOff()
			p.opts.warn("%s: poll failed, retrying in %s: %v", p.name, next.Round(time.Millisecond), err)
		} else {
			retry.Reset()
		}
		timer.Reset(next)
	}
}

// Poll takes one sample and emits an event for every counter it can compute.
// Last is the newest value; Mean, StandardDeviation, Min, Max and Count cover
// every sample since the provider started.
func (p *Host) Poll(ctx context.Context, h Handler) error {
	start := time.Now()
	out, err := p.reader.Read(ctx)
	if err != nil {
		return err
	}
	sample, err := procfs.Parse(out, p.now())
	if err != nil {
		return fmt.Errorf("parsing /proc output: %w", err)
	}
	metrics.ObservePoll(p.name, time.Since(start))

	prev := p.prev
	p.prev = sample

	intervalSec := strconv.FormatFloat(p.interval.Seconds(), 'f', -1, 64)
	for _, c := range hostCounters {
		v, ok := c.value(prev, sample)
		if !ok {
			continue
		}
		st := p.stats[c.name]
		if st == nil {
			st = &stats{}
			p.stats[c.name] = st
		}
		st.add(v)

		h(Event{
			Source:  p.name,
			Counter: c.name,
			Fields: map[string]string{
				"Name":              c.name,
				"DisplayName":       c.display,
				"Last":              c.format(v),
				"Mean":              c.format(st.mean),
				"StandardDeviation": c.format(st.stddev()),
				"Min":               c.format(st.min),
				"Max":               c.format(st.max),
				"Count":             humanize.Comma(st.count),
				"IntervalSec":       intervalSec,
				"DisplayUnits":      c.units,
			},
		})
	}
	return nil
}
