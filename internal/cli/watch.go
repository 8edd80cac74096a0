package cli

import (
	"context"
	"io"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/rileyhilliard/countertop/internal/metrics"
	"github.com/rileyhilliard/countertop/internal/source"
	"github.com/rileyhilliard/countertop/internal/table"
	"github.com/rileyhilliard/countertop/internal/util"
	"golang.org/x/sync/errgroup"
)

// ExitHint is printed under the live table.
const ExitHint = "Press q or Ctrl+C to exit."

// Display is the terminal the live table is drawn on.
type Display interface {
	table.Terminal
	Clear()
	HideCursor()
	ShowCursor()
	MoveTo(pos table.Position)
	Err() error
}

// Watch draws the table for Config and keeps it updated until ctx ends,
// the user presses q, or a source fails.
type Watch struct {
	Config  *config.Config
	Display Display

	// Events is read as an NDJSON stream when set, e.g. piped stdin.
	Events io.Reader
	// Keys is read for q / Ctrl+C when set. It should be in raw mode.
	Keys io.Reader

	Log logger.Logger

	// OnReady is called once the table is drawn and every source is
	// accepting events.
	OnReady func(ready WatchReady)
}

// WatchReady describes a running watch.
type WatchReady struct {
	Table       *table.Table
	ListenAddr  string
	MetricsAddr string
}

// Run blocks until the watch ends. Config and layout errors are returned
// before anything is drawn.
func (w *Watch) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = logger.Noop()
	}
	cfg := w.Config

	if err := config.Validate(cfg, config.WithHostCounters(source.HostCounters())); err != nil {
		return err
	}
	tbl, index, err := table.Build(cfg.Layout())
	if err != nil {
		return err
	}

	opts := []source.Option{source.WithLogger(log)}
	session := source.NewSession(log)
	for _, p := range source.HostProviders(cfg, opts...) {
		session.Enable(p)
	}

	var ready WatchReady
	ready.Table = tbl

	// Sockets bound below are closed here unless the session takes them over.
	var unbind []func() error
	running := false
	defer func() {
		if running {
			return
		}
		for _, closeFn := range unbind {
			closeFn()
		}
	}()

	if cfg.Listen != "" {
		l := source.NewListener(cfg.Listen, opts...)
		if err := l.Bind(ctx); err != nil {
			return err
		}
		unbind = append(unbind, l.Close)
		ready.ListenAddr = l.Addr()
		session.Enable(l)
	}
	if w.Events != nil {
		session.Enable(source.NewStream("stdin", w.Events, opts...))
	}

	var metricsServer *metrics.Server
	if cfg.Prometheus.Addr != "" {
		metricsServer, err = metrics.Listen(cfg.Prometheus.Addr, log)
		if err != nil {
			return err
		}
		unbind = append(unbind, metricsServer.Close)
		ready.MetricsAddr = metricsServer.Addr()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := w.Display
	d.Clear()
	d.HideCursor()
	if err := table.Render(tbl, d, table.Position{}); err != nil {
		d.ShowCursor()
		return err
	}
	footer := table.Position{Row: tbl.Height() + 1}
	d.WriteAt(footer, ExitHint)
	defer func() {
		d.MoveTo(table.Position{Row: footer.Row + 1})
		d.ShowCursor()
	}()

	metrics.SetRenderedCells(index.Len() * len(tbl.Columns()))
	sink, err := table.NewSink(tbl)
	if err != nil {
		return err
	}
	var names []string
	for _, p := range session.Providers() {
		names = append(names, p.Name())
	}
	log.Info("watching %s, sources: %s", util.Counted(index.Len(), "counter", "counters"), util.JoinOrNone(names))

	running = true
	if w.OnReady != nil {
		w.OnReady(ready)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(session.Providers()) == 0 {
			log.Warn("no sources can produce events; the table will stay empty")
			return nil
		}
		if err := session.Run(gctx, source.Route(sink, log)); err != nil {
			return err
		}
		// Finished streams leave the last values on screen until the user quits.
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error { return metricsServer.Run(gctx) })
	}
	if w.Keys != nil {
		go func() {
			if waitForQuitKey(gctx, w.Keys) {
				log.Debug("quit key pressed")
				cancel()
			}
		}()
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err = g.Wait()
	if termErr := d.Err(); termErr != nil && err == nil {
		err = errors.WrapWithCode(termErr, errors.ErrTerminal,
			"Writing to the terminal failed", "")
	}
	return err
}

// waitForQuitKey reads keys until q, Q or Ctrl+C. It returns false when the
// reader ends first.
func waitForQuitKey(ctx context.Context, r io.Reader) bool {
	buf := make([]byte, 32)
	for {
		n, err := r.Read(buf)
		if ctx.Err() != nil {
			return false
		}
		for _, b := range buf[:n] {
			if isQuitKey(b) {
				return true
			}
		}
		if err != nil {
			return false
		}
	}
}

func isQuitKey(b byte) bool {
	return b == 'q' || b == 'Q' || b == 0x03
}

