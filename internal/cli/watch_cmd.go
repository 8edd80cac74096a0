package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
	"github.com/rileyhilliard/countertop/internal/table"
	"github.com/rileyhilliard/countertop/pkg/sshutil"
	"golang.org/x/term"
)

// WatchOptions are the watch flags. Empty values keep the config's settings.
type WatchOptions struct {
	Listen      string
	MetricsAddr string
	Interval    string
}

// apply writes the flag overrides into cfg.
func (o WatchOptions) apply(cfg *config.Config) error {
	if o.Listen != "" {
		cfg.Listen = o.Listen
	}
	if o.MetricsAddr != "" {
		cfg.Prometheus.Addr = o.MetricsAddr
	}
	if o.Interval != "" {
		d, err := time.ParseDuration(o.Interval)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid --interval %q", o.Interval),
				"Use a Go duration such as 500ms, 2s or 1m")
		}
		cfg.Interval = d
	}
	return nil
}

func watchCommand(opts WatchOptions) error {
	cfg, _, err := config.FindAndLoad(cfgFile)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	log, closer, err := watchLogger(cfg.Log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	sshutil.Log = log
	defer sshutil.CloseAgent()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &Watch{
		Config:  cfg,
		Display: table.NewANSITerminal(os.Stdout),
		Log:     log,
	}

	if isTerminal(os.Stdin) {
		// Raw mode so q and Ctrl+C arrive as bytes instead of line-buffered input.
		state, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrTerminal,
				"Can't put the terminal in raw mode",
				"Pipe events on stdin or run countertop from a real terminal.")
		}
		defer term.Restore(int(os.Stdin.Fd()), state)
		w.Keys = os.Stdin
	} else {
		w.Events = os.Stdin
	}

	return w.Run(ctx)
}

// watchLogger picks where logs go while the table owns the screen: the
// configured file, else stderr when it is redirected, else nowhere.
func watchLogger(cfg config.LogConfig) (logger.Logger, io.Closer, error) {
	if cfg.File != "" {
		log, closer, err := logger.NewFileLogger("[watch]", logger.LogOptions{
			File:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Debug:      verbose,
		})
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Can't open log file %s", cfg.File),
				"Check log.file in the config points at a writable path.")
		}
		return log, closer, nil
	}
	if !isTerminal(os.Stderr) {
		return logger.NewWriterLogger("[watch]", os.Stderr, verbose), nil, nil
	}
	return logger.Noop(), nil, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isInteractive reports whether prompts can be shown.
func isInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
