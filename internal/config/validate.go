package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rileyhilliard/countertop/internal/errors"
)

// ValidationOption controls validation behavior.
type ValidationOption func(*validationContext)

type validationContext struct {
	hostCounters map[string]bool
}

// WithHostCounters restricts host sources to the given counter names.
func WithHostCounters(names []string) ValidationOption {
	return func(ctx *validationContext) {
		ctx.hostCounters = make(map[string]bool, len(names))
		for _, n := range names {
			ctx.hostCounters[n] = true
		}
	}
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config, opts ...ValidationOption) error {
	ctx := &validationContext{}
	for _, opt := range opts {
		opt(ctx)
	}

	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but countertop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade countertop, or lower 'version' in the config.")
	}

	if cfg.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval must be positive, got %s", cfg.Interval),
			"Set 'interval' to a duration like 1s or 500ms.")
	}

	if strings.TrimSpace(cfg.NameColumn) == "" {
		return errors.New(errors.ErrConfig,
			"'name_column' is empty",
			"Set it to the column that shows the counter name, usually 'Name'.")
	}

	if err := validateColumns(cfg.Columns); err != nil {
		return err
	}

	if err := validateSources(ctx, cfg.Sources); err != nil {
		return err
	}

	if cfg.Listen != "" {
		if err := validateListen(cfg.Listen); err != nil {
			return err
		}
	}

	if cfg.Prometheus.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Prometheus.Addr); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid metrics address '%s'", cfg.Prometheus.Addr),
				"Use host:port, like 127.0.0.1:9464.")
		}
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your config.")
	}

	return nil
}

func validateColumns(cols []ColumnConfig) error {
	seen := make(map[string]bool, len(cols))
	visible := 0

	for i, col := range cols {
		if strings.TrimSpace(col.Name) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Column #%d has no name", i+1),
				"Every column needs a 'name' matching an event field.")
		}
		if seen[col.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Column '%s' is defined twice", col.Name),
				"Remove or rename one of them.")
		}
		seen[col.Name] = true

		if col.Width < 1 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Column '%s' has width %d", col.Name, col.Width),
				"Set 'width' to at least 1.")
		}
		if col.Visible() {
			visible++
		}
	}

	if visible == 0 {
		return errors.New(errors.ErrConfig,
			"No visible columns",
			"Add a column, or set 'show: true' on one of them.")
	}
	return nil
}

func validateSources(ctx *validationContext, sources []SourceConfig) error {
	if len(sources) == 0 {
		return errors.New(errors.ErrConfig,
			"No sources configured",
			"Add at least one entry under 'sources' with the counters to show.")
	}

	seen := make(map[string]bool, len(sources))
	for i, src := range sources {
		if strings.TrimSpace(src.Name) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Source #%d has no name", i+1),
				"Give the source the name its events are published under.")
		}
		if seen[src.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Source '%s' is defined twice", src.Name),
				"Merge the counters into one entry.")
		}
		seen[src.Name] = true

		if err := validateSource(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

func validateSource(ctx *validationContext, src SourceConfig) error {
	switch src.Type {
	case "", SourcePush:
		if src.SSH != "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Source '%s' sets 'ssh' but is a push source", src.Name),
				"Set 'type: host' to poll a remote machine over SSH.")
		}
	case SourceHost:
		if strings.Contains(src.SSH, " ") {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Source '%s' has an invalid ssh target '%s'", src.Name, src.SSH),
				"Use an ssh alias, hostname, or user@hostname.")
		}
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Source '%s' has unknown type '%s'", src.Name, src.Type),
			"Use 'push' or 'host'.")
	}

	if len(src.Counters) == 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Source '%s' has no counters", src.Name),
			"List the counter names to show under 'counters'.")
	}

	seen := make(map[string]bool, len(src.Counters))
	for _, counter := range src.Counters {
		if strings.TrimSpace(counter) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Source '%s' has an empty counter name", src.Name),
				"Remove the blank entry from 'counters'.")
		}
		if seen[counter] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Counter '%s' is listed twice for source '%s'", counter, src.Name),
				"Each counter can only appear once per source.")
		}
		seen[counter] = true

		if src.Type == SourceHost && ctx.hostCounters != nil && !ctx.hostCounters[counter] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Host source '%s' can't collect '%s'", src.Name, counter),
				"Run 'countertop check' to list the counters host sources provide.")
		}
	}
	return nil
}

func validateListen(addr string) error {
	if path, ok := strings.CutPrefix(addr, "unix:"); ok {
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Listen address 'unix:' has no socket path",
				"Use unix:/path/to/socket.")
		}
		return nil
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Invalid listen address '%s'", addr),
			"Use host:port, like 127.0.0.1:7070, or unix:/path/to/socket.")
	}
	return nil
}

func validateLog(cfg LogConfig) error {
	if cfg.MaxSizeMB < 0 {
		return fmt.Errorf("log.max_size_mb can't be negative (got %d)", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups can't be negative (got %d)", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays < 0 {
		return fmt.Errorf("log.max_age_days can't be negative (got %d)", cfg.MaxAgeDays)
	}
	return nil
}
