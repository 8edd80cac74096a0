package source

import (
	"time"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/source/procfs"
)

// DialTimeout bounds each SSH connection attempt of a remote host source.
const DialTimeout = 10 * time.Second

// HostProviders returns a Host provider for every host source in cfg. Push
// sources have no provider of their own; their events arrive through the
// listener or stdin.
func HostProviders(cfg *config.Config, opts ...Option) []Provider {
	var providers []Provider
	for _, src := range cfg.Sources {
		if src.Type != config.SourceHost {
			continue
		}
		var reader procfs.Reader
		if src.SSH != "" {
			reader = procfs.NewSSHReader(src.SSH, DialTimeout)
		} else {
			reader = procfs.NewLocalReader()
		}
		providers = append(providers, NewHost(src.Name, reader, cfg.Interval, opts...))
	}
	return providers
}
