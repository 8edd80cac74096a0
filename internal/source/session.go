package source

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Session runs providers side by side.
type Session struct {
	providers []Provider
	log       logger.Logger
}

// NewSession returns an empty session.
func NewSession(log logger.Logger) *Session {
	if log == nil {
		log = logger.Noop()
	}
	return &Session{log: log}
}

// Enable adds a provider. Providers added after Run has started are not run.
func (s *Session) Enable(p Provider) {
	s.providers = append(s.providers, p)
}

// Providers returns the enabled providers in the order they were added.
func (s *Session) Providers() []Provider {
	return s.providers
}

// Run starts every provider and blocks until all of them return. The first
// provider error cancels the others and is returned. Cancelling ctx is a
// clean stop.
func (s *Session) Run(ctx context.Context, h Handler) error {
	if len(s.providers) == 0 {
		return errors.New(errors.ErrSource,
			"No event sources enabled",
			"Add a host source to the config, set 'listen', or pipe events on stdin.")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		g.Go(func() error {
			s.log.Debug("source %s: started", p.Name())
			err := p.Run(gctx, h)
			if err != nil && gctx.Err() == nil {
				s.log.Error("source %s: %v", p.Name(), err)
				return wrapProviderError(p, err)
			}
			s.log.Debug("source %s: stopped", p.Name())
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func wrapProviderError(p Provider, err error) error {
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	return errors.WrapWithCode(err, errors.ErrSource,
		fmt.Sprintf("Source '%s' failed", p.Name()), "")
}
