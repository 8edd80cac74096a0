package source

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/metrics"
)

// UnixPrefix marks a listen address as a unix socket path.
const UnixPrefix = "unix:"

// Listener accepts event connections. Every connection is read as its own
// Stream.
type Listener struct {
	addr string
	opts *options

	mu sync.Mutex
	ln net.Listener
}

// NewListener returns a provider for addr: host:port or unix:/path.
func NewListener(addr string, opts ...Option) *Listener {
	return &Listener{addr: addr, opts: newOptions(opts)}
}

func (l *Listener) Name() string { return "listen " + l.addr }

// SplitAddr returns the network and address for a listen string.
func SplitAddr(addr string) (network, address string) {
	if path, ok := strings.CutPrefix(addr, UnixPrefix); ok {
		return "unix", path
	}
	return "tcp", addr
}

// Bind opens the socket so address errors surface before the table is
// drawn. Run binds on its own when Bind was not called.
func (l *Listener) Bind(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != nil {
		return nil
	}

	network, address := SplitAddr(l.addr)
	if network == "unix" {
		removeStaleSocket(address)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, network, address)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSource,
			fmt.Sprintf("Can't listen for events on %s", l.addr),
			"Pick a free address with --listen or 'listen' in the config.")
	}
	l.ln = ln
	return nil
}

// Addr returns the bound address, or "" before Bind.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

// Close releases a socket that was bound but never run. Run closes its own
// socket when ctx ends.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	err := l.ln.Close()
	l.ln = nil
	return err
}

// Run accepts connections until ctx is cancelled, then closes the socket
// and every open connection.
func (l *Listener) Run(ctx context.Context, h Handler) error {
	if err := l.Bind(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	l.opts.log.Info("accepting events on %s", ln.Addr())

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapWithCode(err, errors.ErrSource,
				fmt.Sprintf("Accepting events on %s failed", l.addr), "")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serve(ctx, conn, h)
		}()
	}
}

func (l *Listener) serve(ctx context.Context, conn net.Conn, h Handler) {
	metrics.ConnectionOpened()
	defer metrics.ConnectionClosed()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	name := l.addr
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" && addr.String() != "@" {
		name = addr.String()
	}
	l.opts.log.Debug("event connection from %s", name)

	stream := &Stream{name: name, r: conn, opts: l.opts}
	if err := stream.scan(ctx, h); err != nil {
		l.opts.log.Warn("%s: %v", name, err)
	}
	l.opts.log.Debug("event connection from %s closed", name)
}

// removeStaleSocket deletes a leftover socket file. Anything else at the path
// is left alone so Listen reports it.
func removeStaleSocket(path string) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSocket == 0 {
		return
	}
	os.Remove(path)
}
