package procfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/pkg/sshutil"
)

// Reader produces batched /proc output, one sample per call.
type Reader interface {
	Read(ctx context.Context) (string, error)
	Close() error
}

// LocalReader reads the files from the local filesystem.
type LocalReader struct {
	// Root is prefixed to every path in Files. Empty means "/".
	Root string
}

// NewLocalReader returns a reader for this machine's /proc.
func NewLocalReader() *LocalReader {
	return &LocalReader{}
}

func (r *LocalReader) Read(ctx context.Context) (string, error) {
	sections := make([]string, len(Files))
	for i, f := range Files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(filepath.Join(r.root(), f))
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrSource,
				fmt.Sprintf("Can't read %s", f),
				"Host sources need a Linux /proc. Use 'ssh' to poll a Linux machine instead.")
		}
		sections[i] = string(data)
	}
	return JoinSections(sections), nil
}

func (r *LocalReader) root() string {
	if r.Root == "" {
		return "/"
	}
	return r.Root
}

func (r *LocalReader) Close() error { return nil }

// remote is the part of *sshutil.Client the SSH reader uses.
type remote interface {
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)
	Alive() bool
	Close() error
}

// SSHReader runs Command on a remote host. The connection is kept between
// reads and redialed when it stops answering.
type SSHReader struct {
	host    string
	timeout time.Duration
	dial    func(host string, timeout time.Duration) (remote, error)

	mu     sync.Mutex
	client remote
}

// NewSSHReader returns a reader for host, an ssh alias or user@host[:port].
func NewSSHReader(host string, timeout time.Duration) *SSHReader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SSHReader{
		host:    host,
		timeout: timeout,
		dial: func(host string, timeout time.Duration) (remote, error) {
			return sshutil.Dial(host, timeout)
		},
	}
}

// Host returns the ssh target.
func (r *SSHReader) Host() string { return r.host }

func (r *SSHReader) Read(ctx context.Context) (string, error) {
	client, err := r.connect()
	if err != nil {
		return "", err
	}

	stdout, stderr, code, err := client.Exec(ctx, Command())
	if err != nil {
		// The session may have died with the connection; start over next time.
		r.drop(client)
		return "", err
	}
	if code != 0 {
		return "", errors.New(errors.ErrExec,
			fmt.Sprintf("Reading /proc on '%s' exited with code %d: %s", r.host, code, strings.TrimSpace(string(stderr))),
			"Host sources need a Linux machine with a readable /proc.")
	}
	return string(stdout), nil
}

func (r *SSHReader) connect() (remote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if r.client.Alive() {
			return r.client, nil
		}
		r.client.Close()
		r.client = nil
	}

	client, err := r.dial(r.host, r.timeout)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

func (r *SSHReader) drop(client remote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == client {
		r.client.Close()
		r.client = nil
	}
}

// Close closes the held connection, if any.
func (r *SSHReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
