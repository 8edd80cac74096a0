package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// NewRouter returns the routes the metrics server answers.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")
	return r
}

// Server exposes the metrics router on a bound listener.
type Server struct {
	ln   net.Listener
	http *http.Server
	log  logger.Logger
}

// Listen binds addr. Use Addr to learn the port when addr ends in ":0".
func Listen(addr string, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Noop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't serve metrics on %s", addr),
			"Pick a free port with --metrics-addr or metrics.addr in the config.")
	}
	return &Server{
		ln:  ln,
		log: log,
		http: &http.Server{
			Handler:           NewRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close releases the listener of a server that was never run.
func (s *Server) Close() error {
	return s.ln.Close()
}

// Run serves until ctx is cancelled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving metrics on http://%s/metrics", s.Addr())
		errCh <- s.http.Serve(s.ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.WrapWithCode(err, errors.ErrSource, "Metrics server stopped", "")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("metrics server shutdown: %v", err)
	}
	<-errCh
	return nil
}

// Serve binds addr and serves until ctx is cancelled.
func Serve(ctx context.Context, addr string, log logger.Logger) error {
	s, err := Listen(addr, log)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
