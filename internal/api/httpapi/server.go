package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/shoretemp/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 5 * time.Second

// Server exposes /healthz, /metrics and an optional webhook endpoint.
type Server struct {
	// httpServer serves the routes.
	httpServer *http.Server
}

// Options configures the routes of a Server.
type Options struct {
	// Address is the listen address, e.g. ":8443".
	Address string
	// Gatherer provides the metrics exposed on /metrics.
	Gatherer prometheus.Gatherer
	// WebhookPath is where Webhook is mounted. Ignored when Webhook is nil.
	WebhookPath string
	// Webhook receives pushed updates.
	Webhook http.Handler
}

// NewServer creates a Server. Nothing listens until Run or Serve is called.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.Webhook != nil && opts.WebhookPath != "" {
		mux.Handle(opts.WebhookPath, opts.Webhook)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled, then drains
// in-flight requests and returns.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	ctx = logger.WithName(ctx, "http")

	logger.InfoKV(ctx, "HTTP server listening", "listen_address", lis.Addr().String())

	// Closed once Shutdown returns so Serve does not return early.
	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP server shutdown incomplete", "error", err)
		}
	}()

	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// ServeHTTP routes a single request, which keeps tests off the network.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
