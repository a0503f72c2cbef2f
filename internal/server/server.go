// Package server exposes the renderer over HTTP.
//
// Routes:
//   - POST /render: Markdown request body, text/html fragment response
//   - GET /healthz: liveness probe
//   - GET /metrics: Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pkt.systems/mdhtml"
)

// DefaultMaxBodyBytes bounds the size of a /render request body.
const DefaultMaxBodyBytes = 4 << 20

const shutdownTimeout = 5 * time.Second

// Config configures the HTTP handler.
type Config struct {
	// Registry receives the server metrics and backs /metrics.
	// Default: a fresh registry.
	Registry *prometheus.Registry
	// MaxBodyBytes limits request bodies. Default: DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Options are passed to every render.
	Options []mdhtml.RenderOption
	// Logger receives request failures. Default: slog.Default().
	Logger *slog.Logger
}

type server struct {
	cfg     Config
	metrics *metrics
	log     *slog.Logger
}

// New returns the HTTP handler serving the render API.
func New(cfg Config) http.Handler {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &server{
		cfg:     cfg,
		metrics: newMetrics(cfg.Registry),
		log:     cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Post("/render", s.handleRender)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	return r
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, "too_large", http.StatusRequestEntityTooLarge, err)
			return
		}
		s.fail(w, r, "bad_request", http.StatusBadRequest, err)
		return
	}
	out, err := mdhtml.RenderString(string(src), s.cfg.Options...)
	s.metrics.renderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		status, code := classify(err)
		s.fail(w, r, status, code, err)
		return
	}
	s.metrics.rendersTotal.WithLabelValues("ok").Inc()
	s.metrics.renderBytes.Observe(float64(len(out)))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

// classify maps render errors to a metrics label and an HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, mdhtml.ErrMalformedTree), errors.Is(err, mdhtml.ErrNestingTooDeep):
		return "malformed", http.StatusUnprocessableEntity
	default:
		// Invalid UTF-8, binary input and undecodable front matter.
		return "bad_request", http.StatusBadRequest
	}
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, status string, code int, err error) {
	s.metrics.rendersTotal.WithLabelValues(status).Inc()
	s.log.Info("render failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("code", code),
		slog.Any("err", err))
	http.Error(w, err.Error(), code)
}

// ListenAndServe serves h on addr until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: listen: %w", err)
	}
	return Serve(ctx, ln, h)
}

// Serve serves h on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
