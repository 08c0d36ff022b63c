// Package http wires the chi router for the read-side API: the derived
// metrics table, the skills taxonomy, health, and Prometheus metrics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	apierrors "laborpulse/internal/errors"
)

// RouterOptions carries the dependencies of the HTTP API.
type RouterOptions struct {
	Data     DataServiceInterface
	Health   HealthServiceInterface
	Gatherer prometheus.Gatherer
	// RequestsPerSecond caps the API request rate; 0 disables limiting.
	RequestsPerSecond float64
	// Burst is the limiter bucket size; 0 derives it from the rate.
	Burst  int
	Logger *slog.Logger
}

// NewRouter assembles the API router.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RequestsPerSecond) + 1
		}
		r.Use(rateLimiter(rate.Limit(opts.RequestsPerSecond), burst))
	}

	dataHandler := NewDataHandler(opts.Data, logger)
	healthHandler := NewHealthHandler(opts.Health, logger)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierrors.RenderError(w, req, apierrors.ErrNotFound)
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/data", dataHandler.Routes())
	})
	r.Route("/healthz", func(r chi.Router) {
		r.Get("/", healthHandler.HealthCheck)
		r.Get("/live", healthHandler.LivenessCheck)
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(started)))
		})
	}
}

// rateLimiter rejects requests beyond the configured rate with 429. A single
// limiter covers the whole API; the service is read-only and cheap per
// request, so per-client buckets are not worth the bookkeeping.
func rateLimiter(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				apierrors.RenderError(w, r, apierrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
