// Package server assembles the HTTP router: middleware chain, operational
// endpoints and the /api routes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/stashdrive/service/internal/files"
	"github.com/stashdrive/service/internal/metrics"
	appMiddleware "github.com/stashdrive/service/internal/middleware"
	"github.com/stashdrive/service/internal/response"
	"github.com/stashdrive/service/internal/tracing"
)

// Options wires the router's dependencies.
type Options struct {
	Log            zerolog.Logger
	Files          *files.Handler
	Metrics        *metrics.Metrics // nil disables /metrics
	CORSOrigins    []string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the service's http.Handler.
func NewRouter(opt Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(opt.Log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(tracing.Middleware)
	if opt.Metrics != nil {
		r.Use(opt.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})
	if opt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opt.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(appMiddleware.RateLimit(opt.RateLimitRPS, opt.RateLimitBurst))
		if opt.MaxUploadBytes > 0 {
			r.Use(appMiddleware.MaxBodyBytes(opt.MaxUploadBytes))
		}
		opt.Files.Routes(r)
	})

	return r
}
