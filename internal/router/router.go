// Package router wires the HTTP surface: the bot messaging endpoint, health, metrics and
// the personal tab API.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/timebank/backend/internal/dashboard"
	"github.com/timebank/backend/internal/handlers"
	"github.com/timebank/backend/internal/middleware"
)

type Config struct {
	// Production enforces channel authentication on /api/messages. Otherwise the endpoint
	// is open and answers CORS preflights for local tooling.
	Production bool
	Messages   *handlers.MessagesHandler
	Dashboard  *dashboard.Handler
	// Validator is required when Production is set.
	Validator middleware.TokenValidator
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// New returns the root handler.
func New(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.Health)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.Production {
			r.Use(middleware.ActivityPeek)
			r.Use(middleware.BotAuth(cfg.Validator, log))
		} else {
			r.Use(devCORS().Handler)
			r.Options("/api/messages", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		}
		r.Post("/api/messages", cfg.Messages.Messages)
	})

	if cfg.Dashboard != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/tools", cfg.Dashboard.ListTools)
			r.Get("/benefits", cfg.Dashboard.ListBenefits)
		})
	}

	return r
}

// devCORS allows any origin. Never mounted in production.
func devCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		OptionsSuccessStatus: http.StatusOK,
	})
}

func requestLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
