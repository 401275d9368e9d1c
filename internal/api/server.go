// Package api wires the HTTP surface: routing, middleware and the small
// operational endpoints around the property search handler.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"property-search/internal/common/config"
	"property-search/internal/common/errors"
	"property-search/internal/common/logger"
	"property-search/internal/search/filters"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Server  config.ServerConfig
	Search  http.Handler
	Catalog filters.Catalog
	DB      Pinger
	Logger  logger.Logger
}

// NewRouter builds the application router.
func NewRouter(deps Dependencies) chi.Router {
	eh := errors.NewErrorHandler(deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogging(deps.Logger))
	r.Use(middleware.Recoverer)

	origins := deps.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, "X-Cache"},
		MaxAge:         300,
	}))
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/health", health)
	r.Get("/ready", ready(deps.DB, eh))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if deps.Server.RateLimit > 0 {
			r.Use(RateLimit(NewRateLimiter(deps.Server.RateLimit, deps.Server.RateBurst), eh))
		}
		r.Get("/filters", catalogHandler(deps.Catalog))
		r.Method(http.MethodGet, "/properties", deps.Search)
	})

	return r
}

// NewServer wraps the router in an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func ready(db Pinger, eh *errors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			eh.WriteError(w, r, errors.NewDatabaseConnectionFailedError(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
	}
}

func catalogHandler(catalog filters.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"filters": catalog})
	}
}
