// internal/handlers/search-properties/handler.go
package searchproperties

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"property-search/internal/common/errors"
	"property-search/internal/common/logger"
	"property-search/internal/common/metrics"
	"property-search/internal/common/observability"
	"property-search/internal/models"
	"property-search/internal/search/cache"
	"property-search/internal/search/filters"
	"property-search/internal/search/projector"
	"property-search/internal/search/query"
)

const Route = "/api/properties"

// Querier runs a compiled statement. *executor.Executor satisfies it.
type Querier interface {
	Query(ctx context.Context, stmt query.Statement) ([]models.Property, error)
}

type Handler struct {
	config    *Config
	catalog   filters.Catalog
	cache     cache.Cache
	querier   Querier
	projector *projector.Projector
	obs       *observability.Observability
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(
	config *Config,
	catalog filters.Catalog,
	resultCache cache.Cache,
	querier Querier,
	proj *projector.Projector,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		config:    config,
		catalog:   catalog,
		cache:     resultCache,
		querier:   querier,
		projector: proj,
		obs:       obs,
		errors:    errors.NewErrorHandler(l),
		logger:    l,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	metrics.SearchesActive.Inc()
	defer metrics.SearchesActive.Dec()

	start := time.Now()
	req := query.ParseRequest(r.URL.Query(), h.catalog)

	output, err := h.Execute(r.Context(), req)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(req.Mode(), metrics.StatusError).Inc()
		h.obs.RecordSearch(r.Context(), req.Mode(), metrics.StatusError, false)
		h.errors.WriteError(w, r, err)
		return
	}

	metrics.SearchRequests.WithLabelValues(output.Mode, metrics.StatusSuccess).Inc()
	metrics.SearchResults.Observe(float64(output.RowCount))
	h.obs.RecordSearch(r.Context(), output.Mode, metrics.StatusSuccess, output.Cached)
	h.obs.RecordSearchDuration(r.Context(), time.Since(start), output.Mode)

	w.Header().Set("Content-Type", "application/json")
	if output.Cached {
		w.Header().Set(HeaderCache, CacheHit)
	} else {
		w.Header().Set(HeaderCache, CacheMiss)
	}
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(output.Collection); err != nil {
		h.logger.Warn("failed to write response", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute answers one search from the cache or the database.
func (h *Handler) Execute(ctx context.Context, req query.Request) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, "search_properties", attribute.String("mode", req.Mode()))
	defer span.End()

	key := cache.Signature(req.Params)

	rows, cached := h.cache.Get(ctx, key)
	if cached {
		metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
	} else {
		metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()

		stmt := query.Compile(h.catalog, req, h.config.Dialect, h.config.options())

		start := time.Now()
		var err error
		rows, err = h.querier.Query(ctx, stmt)
		metrics.QueryDuration.WithLabelValues(h.config.Driver).Observe(time.Since(start).Seconds())
		if err != nil {
			observability.FailSpan(span, err)
			return nil, err
		}

		h.cache.Set(ctx, key, rows)
	}

	span.SetAttributes(
		attribute.Bool("cached", cached),
		attribute.Int("rows", len(rows)),
	)
	h.logger.Debug("search served", map[string]interface{}{
		"mode":     req.Mode(),
		"rowCount": len(rows),
		"cached":   cached,
	})

	return &Output{
		Collection: h.projector.Collection(rows),
		RowCount:   len(rows),
		Cached:     cached,
		Mode:       req.Mode(),
	}, nil
}
