// cmd/property-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"property-search/internal/api"
	"property-search/internal/common/config"
	"property-search/internal/common/database"
	"property-search/internal/common/logger"
	"property-search/internal/common/observability"
	searchproperties "property-search/internal/handlers/search-properties"
	"property-search/internal/search/cache"
	"property-search/internal/search/executor"
	"property-search/internal/search/filters"
	"property-search/internal/search/projector"
	"property-search/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting property search API...",
		zap.String("environment", cfg.App.Environment),
		zap.String("driver", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Type),
	)

	catalog := filters.Default()
	if err := catalog.Validate(); err != nil {
		zapLog.Fatal("invalid filter catalog", zap.Error(err))
	}

	counties := registry.Builtin()
	if cfg.Search.CountyRegistry != "" {
		counties, err = registry.LoadRegistry(cfg.Search.CountyRegistry)
		if err != nil {
			zapLog.Fatal("county registry load failed", zap.Error(err))
		}
		zapLog.Info("county registry loaded",
			zap.String("path", cfg.Search.CountyRegistry),
			zap.Int("counties", len(counties.Counties)),
		)
	}

	spanProcessors, err := observability.NewSpanProcessors(cfg.Tracing, os.Stdout)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	obs := observability.New("property-search", log, spanProcessors...)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init database with retry ---
	var db *database.Client
	err = retryWithBackoff(func() error {
		var err error
		db, err = database.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return err
		}
		return nil
	}, 5, 2*time.Second, zapLog, "Database connection")

	if err != nil {
		zapLog.Fatal("database failed after retries", zap.Error(err))
	}
	defer db.Close()
	zapLog.Info("Database connected successfully", zap.String("driver", db.Driver))

	// --- Init result cache ---
	var rdb *redis.Client
	if cfg.Cache.Type == config.CacheTypeRedis {
		rdb = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return database.PingRedis(ctx, rdb)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		zapLog.Info("Redis connected successfully")
	}

	resultCache, err := cache.New(cfg.Cache, rdb, log)
	if err != nil {
		zapLog.Fatal("cache init failed", zap.Error(err))
	}
	defer resultCache.Close()

	// --- Wire handlers ---
	exec := executor.New(db.GetDB(), config.GetDuration(cfg.Search.QueryTimeout), log)
	search := searchproperties.NewHandler(
		searchproperties.LoadConfig(cfg),
		catalog,
		resultCache,
		exec,
		projector.New(counties),
		obs,
		log,
	)

	router := api.NewRouter(api.Dependencies{
		Server:  cfg.Server,
		Search:  search,
		Catalog: catalog,
		DB:      db,
		Logger:  log,
	})
	server := api.NewServer(cfg.Server, router)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Property search API stopped gracefully")
}
