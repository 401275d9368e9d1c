// cmd/tools/migrate-postgres/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"property-search/internal/common/config"
	"property-search/internal/common/database"
	"property-search/internal/common/logger"
	"property-search/internal/migrate"
)

func main() {
	sqlitePath := flag.String("sqlite", "", "Path to the source sqlite database (default: database.sqlite.path)")
	postgresURL := flag.String("postgres", "", "Target postgres URL (default: database.postgres from config)")
	batchSize := flag.Int("batch-size", migrate.DefaultBatchSize, "Rows per insert batch")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	sqliteCfg := cfg.Database.SQLite
	sqliteCfg.ReadOnly = true
	if *sqlitePath != "" {
		sqliteCfg.Path = *sqlitePath
	}
	pgCfg := cfg.Database.Postgres
	if *postgresURL != "" {
		pgCfg.URL = *postgresURL
	}

	source, err := database.NewSQLite(sqliteCfg)
	if err != nil {
		zapLog.Fatal("open source failed", zap.Error(err))
	}
	defer source.Close()

	target, err := database.NewPostgres(pgCfg)
	if err != nil {
		zapLog.Fatal("open target failed", zap.Error(err))
	}
	defer target.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := target.Ping(ctx); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	result, err := migrate.New(source.GetDB(), target.GetDB(), *batchSize, log).Run(ctx)
	if err != nil {
		zapLog.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Migrated %d/%d properties; postgres now has %d rows (%s)\n",
		result.Migrated, result.SourceRows, result.TargetRows, result.Duration.Round(1e6))
}
