// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"property-search/internal/common/config"

	_ "github.com/lib/pq"
)

// Client wraps the SQL database connection together with the name of the
// driver behind it, so callers can pick the matching SQL dialect.
type Client struct {
	DB     *sql.DB
	Driver string
}

// Open connects to the backend selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (*Client, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(cfg.Postgres)
	case config.DriverSQLite, "":
		return NewSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Client{DB: db, Driver: config.DriverPostgres}, nil
}

// NewClient wraps an already opened handle, mostly for tests.
func NewClient(db *sql.DB, driver string) *Client {
	return &Client{DB: db, Driver: driver}
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB for compatibility
func (c *Client) GetDB() *sql.DB {
	return c.DB
}
