package database

import (
	"database/sql"
	"fmt"
	"os"

	"property-search/internal/common/config"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLite opens the embedded properties database file. The file must
// already exist; the service never creates or writes it.
func NewSQLite(cfg config.SQLiteConfig) (*Client, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("sqlite database %s: %w", cfg.Path, err)
	}

	db, err := sql.Open("sqlite3", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// readers share one file; more connections only add file handles
	db.SetMaxOpenConns(4)

	return &Client{DB: db, Driver: config.DriverSQLite}, nil
}
