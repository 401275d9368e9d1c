// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Search   SearchConfig   `mapstructure:"search"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimit       float64  `mapstructure:"rate_limit"` // requests per second per client
	RateBurst       int      `mapstructure:"rate_burst"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path     string `mapstructure:"path"`
	ReadOnly bool   `mapstructure:"read_only"`
}

// GetDSN returns the go-sqlite3 connection string for the embedded database file.
func (s SQLiteConfig) GetDSN() string {
	if s.ReadOnly {
		return fmt.Sprintf("file:%s?mode=ro&_query_only=true", s.Path)
	}
	return fmt.Sprintf("file:%s", s.Path)
}

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string. A full URL, when
// configured, wins over the discrete fields.
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// CacheConfig controls the search result cache.
type CacheConfig struct {
	Type string `mapstructure:"type"`
	Size int    `mapstructure:"size"`
	TTL  int    `mapstructure:"ttl"` // milliseconds
}

// SearchConfig holds settings for the property search endpoint.
type SearchConfig struct {
	ResultCeiling  int    `mapstructure:"result_ceiling"`
	OwnerMatch     bool   `mapstructure:"owner_match"`
	QueryTimeout   int    `mapstructure:"query_timeout"` // milliseconds
	CountyRegistry string `mapstructure:"county_registry"`
}

const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
)

// TracingConfig selects where finished search spans are exported.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
