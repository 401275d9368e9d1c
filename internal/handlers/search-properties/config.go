// internal/handlers/search-properties/config.go
package searchproperties

import (
	"property-search/internal/common/config"
	"property-search/internal/search/query"
)

type Config struct {
	Driver     string
	Dialect    query.Dialect
	Ceiling    int
	OwnerMatch bool
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:     cfg.Database.Driver,
		Dialect:    query.DialectFor(cfg.Database.Driver),
		Ceiling:    cfg.Search.ResultCeiling,
		OwnerMatch: cfg.Search.OwnerMatch,
	}
}

func (c *Config) options() query.Options {
	return query.Options{Ceiling: c.Ceiling, OwnerMatch: c.OwnerMatch}
}
