// Package cache stores compiled search results keyed by request signature.
package cache

import (
	"context"
	"fmt"
	"net/url"

	"property-search/internal/common/config"
	"property-search/internal/common/logger"
	"property-search/internal/models"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces search entries, mostly for the shared redis backend.
const KeyPrefix = "properties:"

// Cache is a bounded, expiring store of row sets. Implementations are safe
// for concurrent use; a failed lookup is reported as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Property, bool)
	Set(ctx context.Context, key string, rows []models.Property)
	Close() error
}

// Signature canonicalises request parameters into a cache key. Keys are
// sorted by Encode, so parameter order does not matter.
func Signature(params url.Values) string {
	return KeyPrefix + params.Encode()
}

// New builds the backend selected by cfg.Type. rdb is only used by the
// redis backend and may be nil otherwise.
func New(cfg config.CacheConfig, rdb *redis.Client, log logger.Logger) (Cache, error) {
	ttl := config.GetDuration(cfg.TTL)

	switch cfg.Type {
	case config.CacheTypeMemory, "":
		return NewMemory(cfg.Size, ttl), nil
	case config.CacheTypeRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis cache selected without a redis client")
		}
		return NewRedis(rdb, ttl, log), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
