package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"property-search/internal/common/logger"
	"property-search/internal/models"

	"github.com/redis/go-redis/v9"
)

// Redis shares cached results between instances. Capacity is left to the
// server's maxmemory policy.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log logger.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: log}
}

func (r *Redis) Get(ctx context.Context, key string) ([]models.Property, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache lookup failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
		return nil, false
	}

	var rows []models.Property
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		r.logger.Warn("discarding unreadable cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return nil, false
	}
	return rows, true
}

func (r *Redis) Set(ctx context.Context, key string, rows []models.Property) {
	if rows == nil {
		rows = []models.Property{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		r.logger.Warn("failed to encode cache entry", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache store failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
