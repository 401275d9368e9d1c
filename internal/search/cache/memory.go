package cache

import (
	"context"
	"time"

	"property-search/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a process-local LRU with a fixed time-to-live per entry.
type Memory struct {
	lru *expirable.LRU[string, []models.Property]
}

// NewMemory creates a cache holding at most size entries for ttl each.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []models.Property](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]models.Property, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, rows []models.Property) {
	m.lru.Add(key, rows)
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
