package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/common/config"
	"property-search/internal/common/logger"
	"property-search/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func sampleRows() []models.Property {
	return []models.Property{
		{
			Address:             models.StringPtr("123 Main St"),
			ParcelID:            models.StringPtr("14 0001 LL0011"),
			County:              models.StringPtr("fulton"),
			TotalAppraisedValue: models.FloatPtr(250000),
			Coordinates:         models.StringPtr("33.7,-84.4"),
		},
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// ==========================
// Signature Tests
// ==========================

func TestSignature_OrderIndependent(t *testing.T) {
	a, err := url.ParseQuery("sqft_min=1000&bedrooms=3&limit=10")
	require.NoError(t, err)
	b, err := url.ParseQuery("limit=10&bedrooms=3&sqft_min=1000")
	require.NoError(t, err)

	assert.Equal(t, Signature(a), Signature(b))
	assert.Equal(t, "properties:bedrooms=3&limit=10&sqft_min=1000", Signature(a))
}

func TestSignature_RoundTrip(t *testing.T) {
	params := url.Values{"target": {"123 Main & Co"}, "bedrooms": {"2"}}
	key := Signature(params)

	decoded, err := url.ParseQuery(key[len(KeyPrefix):])
	require.NoError(t, err)
	assert.Equal(t, key, Signature(decoded))

	c := NewMemory(10, time.Minute)
	c.Set(context.Background(), key, sampleRows())
	_, ok := c.Get(context.Background(), Signature(decoded))
	assert.True(t, ok)
}

func TestSignature_Distinguishes(t *testing.T) {
	assert.NotEqual(t,
		Signature(url.Values{"bedrooms": {"2"}}),
		Signature(url.Values{"bedrooms": {"3"}}))
	assert.Equal(t, "properties:", Signature(url.Values{}))
}

// ==========================
// Memory Backend Tests
// ==========================

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", sampleRows())
	rows, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleRows(), rows)
}

func TestMemory_CachesEmptyResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, time.Minute)

	c.Set(ctx, "empty", []models.Property{})
	rows, ok := c.Get(ctx, "empty")
	assert.True(t, ok)
	assert.Empty(t, rows)
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2, time.Minute)

	c.Set(ctx, "a", sampleRows())
	c.Set(ctx, "b", sampleRows())
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", sampleRows())

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, 50*time.Millisecond)

	c.Set(ctx, "k", sampleRows())
	_, ok := c.Get(ctx, "k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(50, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k" + strconv.Itoa(i%5)
			c.Set(ctx, key, sampleRows())
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}

func TestMemory_Close(t *testing.T) {
	c := NewMemory(10, time.Minute)
	c.Set(context.Background(), "k", sampleRows())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

// ==========================
// Redis Backend Tests
// ==========================

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	c := NewRedis(client, 10*time.Minute, logger.NewTestLogger(t))
	defer c.Close()

	_, ok := c.Get(ctx, "properties:bedrooms=3")
	assert.False(t, ok)

	c.Set(ctx, "properties:bedrooms=3", sampleRows())
	rows, ok := c.Get(ctx, "properties:bedrooms=3")
	require.True(t, ok)
	assert.Equal(t, sampleRows(), rows)
	assert.Equal(t, 10*time.Minute, mr.TTL("properties:bedrooms=3"))

	mr.FastForward(11 * time.Minute)
	_, ok = c.Get(ctx, "properties:bedrooms=3")
	assert.False(t, ok)
}

func TestRedis_NilRowsStoredAsEmpty(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	c := NewRedis(client, time.Minute, logger.NewTestLogger(t))

	c.Set(ctx, "k", nil)
	val, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "[]", val)

	rows, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Empty(t, rows)
}

func TestRedis_CorruptEntryIsMiss(t *testing.T) {
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("k", "not json"))

	c := NewRedis(client, time.Minute, logger.NewTestLogger(t))
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedis_ErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	c := NewRedis(client, 5*time.Minute, logger.NewNoOpLogger())

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	data, err := json.Marshal(sampleRows())
	require.NoError(t, err)
	mock.ExpectSet("k", data, 5*time.Minute).SetErr(errors.New("connection refused"))
	assert.NotPanics(t, func() { c.Set(ctx, "k", sampleRows()) })

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Factory Tests
// ==========================

func TestNew(t *testing.T) {
	log := logger.NewNoOpLogger()

	c, err := New(config.CacheConfig{Type: config.CacheTypeMemory, Size: 10, TTL: 1000}, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, client := newMiniRedis(t)
	c, err = New(config.CacheConfig{Type: config.CacheTypeRedis, TTL: 1000}, client, log)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)

	_, err = New(config.CacheConfig{Type: config.CacheTypeRedis}, nil, log)
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Type: "memcached"}, nil, log)
	assert.Error(t, err)
}
