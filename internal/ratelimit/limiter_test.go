package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humzam/compute-jobs-dashboard/internal/data"
)

// memCache is an in-memory CacheRepository for limiter tests. Err forces every
// cache call to fail.
type memCache struct {
	values map[string][]byte
	Err    error
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string][]byte)}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.Err != nil {
		return c.Err
	}
	c.values[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.values[key], nil
}

func (c *memCache) Delete(_ context.Context, key string) (bool, error) {
	if c.Err != nil {
		return false, c.Err
	}
	_, ok := c.values[key]
	delete(c.values, key)
	return ok, nil
}

func (c *memCache) Health(_ context.Context) error {
	return c.Err
}

func newTestLimiter(cache *memCache, tp data.TimeProvider) *Limiter {
	return NewLimiter(Options{
		Cache: cache,
		Policies: map[Category]Policy{
			CategoryRead:  {MaxRequests: 3, Window: time.Minute},
			CategoryWrite: {MaxRequests: 2, Window: time.Minute},
		},
		Exempt:       []string{"10.0.0.1"},
		TimeProvider: tp,
	})
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   Category
	}{
		{http.MethodGet, "/api/jobs/", CategoryRead},
		{http.MethodGet, "/api/jobs/42/", CategoryRead},
		{http.MethodPost, "/api/jobs/", CategoryWrite},
		{http.MethodPut, "/api/jobs/42/", CategoryWrite},
		{http.MethodPatch, "/api/jobs/42/", CategoryWrite},
		{http.MethodDelete, "/api/jobs/42/", CategoryWrite},
		{http.MethodGet, "/api/jobs/stats", CategoryStats},
		{http.MethodGet, "/api/jobs/stats/", CategoryStats},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryFor(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := newTestLimiter(newMemCache(), tp)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := limiter.Check(ctx, "1.2.3.4", CategoryRead)
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
		tp.AddTime(time.Second)
	}

	res := limiter.Check(ctx, "1.2.3.4", CategoryRead)
	require.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestLimiterDefaultWritePolicy(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(Options{
		Cache:        newMemCache(),
		Policies:     DefaultPolicies(),
		TimeProvider: tp,
	})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.True(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed, "request %d", i+1)
	}

	res := limiter.Check(ctx, "1.2.3.4", CategoryWrite)
	require.False(t, res.Allowed)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestLimiterRetryAfterIsFullWindow(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(Options{
		Cache:        newMemCache(),
		Policies:     DefaultPolicies(),
		TimeProvider: tp,
	})
	ctx := context.Background()

	// Spread the allowed requests across the window. The rejection still
	// advertises the whole window, not the time until the oldest entry expires.
	for i := 0; i < 20; i++ {
		require.True(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed, "request %d", i+1)
		tp.AddTime(2 * time.Second)
	}

	res := limiter.Check(ctx, "1.2.3.4", CategoryWrite)
	require.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestLimiterWindowSlides(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := newTestLimiter(newMemCache(), tp)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Check(ctx, "1.2.3.4", CategoryRead).Allowed)
	}
	require.False(t, limiter.Check(ctx, "1.2.3.4", CategoryRead).Allowed)

	// Once the first timestamps age out, capacity returns.
	tp.AddTime(61 * time.Second)
	res := limiter.Check(ctx, "1.2.3.4", CategoryRead)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestLimiterRejectionsNotRecorded(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := newTestLimiter(newMemCache(), tp)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.True(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed)
	}

	// Hammering a full window must not extend the reset.
	for i := 0; i < 10; i++ {
		tp.AddTime(time.Second)
		require.False(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed)
	}

	tp.AddTime(51 * time.Second)
	assert.True(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed)
}

func TestLimiterIsolatesIdentitiesAndCategories(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	limiter := newTestLimiter(newMemCache(), tp)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.True(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed)
	}
	require.False(t, limiter.Check(ctx, "1.2.3.4", CategoryWrite).Allowed)

	// Same identity, different category.
	assert.True(t, limiter.Check(ctx, "1.2.3.4", CategoryRead).Allowed)
	// Same category, different identity.
	assert.True(t, limiter.Check(ctx, "5.6.7.8", CategoryWrite).Allowed)
}

func TestLimiterExemption(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	cache := newMemCache()
	limiter := newTestLimiter(cache, tp)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		res := limiter.Check(ctx, "10.0.0.1", CategoryWrite)
		require.True(t, res.Allowed)
	}
	assert.Empty(t, cache.values, "exempt identities should never touch the cache")
}

func TestLimiterFailsOpenOnCacheErrors(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	cache := newMemCache()
	cache.Err = errors.New("connection refused")
	limiter := newTestLimiter(cache, tp)

	for i := 0; i < 10; i++ {
		res := limiter.Check(context.Background(), "1.2.3.4", CategoryWrite)
		require.True(t, res.Allowed)
	}
}

func TestLimiterRecoversFromCorruptWindow(t *testing.T) {
	tp := data.NewFixedTimeProvider(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	cache := newMemCache()
	cache.values[cacheKey("1.2.3.4", CategoryRead)] = []byte("not json")
	limiter := newTestLimiter(cache, tp)

	res := limiter.Check(context.Background(), "1.2.3.4", CategoryRead)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}
