package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	limiter := NewLimiter(cfg)
	limiter.now = clock.Now
	return limiter, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	bucket := newTokenBucket(10, 1.0, start)

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take(start)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, _, reset := bucket.take(start)
	assert.False(t, allowed, "bucket should be empty")
	assert.Equal(t, start.Add(10*time.Second), reset)

	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled after a second")
	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.False(t, allowed)
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/brands/", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Equal(t, defaultTier, info.Tier)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/brands/", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_DefaultTierSharedAcrossReads(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/brands/a", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1", "/brands/b", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1", "/brands/c", "GET")
	assert.False(t, allowed, "reads of different brands share one bucket")

	allowed, _ = limiter.Allow("10.0.0.2", "/brands/a", "GET")
	assert.True(t, allowed, "buckets are per client")
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/brands/", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/brands/", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_GenerateTier(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	brandA := "/brands/3f2c7a1e-0000-4000-8000-000000000001/voices:generate"
	brandB := "/brands/3f2c7a1e-0000-4000-8000-000000000002/voices:generate"

	allowed, info := limiter.Allow("127.0.0.1", brandA, "POST")
	require.True(t, allowed)
	assert.Equal(t, TierGenerate, info.Tier)
	assert.Equal(t, 10, info.Limit)

	allowed, _ = limiter.Allow("127.0.0.1", brandB, "POST")
	require.True(t, allowed)

	allowed, info = limiter.Allow("127.0.0.1", brandA, "POST")
	assert.False(t, allowed, "burst of 2 is shared across brands")
	assert.InDelta(t, (6 * time.Minute).Seconds(), info.RetryAfter.Seconds(), 0.01)

	clock.Advance(7 * time.Minute)
	allowed, _ = limiter.Allow("127.0.0.1", brandA, "POST")
	assert.True(t, allowed)

	allowed, info = limiter.Allow("127.0.0.1", "/brands/x/voices/1", "GET")
	assert.True(t, allowed, "reads are not affected by the generate tier")
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var allowedCount atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/brands/", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/brands/", "GET")
	}
	require.Equal(t, 10, limiter.size())

	clock.Advance(30 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/brands/", "GET")
	}

	clock.Advance(45 * time.Minute)
	limiter.cleanup()
	assert.Equal(t, 5, limiter.size(), "only recently used buckets survive")
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/brands/", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name   string
		path   string
		method string
		tier   string
	}{
		{name: "generate", path: "/brands/abc/voices:generate", method: "POST", tier: TierGenerate},
		{name: "evaluate", path: "/brands/abc/voices/3/evaluate", method: "POST", tier: TierEvaluate},
		{name: "create brand", path: "/brands/", method: "POST", tier: TierWrite},
		{name: "create brand without slash", path: "/brands", method: "POST", tier: TierWrite},
		{name: "health", path: "/health", method: "GET", tier: TierUnlimited},
		{name: "root", path: "/", method: "GET", tier: TierUnlimited},
		{name: "read brand", path: "/brands/abc", method: "GET"},
		{name: "generate wrong method", path: "/brands/abc/voices:generate", method: "GET"},
		{name: "empty segment", path: "/brands//voices:generate", method: "POST"},
		{name: "extra segment", path: "/brands/abc/voices/3/evaluate/x", method: "POST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.tier == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.tier, got.Name)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_GENERATE_LIMIT", "3")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)

	generate := MatchEndpoint("/brands/x/voices:generate", "POST", cfg.EndpointConfigs)
	require.NotNil(t, generate)
	assert.Equal(t, 3, generate.Limit)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "lots")

	_, err := LoadConfig()
	assert.Error(t, err)
}
