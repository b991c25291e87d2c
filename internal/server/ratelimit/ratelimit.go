// Package ratelimit provides per-client token bucket rate limiting for the HTTP surface.
package ratelimit

import (
	"sync"
	"time"
)

// defaultTier keys buckets for routes without an endpoint configuration.
const defaultTier = "default"

// idleBucketTTL is how long an unused bucket survives cleanup.
const idleBucketTTL = time.Hour

// TokenBucket allows capacity requests in a burst and refills at refillRate
// tokens per second.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

// refill must be called with mu held.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
		tb.lastRefill = now
	}
}

// take consumes one token if available and reports the bucket state afterwards.
func (tb *TokenBucket) take(now time.Time) (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	tb.lastUsed = now
	if tb.tokens >= 1.0 {
		tb.tokens--
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if missing := float64(tb.capacity) - tb.tokens; missing > 0 && tb.refillRate > 0 {
		resetTime = now.Add(time.Duration(missing / tb.refillRate * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed.Before(cutoff)
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter keeps one token bucket per client and tier.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	config  *Config
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	limiter := &Limiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go limiter.cleanupLoop(config.CleanupInterval)
	}

	return limiter
}

// Allow reports whether a request from clientID to path may proceed.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if endpoint == nil {
		endpoint = &EndpointConfig{
			Name:   defaultTier,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	if endpoint.Limit <= 0 {
		return true, Info{Allowed: true, Tier: endpoint.Name}
	}

	tier := endpoint.Name
	if tier == "" {
		tier = method + " " + endpoint.Path
	}

	now := l.now()
	bucket := l.bucket(clientID+":"+tier, endpoint, now)
	allowed, remaining, resetTime := bucket.take(now)

	var retryAfter time.Duration
	if !allowed && bucket.refillRate > 0 {
		retryAfter = time.Duration(float64(time.Second) / bucket.refillRate)
	}

	return allowed, Info{
		Allowed:    allowed,
		Tier:       tier,
		Limit:      endpoint.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) bucket(key string, endpoint *EndpointConfig, now time.Time) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, ok := l.buckets[key]; ok {
		return bucket
	}

	capacity := endpoint.Burst
	if capacity <= 0 {
		capacity = endpoint.Limit
	}
	var refillRate float64
	if endpoint.Window > 0 {
		refillRate = float64(endpoint.Limit) / endpoint.Window.Seconds()
	}

	bucket := newTokenBucket(capacity, refillRate, now)
	l.buckets[key] = bucket
	return bucket
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup removes buckets that have been idle longer than idleBucketTTL.
func (l *Limiter) cleanup() {
	cutoff := l.now().Add(-idleBucketTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if bucket.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// size returns the number of live buckets.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
