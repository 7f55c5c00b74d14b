// Package ratelimit provides per-client request throttling using token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// bucketIdleTTL is how long an untouched bucket survives before cleanup.
const bucketIdleTTL = time.Hour

// bucket tracks token state for one client+endpoint pair.
// Tokens refill continuously at refillRate per second up to capacity.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	now := time.Now()
	return &bucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

// take refills the bucket, consumes one token if available, and reports
// status. Refill and consume share one critical section so concurrent
// callers never observe a stale remaining count.
func (b *bucket) take() (allowed bool, remaining int, resetAt time.Time, retryIn time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1.0 {
		b.tokens--
		allowed = true
	} else {
		// Time until one full token is available again.
		retryIn = time.Duration((1.0 - b.tokens) / b.refillRate * float64(time.Second))
	}

	remaining = int(b.tokens)
	resetAt = now
	if b.tokens < b.capacity {
		deficit := b.capacity - b.tokens
		resetAt = now.Add(time.Duration(deficit / b.refillRate * float64(time.Second)))
	}
	return allowed, remaining, resetAt, retryIn
}

func (b *bucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAccess.Before(cutoff)
}

// Info reports the rate limit status for a single request.
type Info struct {
	Allowed    bool
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

// Limiter throttles requests with one bucket per client+path+method key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a rate limiter. A nil config gets permissive defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow reports whether a request from clientID to the given endpoint is
// permitted, along with header-ready status information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	if l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Limit <= 0 marks an unthrottled endpoint, e.g. health checks.
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + method + ":" + endpoint
	b := l.getBucket(key, endpointConfig)

	allowed, remaining, resetAt, retryIn := b.take()
	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  resetAt,
		RetryAfter: retryIn,
	}
}

func (l *Limiter) getBucket(key string, cfg *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := cfg.Burst
	if capacity <= 0 {
		capacity = cfg.Limit
	}
	b := newBucket(capacity, float64(cfg.Limit)/cfg.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.removeIdle(time.Now().Add(-bucketIdleTTL))
		case <-l.cleanupStop:
			return
		}
	}
}

// removeIdle drops buckets that have not been touched since cutoff.
func (l *Limiter) removeIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
