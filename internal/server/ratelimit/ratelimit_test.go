package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBucket_Burst(t *testing.T) {
	b := newBucket(10, 1.0) // 10 tokens, 1 token per second

	// Full capacity is available immediately
	for i := 0; i < 10; i++ {
		allowed, _, _, _ := b.take()
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	allowed, remaining, _, retryIn := b.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if retryIn <= 0 {
		t.Error("Expected positive retry interval when denied")
	}
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(10, 1.0) // 1 token per second

	for i := 0; i < 10; i++ {
		b.take()
	}

	// Wait for one token to refill
	time.Sleep(1100 * time.Millisecond)

	allowed, _, _, _ := b.take()
	if !allowed {
		t.Error("Expected request to be allowed after refill")
	}

	allowed, _, _, _ = b.take()
	if allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestBucket_ResetTime(t *testing.T) {
	b := newBucket(10, 1.0)

	for i := 0; i < 5; i++ {
		b.take()
	}

	_, remaining, resetAt, _ := b.take()
	if remaining != 4 {
		t.Errorf("Expected 4 remaining tokens, got %d", remaining)
	}
	if resetAt.Before(time.Now()) {
		t.Error("Reset time should be in the future while bucket is not full")
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow(clientID, "/runs", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow(clientID, "/runs", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_MatchEndpointLimit(t *testing.T) {
	config := &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// POST /match allows only the burst of 2 immediately
	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow(clientID, "/match", "POST")
		if !allowed {
			t.Errorf("Expected match request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
	}

	allowed, _ := limiter.Allow(clientID, "/match", "POST")
	if allowed {
		t.Error("Expected match request beyond burst to be denied")
	}

	// Streaming endpoint has its own bucket
	allowed, _ = limiter.Allow(clientID, "/match/stream", "POST")
	if !allowed {
		t.Error("Expected stream request to use a separate bucket")
	}

	// Reads fall through to the default limit
	allowed, info := limiter.Allow(clientID, "/runs", "GET")
	if !allowed {
		t.Error("Expected read request to be allowed")
	}
	if info.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", info.Limit)
	}
}

func TestLimiter_PrefixMatch(t *testing.T) {
	config := &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// DELETE /runs/{id} matches the "/runs/" prefix entry
	allowed, info := limiter.Allow("127.0.0.1", "/runs/061ce965-46cf-4013-8f2e-c2a47e17eb9c", "DELETE")
	if !allowed {
		t.Error("Expected delete request to be allowed")
	}
	if info.Limit != 100 {
		t.Errorf("Expected limit 100 from prefix match, got %d", info.Limit)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	config := &Config{
		Enabled:         true,
		DefaultLimit:    1,
		DefaultWindow:   time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(),
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/health", "GET")
		if !allowed {
			t.Errorf("Expected health check %d to be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 for health check, got %d", info.Limit)
		}
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/match", "POST")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", info.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("192.168.1.1", "/runs", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/match", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", info.Limit)
		}
	}
}

func TestLimiter_SeparateClients(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Exhaust the first client
	limiter.Allow("10.0.0.1", "/runs", "GET")
	limiter.Allow("10.0.0.1", "/runs", "GET")
	allowed, _ := limiter.Allow("10.0.0.1", "/runs", "GET")
	if allowed {
		t.Error("Expected exhausted client to be denied")
	}

	// A different client has its own bucket
	allowed, _ = limiter.Allow("10.0.0.2", "/runs", "GET")
	if !allowed {
		t.Error("Expected second client to be allowed")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	// 200 concurrent requests against a limit of 100
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow("127.0.0.1", "/runs", "GET")
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_RemoveIdle(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		limiter.Allow(clientID, "/runs", "GET")
	}

	limiter.mu.Lock()
	before := len(limiter.buckets)
	limiter.mu.Unlock()
	if before != 10 {
		t.Fatalf("Expected 10 buckets, got %d", before)
	}

	// A future cutoff makes every bucket idle
	limiter.removeIdle(time.Now().Add(time.Minute))

	limiter.mu.Lock()
	after := len(limiter.buckets)
	limiter.mu.Unlock()
	if after != 0 {
		t.Errorf("Expected all buckets removed, got %d", after)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/runs", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", info.Limit)
	}
}

func TestMatchEndpoint_ExactBeatsPrefix(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/runs/", Method: "DELETE", Limit: 100, Window: time.Minute},
		{Path: "/runs/abc", Method: "DELETE", Limit: 5, Window: time.Minute},
	}

	match := MatchEndpoint("/runs/abc", "DELETE", configs)
	if match == nil {
		t.Fatal("Expected a match")
	}
	if match.Limit != 5 {
		t.Errorf("Expected exact match limit 5, got %d", match.Limit)
	}
}

func TestMatchEndpoint_MethodMismatch(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/match", Method: "POST", Limit: 10, Window: time.Hour},
	}

	if match := MatchEndpoint("/match", "GET", configs); match != nil {
		t.Errorf("Expected no match for wrong method, got %+v", match)
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	config := LoadConfig()
	if config.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")

	config := LoadConfig()
	if !config.Enabled {
		t.Error("Expected rate limiting enabled by default")
	}
	if config.DefaultLimit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", config.DefaultLimit)
	}
	if config.DefaultWindow != time.Minute {
		t.Errorf("Expected default window 1m, got %v", config.DefaultWindow)
	}
	if len(config.EndpointConfigs) == 0 {
		t.Error("Expected endpoint configs to be populated")
	}
}

func TestLoadConfig_Whitelist(t *testing.T) {
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	config := LoadConfig()
	if !config.Whitelist["10.0.0.1"] || !config.Whitelist["10.0.0.2"] {
		t.Errorf("Expected both IPs whitelisted, got %v", config.Whitelist)
	}
}
