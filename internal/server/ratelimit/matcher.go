package ratelimit

import (
	"strings"
)

// MatchEndpoint resolves the limit config for a request path and method.
// Exact path matches win over prefix matches. Returns nil when nothing
// matches and the caller should fall back to the default limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never throttled.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	var prefixMatch *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if prefixMatch == nil && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			prefixMatch = cfg
		}
	}
	return prefixMatch
}
