package ratelimit

import (
	"strings"
)

// unlimited is returned for the root and health endpoints.
var unlimited = EndpointConfig{Name: TierUnlimited}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// A "*" segment in a configured path matches exactly one non-empty path segment.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/" || path == "/health") {
		cfg := unlimited
		return &cfg
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && matchPattern(config.Path, path) {
			return config
		}
	}

	return nil
}

// matchPattern compares pattern and path segment by segment.
func matchPattern(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] == "*" {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
