package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// EndpointConfig is the rate limit tier for a route pattern.
type EndpointConfig struct {
	Name   string        // Tier name, also the bucket key suffix
	Path   string        // Route pattern; "*" matches exactly one path segment
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// envConfig is the RATE_LIMIT_* environment surface.
type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"1000"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	GenerateLimit   int           `env:"RATE_LIMIT_GENERATE_LIMIT" envDefault:"10"`
	GenerateWindow  time.Duration `env:"RATE_LIMIT_GENERATE_WINDOW" envDefault:"1h"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	if !raw.Enabled {
		return &Config{Enabled: false}, nil
	}

	endpoints := DefaultEndpointConfigs()
	for i := range endpoints {
		if endpoints[i].Name == TierGenerate {
			endpoints[i].Limit = raw.GenerateLimit
			endpoints[i].Window = raw.GenerateWindow
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    raw.DefaultLimit,
		DefaultWindow:   raw.DefaultWindow,
		CleanupInterval: raw.CleanupInterval,
		Whitelist:       toSet(raw.Whitelist),
		Blacklist:       toSet(raw.Blacklist),
		EndpointConfigs: endpoints,
	}, nil
}

// Tier names.
const (
	TierGenerate  = "generate"
	TierEvaluate  = "evaluate"
	TierWrite     = "write"
	TierUnlimited = "unlimited"
)

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// LLM-backed operations
		{Name: TierGenerate, Path: "/brands/*/voices:generate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Name: TierEvaluate, Path: "/brands/*/voices/*/evaluate", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},

		// Writes
		{Name: TierWrite, Path: "/brands/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Name: TierWrite, Path: "/brands", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads fall through to the default limit.
	}
}

// toSet trims entries and drops empty ones.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
