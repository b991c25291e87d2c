package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string `env:"JWT_SECRET"`
	ExpirationHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	Issuer          string `env:"JWT_ISSUER" envDefault:"voice-api"`
}

// NewJWTConfig reads the JWT configuration and requires JWT_SECRET.
func NewJWTConfig() (*JWTConfig, error) {
	cfg, err := parseJWTConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OptionalJWTConfig returns nil when JWT_SECRET is unset, which disables auth.
func OptionalJWTConfig() (*JWTConfig, error) {
	cfg, err := parseJWTConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		return nil, nil
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func parseJWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}
	return cfg, nil
}

func (c *JWTConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
