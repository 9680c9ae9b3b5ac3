package config

import (
	"fmt"
	"os"
	"time"
)

// IdentityConfig holds what is needed to verify tokens issued by the external identity provider.
type IdentityConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// NewIdentityConfig creates the identity configuration from environment variables.
// It reads IDENTITY_JWT_SECRET, IDENTITY_JWT_ISSUER, IDENTITY_JWT_AUDIENCE and
// IDENTITY_JWT_LEEWAY (default: 30s). An empty secret disables authenticated routes.
func NewIdentityConfig() (*IdentityConfig, error) {
	leeway := 30 * time.Second
	if raw := os.Getenv("IDENTITY_JWT_LEEWAY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid IDENTITY_JWT_LEEWAY: %v", err)
		}
		leeway = parsed
	}

	config := &IdentityConfig{
		Secret:   os.Getenv("IDENTITY_JWT_SECRET"),
		Issuer:   os.Getenv("IDENTITY_JWT_ISSUER"),
		Audience: os.Getenv("IDENTITY_JWT_AUDIENCE"),
		Leeway:   leeway,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Enabled reports whether token verification is configured.
func (c *IdentityConfig) Enabled() bool {
	return c.Secret != ""
}

// normalize validates the configuration.
func (c *IdentityConfig) normalize() error {
	if c.Secret != "" && len(c.Secret) < 32 {
		return fmt.Errorf("IDENTITY_JWT_SECRET must be at least 32 bytes, got %d", len(c.Secret))
	}
	if c.Leeway < 0 {
		return fmt.Errorf("IDENTITY_JWT_LEEWAY must be non-negative, got: %s", c.Leeway)
	}
	return nil
}
