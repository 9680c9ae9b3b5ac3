package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LEAD_SINKS", "")
	t.Setenv("IDENTITY_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 3, cfg.PromptPageSize)
	assert.Equal(t, []string{"log"}, cfg.LeadSinks)
	assert.Equal(t, "INR", cfg.PaymentCurrency)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.Identity.Enabled())
	assert.False(t, cfg.StorageEnabled())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1000, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_PROMPT_PAGE_SIZE", "4")
	t.Setenv("LEAD_SINKS", "log, postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/institute")
	t.Setenv("PAYMENT_CURRENCY", "usd")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 4, cfg.PromptPageSize)
	assert.Equal(t, []string{"log", "postgres"}, cfg.LeadSinks)
	assert.Equal(t, "USD", cfg.PaymentCurrency)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.RateLimit.Allowlist)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:            8080,
			PromptPageSize:  3,
			SessionTTL:      time.Hour,
			PaymentCurrency: "INR",
			LeadSinks:       []string{"log"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(_ *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port"},
		{name: "zero page size", mutate: func(c *Config) { c.PromptPageSize = 0 }, wantErr: "CHAT_PROMPT_PAGE_SIZE"},
		{name: "postgres sink without db", mutate: func(c *Config) { c.LeadSinks = []string{"postgres"} }, wantErr: "DATABASE_URL"},
		{name: "amqp sink without url", mutate: func(c *Config) { c.LeadSinks = []string{"amqp"} }, wantErr: "RABBITMQ_URL"},
		{name: "unknown sink", mutate: func(c *Config) { c.LeadSinks = []string{"fax"} }, wantErr: "unknown lead sink"},
		{name: "currency length", mutate: func(c *Config) { c.PaymentCurrency = "RUPEE" }, wantErr: "PAYMENT_CURRENCY"},
		{name: "half s3 credentials", mutate: func(c *Config) { c.S3AccessKey = "key" }, wantErr: "S3_ACCESS_KEY"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true} }, wantErr: "RATE_LIMIT_DEFAULT_LIMIT"},
		{name: "negative delay", mutate: func(c *Config) { c.PaymentDelay = -time.Second }, wantErr: "PAYMENT_SIMULATED_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"a", "b"}, parseList(" a, ,b "))
}
