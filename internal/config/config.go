// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process configuration. Values come from the environment (optionally seeded
// from a .env file by main) and may be overridden by CLI flags.
type Config struct {
	// Server
	Port            int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Logging
	LogLevel  string
	LogFormat string

	// Sessions
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Chat
	KnowledgeBasePath string // optional override of the embedded knowledge base
	PromptPageSize    int
	LeadSinks         []string

	// Storage
	DatabaseURL   string // PostgreSQL connection URL
	MongoURI      string
	MongoDatabase string

	// Messaging
	AMQPURL      string
	AMQPExchange string

	// Object storage (S3 compatible)
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Payments
	PaymentDelay    time.Duration
	PaymentCurrency string

	// Identity
	Identity IdentityConfig

	// Writing assist
	GeminiAPIKey string
	GeminiModel  string

	// Export
	ChromeTimeout time.Duration

	// Rate limiting
	RateLimit RateLimitConfig
}

// RateLimitConfig holds the global rate limiter settings. Per-endpoint limits are fixed in code.
type RateLimitConfig struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allowlist       []string
	Denylist        []string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	identity, err := NewIdentityConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                   getEnvInt("PORT", 8080),
		ShutdownTimeout:        getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:         parseList(getEnvString("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:               getEnvString("LOG_LEVEL", "info"),
		LogFormat:              getEnvString("LOG_FORMAT", "json"),
		SessionTTL:             getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionCleanupInterval: getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour),
		KnowledgeBasePath:      getEnvString("KNOWLEDGE_BASE_PATH", ""),
		PromptPageSize:         getEnvInt("CHAT_PROMPT_PAGE_SIZE", 3),
		LeadSinks:              parseList(getEnvString("LEAD_SINKS", "log")),
		DatabaseURL:            getEnvString("DATABASE_URL", ""),
		MongoURI:               getEnvString("MONGODB_URI", ""),
		MongoDatabase:          getEnvString("MONGODB_DATABASE", "institute"),
		AMQPURL:                getEnvString("RABBITMQ_URL", ""),
		AMQPExchange:           getEnvString("RABBITMQ_EXCHANGE", "leads"),
		S3Bucket:               getEnvString("S3_BUCKET", ""),
		S3Region:               getEnvString("S3_REGION", "auto"),
		S3Endpoint:             getEnvString("S3_ENDPOINT", ""),
		S3AccessKey:            getEnvString("S3_ACCESS_KEY", ""),
		S3SecretKey:            getEnvString("S3_SECRET_KEY", ""),
		PaymentDelay:           getEnvDuration("PAYMENT_SIMULATED_DELAY", 1500*time.Millisecond),
		PaymentCurrency:        strings.ToUpper(getEnvString("PAYMENT_CURRENCY", "INR")),
		Identity:               *identity,
		GeminiAPIKey:           getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:            getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
		ChromeTimeout:          getEnvDuration("CHROME_TIMEOUT", 30*time.Second),
		RateLimit: RateLimitConfig{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
			DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
			DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
			CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
			Allowlist:       parseList(getEnvString("RATE_LIMIT_WHITELIST", "")),
			Denylist:        parseList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
// Collaborators that are not configured are simply disabled; only contradictory settings fail.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.PromptPageSize < 1 {
		return fmt.Errorf("config error: CHAT_PROMPT_PAGE_SIZE must be at least 1, got %d", c.PromptPageSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config error: SESSION_TTL must be positive")
	}
	if c.PaymentDelay < 0 {
		return fmt.Errorf("config error: PAYMENT_SIMULATED_DELAY must be non-negative")
	}
	if len(c.PaymentCurrency) != 3 {
		return fmt.Errorf("config error: PAYMENT_CURRENCY must be a 3-letter code, got %q", c.PaymentCurrency)
	}

	for _, sink := range c.LeadSinks {
		switch sink {
		case "log":
		case "postgres":
			if c.DatabaseURL == "" {
				return fmt.Errorf("config error: lead sink 'postgres' requires DATABASE_URL")
			}
		case "amqp":
			if c.AMQPURL == "" {
				return fmt.Errorf("config error: lead sink 'amqp' requires RABBITMQ_URL")
			}
		default:
			return fmt.Errorf("config error: unknown lead sink %q", sink)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.DefaultLimit <= 0 {
		return fmt.Errorf("config error: RATE_LIMIT_DEFAULT_LIMIT must be positive")
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("config error: S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}

	return nil
}

// StorageEnabled reports whether admission uploads can be stored.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(list string) []string {
	var result []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
