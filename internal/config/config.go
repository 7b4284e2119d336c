package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// AIConfig selects and configures the language model provider.
type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// IntroPolicy holds the marketplace limits applied to introduction requests.
type IntroPolicy struct {
	MinContacts        int
	WeeklyLimit        int
	MaxIndirectResults int
}

// NotifyConfig lists the optional outbound event sinks.
type NotifyConfig struct {
	NATSURL       string
	SubjectPrefix string
	WebhookURL    string
}

// RedisConfig configures the optional Redis backed weekly quota.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	DBMaxConns        int
	MigrationsPath    string
	AutoMigrate       bool
	Store             string
	JWTSecret         string
	Port              string
	TokenTTL          time.Duration
	LogJSON           bool
	LogDebug          bool
	RateLimitAI       RateLimitConfig
	EnrichConcurrency int
	PhoneRegion       string
	AI                AIConfig
	Intro             IntroPolicy
	Notify            NotifyConfig
	Redis             RedisConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxConns:        parseInt(getEnv("DB_MAX_CONNS", "10"), 10),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "migrations"),
		AutoMigrate:       parseBool(getEnv("AUTO_MIGRATE", "false")),
		Store:             strings.ToLower(getEnv("STORE", "postgres")),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		Port:              getEnv("PORT", "8080"),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h")),
		LogJSON:           parseBool(getEnv("LOG_JSON", "false")),
		LogDebug:          parseBool(getEnv("LOG_DEBUG", "false")),
		EnrichConcurrency: parseInt(getEnv("ENRICH_CONCURRENCY", "4"), 4),
		PhoneRegion:       strings.ToUpper(getEnv("PHONE_REGION", "US")),
		AI: AIConfig{
			Provider: strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			APIKey:   os.Getenv("AI_API_KEY"),
			Model:    os.Getenv("AI_MODEL"),
			BaseURL:  os.Getenv("AI_BASE_URL"),
			Timeout:  parseDurationOr(getEnv("AI_TIMEOUT", "20s"), 20*time.Second),
		},
		Intro: IntroPolicy{
			MinContacts:        parseInt(getEnv("MIN_CONTACTS_FOR_INTRO", "5"), 5),
			WeeklyLimit:        parseInt(getEnv("WEEKLY_INTRO_LIMIT", "3"), 3),
			MaxIndirectResults: parseInt(getEnv("MAX_INDIRECT_RESULTS", "20"), 20),
		},
		Notify: NotifyConfig{
			NATSURL:       os.Getenv("NATS_URL"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "confluence"),
			WebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
	}

	switch cfg.Store {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE value %q: expected postgres or memory", cfg.Store)
	}

	switch cfg.AI.Provider {
	case "openai", "deepseek", "anthropic", "gemini":
	default:
		return nil, fmt.Errorf("invalid AI_PROVIDER value %q", cfg.AI.Provider)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_AI", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_AI value: %w", err)
	}
	cfg.RateLimitAI = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	return parseDurationOr(input, 24*time.Hour)
}

func parseDurationOr(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(input string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && b
}
