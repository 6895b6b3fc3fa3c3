package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string // optional override, used by tests and proxies

	// AI calls
	AITimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Sessions
	SessionTTL    time.Duration
	SessionMax    int
	SessionSecret string

	// HTTP
	CORSAllowedOrigins []string

	// Observability
	OTLPEndpoint string // empty disables tracing export
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_TIMEOUT", 30*time.Second)
	v.SetDefault("MAX_RETRIES", 2)
	v.SetDefault("INITIAL_BACKOFF", 200*time.Millisecond)
	v.SetDefault("MAX_CONCURRENCY", 20)
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("SESSION_MAX", 10000)
	v.SetDefault("SESSION_SECRET", "schemexpert-dev-secret-change-me")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	apiKey := v.GetString("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("API_KEY")
	}

	return &Config{
		Port:     v.GetInt("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		GeminiAPIKey:  apiKey,
		GeminiModel:   v.GetString("GEMINI_MODEL"),
		GeminiBaseURL: v.GetString("GEMINI_BASE_URL"),

		AITimeout: v.GetDuration("AI_TIMEOUT"),

		MaxRetries:     v.GetInt("MAX_RETRIES"),
		InitialBackoff: v.GetDuration("INITIAL_BACKOFF"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),

		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SessionMax:    v.GetInt("SESSION_MAX"),
		SessionSecret: v.GetString("SESSION_SECRET"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
