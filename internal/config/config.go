package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth for /api/*. Empty disables the check.
	APIKey string

	// OpenRouter summarization
	OpenRouterAPIKey    string
	OpenRouterModel     string
	OpenRouterBaseURL   string
	OpenRouterTimeout   time.Duration
	OpenRouterRateLimit float64

	// Summarization
	DefaultMode     string
	FallbackToMock  bool
	MaxInputBytes   int
	CurrencySymbols []string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("TENDERBRIEF_API_KEY"),

		OpenRouterAPIKey:    os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:     envOr("OPENROUTER_MODEL", "openai/gpt-3.5-turbo"),
		OpenRouterBaseURL:   envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterTimeout:   envDuration("OPENROUTER_TIMEOUT", 60*time.Second),
		OpenRouterRateLimit: envFloat("OPENROUTER_RATE_LIMIT", 2),

		DefaultMode:     strings.ToLower(envOr("DEFAULT_MODE", "mock")),
		FallbackToMock:  envBool("FALLBACK_TO_MOCK", false),
		MaxInputBytes:   envInt("MAX_INPUT_BYTES", 1<<20),
		CurrencySymbols: envList("CURRENCY_SYMBOLS", []string{"₹"}),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.OpenRouterTimeout <= 0 {
		cfg.OpenRouterTimeout = 60 * time.Second
	}
	if cfg.OpenRouterRateLimit < 0 {
		cfg.OpenRouterRateLimit = 0
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = 1 << 20
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.DefaultMode {
	case "mock":
	case "api":
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when DEFAULT_MODE=api")
		}
	default:
		return fmt.Errorf("DEFAULT_MODE must be mock or api, got %q", c.DefaultMode)
	}
	if len(c.CurrencySymbols) == 0 {
		return fmt.Errorf("CURRENCY_SYMBOLS must name at least one symbol")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value, dropping blank entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
