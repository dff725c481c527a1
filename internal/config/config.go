package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	RedisURL   string
	SessionTTL time.Duration

	// External collaborators
	EnrichmentURL    string
	AddressLookupURL string
	InstallersURL    string
	LeadWebhookURL   string

	// Business tuning (deliberately configuration, not code)
	EnrichmentMinDuration   time.Duration
	AddressDebounce         time.Duration
	CompletionRedirectURL   string
	CompletionRedirectDelay time.Duration

	FlowConfigPath string

	CORSAllowAll bool
	CORSOrigins  []string

	// MockAddressEnabled mounts the fixture address lookup used by the
	// savings-check flow during development.
	MockAddressEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")
	isDev := strings.EqualFold(env, "development")

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      env,
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: mustDuration(getEnv("SESSION_TTL", "30m")),

		EnrichmentURL:    getEnv("ENRICHMENT_URL", "https://apim-website-prod-weu-01.azure-api.net/house-information"),
		AddressLookupURL: getEnv("ADDRESS_LOOKUP_URL", "https://api.pdok.nl/bzk/locatieserver/search/v3_1/free"),
		InstallersURL:    getEnv("INSTALLERS_URL", "https://apim-website-prod-weu-01.azure-api.net/get-near-installers"),
		LeadWebhookURL:   getEnv("LEAD_WEBHOOK_URL", ""),

		EnrichmentMinDuration:   mustDuration(getEnv("ENRICHMENT_MIN_DURATION", "2s")),
		AddressDebounce:         mustDuration(getEnv("ADDRESS_DEBOUNCE", "500ms")),
		CompletionRedirectURL:   getEnv("COMPLETION_REDIRECT_URL", "https://weheat.nl/besparingscheck-test"),
		CompletionRedirectDelay: mustDuration(getEnv("COMPLETION_REDIRECT_DELAY", "5s")),

		FlowConfigPath: getEnv("FLOW_CONFIG_PATH", ""),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		MockAddressEnabled: strings.EqualFold(getEnv("MOCK_ADDRESS_ENABLED", boolString(isDev)), "true"),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if !isDev && cfg.LeadWebhookURL == "" {
		return nil, fmt.Errorf("LEAD_WEBHOOK_URL is required outside development")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if cfg.CORSAllowAll && !isDev {
		return nil, fmt.Errorf("CORS_ALLOW_ALL is not permitted outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
