package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr   = ":8099"
	defaultAPITimeout = 30 * time.Second
)

// Config stores runtime settings loaded from environment variables.
type Config struct {
	HTTPAddr              string
	HubHost               string
	HubAuthToken          string
	APITimeout            time.Duration
	TLSInsecureSkipVerify bool
	LogLevel              slog.Level
}

// Load builds Config from environment variables using stable defaults.
func Load() Config {
	return Config{
		HTTPAddr:              getenv("HTTP_ADDR", defaultHTTPAddr),
		HubHost:               getenv("CRESTRON_HOST", ""),
		HubAuthToken:          getenv("CRESTRON_AUTH_TOKEN", ""),
		APITimeout:            parseDuration("API_TIMEOUT", defaultAPITimeout),
		TLSInsecureSkipVerify: parseBool("TLS_INSECURE_SKIP_VERIFY", true),
		LogLevel:              parseLogLevel(getenv("LOG_LEVEL", "info")),
	}
}

// HasHubCredentials reports whether a hub session can be established at
// startup instead of waiting for an authenticate call.
func (c Config) HasHubCredentials() bool {
	return c.HubHost != "" && c.HubAuthToken != ""
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
