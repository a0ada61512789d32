package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Addr    string
	BaseURL string
	DataDir string
	Dev     bool
	Auth    AuthConfig
}

// AuthConfig points at the external auth service (GoTrue-compatible) that owns
// sessions and magic-link delivery.
type AuthConfig struct {
	URL    string
	APIKey string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load assembles the runtime configuration from flags and environment. The auth
// service URL and public API key have no sane default: without them no
// server-side auth path can work, so their absence is an error the caller
// treats as fatal.
func Load(flagAddr, flagBaseURL, flagDataDir string) (Config, error) {
	cfg := Config{
		Addr:    flagAddr,
		BaseURL: strings.TrimRight(getEnv("ZEYIN_BASE_URL", flagBaseURL), "/"),
		DataDir: getEnv("ZEYIN_DATA_DIR", flagDataDir),
		Dev:     strings.EqualFold(getEnv("ZEYIN_DEV", "false"), "true"),
		Auth: AuthConfig{
			URL:    strings.TrimRight(getEnv("ZEYIN_AUTH_URL", ""), "/"),
			APIKey: getEnv("ZEYIN_AUTH_ANON_KEY", ""),
		},
	}

	if cfg.Auth.URL == "" {
		return cfg, fmt.Errorf("ZEYIN_AUTH_URL is required")
	}
	if cfg.Auth.APIKey == "" {
		return cfg, fmt.Errorf("ZEYIN_AUTH_ANON_KEY is required")
	}

	return cfg, nil
}
