package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultAccessTTL       = "15m"
	defaultRefreshTTL      = "168h"
	defaultPlaybackTTL     = "5m"
	defaultInternalTTL     = "60s"
	defaultCacheTTL        = "300s"
	defaultExtractTimeout  = "30s"
	defaultUpstreamTimeout = "30s"

	defaultAccessSecret   = "change-me-access-secret"
	defaultRefreshSecret  = "change-me-refresh-secret"
	defaultPlaybackSecret = "change-me-playback-secret"
	defaultInternalSecret = "change-me-internal-secret"

	defaultUpstreamUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultUpstreamReferer   = "https://www.youtube.com/"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	AccessSecret   string
	RefreshSecret  string
	PlaybackSecret string
	InternalSecret string

	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	PlaybackTTL time.Duration
	InternalTTL time.Duration

	ExtractorURL    string
	ExtractTimeout  time.Duration
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration

	UpstreamUserAgent string
	UpstreamReferer   string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", "8080"))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "vidgate.db"))

	cfg.AccessSecret = strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET", defaultAccessSecret))
	cfg.RefreshSecret = strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET", defaultRefreshSecret))
	cfg.PlaybackSecret = strings.TrimSpace(getEnv("PLAYBACK_TOKEN_SECRET", defaultPlaybackSecret))
	cfg.InternalSecret = strings.TrimSpace(getEnv("INTERNAL_TOKEN_SECRET", defaultInternalSecret))

	var err error
	if cfg.AccessTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL); err != nil {
		return nil, err
	}
	if cfg.PlaybackTTL, err = parseDurationEnv("PLAYBACK_TOKEN_TTL", defaultPlaybackTTL); err != nil {
		return nil, err
	}
	if cfg.InternalTTL, err = parseDurationEnv("INTERNAL_TOKEN_TTL", defaultInternalTTL); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDurationEnv("LOCATOR_CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.ExtractTimeout, err = parseDurationEnv("EXTRACT_TIMEOUT", defaultExtractTimeout); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", defaultUpstreamTimeout); err != nil {
		return nil, err
	}

	cfg.ExtractorURL = strings.TrimSpace(os.Getenv("EXTRACTOR_URL"))
	cfg.UpstreamUserAgent = strings.TrimSpace(getEnv("UPSTREAM_USER_AGENT", defaultUpstreamUserAgent))
	cfg.UpstreamReferer = strings.TrimSpace(getEnv("UPSTREAM_REFERER", defaultUpstreamReferer))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 || cfg.PlaybackTTL <= 0 || cfg.InternalTTL <= 0 {
		return fmt.Errorf("all token TTLs must be > 0")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("LOCATOR_CACHE_TTL must be > 0")
	}
	if cfg.ExtractTimeout <= 0 || cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("extraction and upstream timeouts must be > 0")
	}
	if cfg.ExtractorURL == "" {
		return fmt.Errorf("EXTRACTOR_URL must be set")
	}

	// Tier isolation depends on each tier signing with its own key.
	secrets := map[string]string{
		"ACCESS_TOKEN_SECRET":   cfg.AccessSecret,
		"REFRESH_TOKEN_SECRET":  cfg.RefreshSecret,
		"PLAYBACK_TOKEN_SECRET": cfg.PlaybackSecret,
		"INTERNAL_TOKEN_SECRET": cfg.InternalSecret,
	}
	seen := map[string]string{}
	for name, value := range secrets {
		if value == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if other, dup := seen[value]; dup {
			return fmt.Errorf("%s and %s must not share the same value", name, other)
		}
		seen[value] = name
	}

	if isProdLike(cfg.AppEnv) {
		defaults := map[string]string{
			"ACCESS_TOKEN_SECRET":   defaultAccessSecret,
			"REFRESH_TOKEN_SECRET":  defaultRefreshSecret,
			"PLAYBACK_TOKEN_SECRET": defaultPlaybackSecret,
			"INTERNAL_TOKEN_SECRET": defaultInternalSecret,
		}
		for name, def := range defaults {
			if secrets[name] == def {
				return fmt.Errorf("in prod/release %s must be set and not default", name)
			}
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
