// Package config loads tempo's settings from TEMPO_* environment variables.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	DBPath            string
	StateDir          string
	LogCalls          bool
	LogLevel          slog.Level
	Locale            string
	Location          *time.Location
	TickInterval      time.Duration
	GoogleCredentials string
	OAuthPort         int
}

// Supported locales.
const (
	LocalePtBR = "pt-BR"
	LocaleEn   = "en"
)

// DefaultConfig returns the defaults rooted at home. An empty home falls
// back to the working directory.
func DefaultConfig(home string) Config {
	base := filepath.Join(home, ".tempo")
	return Config{
		DBPath:       filepath.Join(base, "tempo.db"),
		StateDir:     filepath.Join(base, "state"),
		LogLevel:     slog.LevelInfo,
		Locale:       LocalePtBR,
		Location:     time.Local,
		TickInterval: time.Second,
		OAuthPort:    6789,
	}
}

// Load reads configuration from the environment, falling back to defaults
// for unset or invalid values.
func Load() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(getenv func(string) string) Config {
	home, _ := os.UserHomeDir()
	cfg := DefaultConfig(home)

	if v := getenv("TEMPO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("TEMPO_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := getenv("TEMPO_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := getenv("TEMPO_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := getenv("TEMPO_LOCALE"); v != "" {
		if loc, ok := normalizeLocale(v); ok {
			cfg.Locale = loc
		}
	}
	if v := getenv("TEMPO_TZ"); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			cfg.Location = loc
		}
	}
	if v := getenv("TEMPO_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := getenv("TEMPO_GOOGLE_CREDENTIALS"); v != "" {
		cfg.GoogleCredentials = v
	}
	if v := getenv("TEMPO_OAUTH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.OAuthPort = n
		}
	}
	return cfg
}

func normalizeLocale(s string) (string, bool) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "pt-br", "pt":
		return LocalePtBR, true
	case "en", "en-us", "en-gb":
		return LocaleEn, true
	}
	return "", false
}
