package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config collects every environment-driven knob in one place.
type Config struct {
	Port          string
	DSN           string
	AutoMigrate   bool
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	MediaBase     string
	MediaURL      string
	MediaWatch    bool
	ToggleLocking bool
	CORSOrigin    string
}

func loadConfig() Config {
	cfg := Config{
		Port:          envOr("PORT", "8081"),
		DSN:           os.Getenv("DB_DSN"),
		AutoMigrate:   envBool("DB_AUTO_MIGRATE", true),
		AccessSecret:  []byte(envOr("ACCESS_TOKEN_SECRET", "dev-insecure-access-secret-change")),
		RefreshSecret: []byte(envOr("REFRESH_TOKEN_SECRET", "dev-insecure-refresh-secret-change")),
		AccessTTL:     envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		Issuer:        envOr("TOKEN_ISSUER", "vidtube"),
		MediaBase:     envOr("MEDIA_BASE", "media"),
		MediaURL:      envOr("MEDIA_PUBLIC_URL", "/media"),
		MediaWatch:    envBool("MEDIA_WATCH", false),
		ToggleLocking: envBool("TOGGLE_LOCKING", true),
		CORSOrigin:    envOr("CORS_ORIGIN", "*"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return !(v == "false" || v == "0" || v == "no")
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
