// Package config resolves runtime settings from the environment.
//
// main loads a .env file first (godotenv), so values may come from either
// place. Every setting has a default that works for a local setup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the tracker and the remote store endpoint.
type Config struct {
	LogLevel       string
	RemoteEndpoint string
	PollInterval   time.Duration
	ScanCooldown   time.Duration
	HTTPTimeout    time.Duration
	DBPath         string
	ServerDBPath   string
	Port           string
	ClientOrigin   string
	ExportDir      string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       "info",
		RemoteEndpoint: "http://localhost:5175/exec",
		PollInterval:   20 * time.Second,
		ScanCooldown:   1500 * time.Millisecond,
		HTTPTimeout:    10 * time.Second,
		DBPath:         "./data/babanuki.db",
		ServerDBPath:   "./data/remote.db",
		Port:           "5175",
		ClientOrigin:   "http://localhost:5173",
		ExportDir:      ".",
	}
}

// Load overlays environment variables on Default.
func Load() (Config, error) {
	cfg := Default()
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.RemoteEndpoint = getEnv("REMOTE_ENDPOINT", cfg.RemoteEndpoint)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.ServerDBPath = getEnv("SERVER_DB_PATH", cfg.ServerDBPath)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.ClientOrigin = getEnv("CLIENT_ORIGIN", cfg.ClientOrigin)
	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)

	var err error
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.ScanCooldown, err = envDuration("SCAN_COOLDOWN", cfg.ScanCooldown); err != nil {
		return cfg, err
	}
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return cfg, err
	}
	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// envDuration accepts Go duration syntax ("20s") or bare milliseconds ("1500").
func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
