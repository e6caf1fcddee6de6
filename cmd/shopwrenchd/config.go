package main

import (
	"time"
)

// ServerConfig holds binary-level settings layered on top of
// internal/config: session behavior and shutdown tuning.
type ServerConfig struct {
	SessionDuration time.Duration
	SessionSecure   bool
	ShutdownTimeout time.Duration
}

// LoadServerConfig loads binary-level configuration from environment
// variables.
func LoadServerConfig(getenv func(string) string) *ServerConfig {
	return &ServerConfig{
		SessionDuration: envDuration(getenv, "SESSION_DURATION", 24*time.Hour),
		SessionSecure:   envBool(getenv, "SESSION_SECURE", false),
		ShutdownTimeout: envDuration(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envBool(getenv func(string) string, key string, fallback bool) bool {
	switch getenv(key) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) time.Duration {
	if v := getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
