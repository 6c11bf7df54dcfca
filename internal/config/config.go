package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the MCP weather server.
type AppConfig struct {
	// OpenWeatherAPIKey authenticates outbound calls to OpenWeatherMap.
	OpenWeatherAPIKey string

	// GeocoderAPIKey enables optional reverse geocoding of coordinate
	// lookups. Empty disables the feature.
	GeocoderAPIKey string

	// Host and Port form the bind address for the SSE transport.
	Host string
	Port string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// SessionIdleTTL is how long a session may sit without traffic before
	// the reaper closes it (0 = never).
	SessionIdleTTL time.Duration
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		Host:              getenvDefault("HOST", "127.0.0.1"),
		Port:              getenvDefault("PORT", "3001"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	ttlStr := getenvDefault("SESSION_IDLE_TTL", "30m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TTL: %w", err)
	}
	cfg.SessionIdleTTL = ttl

	return cfg, nil
}

// Validate checks that required settings are present. Called after CLI
// flag overrides have been applied.
func (c *AppConfig) Validate() error {
	if c.OpenWeatherAPIKey == "" {
		return errors.New("OpenWeatherMap API key is required; set OPENWEATHER_API_KEY or pass --api-key")
	}
	return nil
}

// Addr returns the host:port bind address.
func (c *AppConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
