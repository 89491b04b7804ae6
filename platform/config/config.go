// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// PlacesConfig provides settings for the external place-data provider.
type PlacesConfig interface {
	GetGoogleMapsAPIKey() string
	GetPlacesBaseURL() string
	GetPlacesHTTPTimeout() time.Duration
}

// SessionConfig provides settings for map session tokens and lifetime.
type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
}

// MapConfig provides the map profile and selection ordering settings.
type MapConfig interface {
	GetMapProfile() string
	GetMapProfilesFile() string
	GetSelectionOrdering() string
}

// RedisConfig provides settings for the Redis-backed event bus.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisChannelPrefix() string
	IsRedisEnabled() bool
}

// RateLimitConfig provides limits for provider-backed endpoints.
type RateLimitConfig interface {
	GetSelectionRatePerMinute() int
	GetSelectionBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

const (
	// OrderingLatestCompletion lets whichever resolution completes last own
	// the popup.
	OrderingLatestCompletion = "latest_completion"
	// OrderingLatestSelection rejects popups from selections older than the
	// last applied one.
	OrderingLatestSelection = "latest_selection"
)

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	GoogleMapsAPIKey       string
	PlacesBaseURL          string
	PlacesHTTPTimeout      time.Duration
	SessionSecret          string
	SessionTTL             time.Duration
	MapProfile             string
	MapProfilesFile        string
	SelectionOrdering      string
	RedisURL               string
	RedisChannelPrefix     string
	SelectionRatePerMinute int
	SelectionBurst         int
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// PlacesConfig implementation
func (c *Config) GetGoogleMapsAPIKey() string          { return c.GoogleMapsAPIKey }
func (c *Config) GetPlacesBaseURL() string             { return c.PlacesBaseURL }
func (c *Config) GetPlacesHTTPTimeout() time.Duration { return c.PlacesHTTPTimeout }

// SessionConfig implementation
func (c *Config) GetSessionSecret() string       { return c.SessionSecret }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// MapConfig implementation
func (c *Config) GetMapProfile() string        { return c.MapProfile }
func (c *Config) GetMapProfilesFile() string   { return c.MapProfilesFile }
func (c *Config) GetSelectionOrdering() string { return c.SelectionOrdering }

// RedisConfig implementation
func (c *Config) GetRedisURL() string           { return c.RedisURL }
func (c *Config) GetRedisChannelPrefix() string { return c.RedisChannelPrefix }
func (c *Config) IsRedisEnabled() bool          { return c.RedisURL != "" }

// RateLimitConfig implementation
func (c *Config) GetSelectionRatePerMinute() int { return c.SelectionRatePerMinute }
func (c *Config) GetSelectionBurst() int         { return c.SelectionBurst }

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		GoogleMapsAPIKey:       getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesBaseURL:          getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesHTTPTimeout:      mustDuration(getEnv("PLACES_HTTP_TIMEOUT", "10s")),
		SessionSecret:          getEnv("SESSION_SECRET", ""),
		SessionTTL:             mustDuration(getEnv("SESSION_TTL", "2h")),
		MapProfile:             getEnv("MAP_PROFILE", "default"),
		MapProfilesFile:        getEnv("MAP_PROFILES_FILE", ""),
		SelectionOrdering:      strings.ToLower(getEnv("SELECTION_ORDERING", OrderingLatestCompletion)),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisChannelPrefix:     getEnv("REDIS_CHANNEL_PREFIX", "mapview:events:"),
		SelectionRatePerMinute: mustInt(getEnv("SELECTION_RATE_PER_MINUTE", "120")),
		SelectionBurst:         mustInt(getEnv("SELECTION_BURST", "20")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.GoogleMapsAPIKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if c.PlacesHTTPTimeout < 0 {
		return fmt.Errorf("PLACES_HTTP_TIMEOUT must not be negative")
	}
	switch c.SelectionOrdering {
	case OrderingLatestCompletion, OrderingLatestSelection:
	default:
		return fmt.Errorf("SELECTION_ORDERING must be %q or %q", OrderingLatestCompletion, OrderingLatestSelection)
	}
	if c.SelectionRatePerMinute <= 0 || c.SelectionBurst <= 0 {
		return fmt.Errorf("SELECTION_RATE_PER_MINUTE and SELECTION_BURST must be positive")
	}
	if !c.CORSAllowAll && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
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

func mustInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
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
