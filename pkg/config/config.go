package config

import (
	"fmt"
	"os"
	"strconv"
)

// Fallback host used when no API base URL is configured and the gateway is
// not running in development mode.
const defaultAPIBaseURL = "http://localhost:8080"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Redis   RedisConfig
	Maps    MapsConfig
	Session SessionConfig
	OTEL    OTELConfig
	Env     string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// APIConfig holds upstream CafeFinder API configuration
type APIConfig struct {
	BaseURL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MapsConfig holds maps/places provider configuration. An empty APIKey puts
// map views into the degraded placeholder mode.
type MapsConfig struct {
	Provider string
	APIKey   string
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	DBPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	return &Config{
		Env: env,
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 3000),
		},
		API: APIConfig{
			BaseURL: resolveAPIBaseURL(env),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Maps: MapsConfig{
			Provider: getEnv("MAPS_PROVIDER", "google"),
			APIKey:   getEnv("MAPS_API_KEY", ""),
		},
		Session: SessionConfig{
			DBPath: getEnv("SESSION_DB_PATH", "sessions.db"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "cafefinder-gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// resolveAPIBaseURL picks the upstream base URL: an explicit CAFE_API_URL
// override wins, development talks to the API on the local host, and
// everything else falls back to the default host.
func resolveAPIBaseURL(env string) string {
	if override := os.Getenv("CAFE_API_URL"); override != "" {
		return override
	}
	if env == "development" {
		return "http://localhost:8080"
	}
	return defaultAPIBaseURL
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
