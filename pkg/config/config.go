package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tuutta/wayfinder/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream platform API
	Backend BackendConfig

	// Workspace state persistence
	Store StoreConfig

	// Policy table and feature flags
	Policy PolicyConfig

	// OIDC session verification
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig points at the platform API that owns orgs, memberships, and
// workspace resolution.
type BackendConfig struct {
	BaseURL     string
	Timeout     time.Duration
	PrefetchTTL time.Duration
}

// StoreConfig selects and configures the workspace state backend.
type StoreConfig struct {
	// Type is one of file, sqlite, redis.
	Type string

	FileRoot   string
	SQLitePath string

	RedisURL      string
	RedisPassword string
	RedisDB       int

	TTL             time.Duration
	JanitorSchedule string
}

// PolicyConfig locates the policy table and feature-flag overrides.
type PolicyConfig struct {
	// TablePath overrides the embedded policy table when set.
	TablePath string
	// FlagsPath enables the file-backed feature-flag gate when set.
	FlagsPath string
}

// AuthConfig holds OIDC verification settings. Verification is disabled when
// the issuer is empty (local development).
type AuthConfig struct {
	OIDCIssuer   string
	OIDCClientID string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("WAYFINDER_HOST", "0.0.0.0"),
			Port:            getEnv("WAYFINDER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("WAYFINDER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("WAYFINDER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("WAYFINDER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("WAYFINDER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:     getEnv("WAYFINDER_BACKEND_URL", "http://localhost:8000"),
			Timeout:     getEnvDuration("WAYFINDER_BACKEND_TIMEOUT", 10*time.Second),
			PrefetchTTL: getEnvDuration("WAYFINDER_PREFETCH_TTL", 5*time.Minute),
		},
		Store: StoreConfig{
			Type:            getEnv("WAYFINDER_STORE_TYPE", "file"),
			FileRoot:        getEnv("WAYFINDER_STORE_FILE_ROOT", "/var/lib/wayfinder/state"),
			SQLitePath:      getEnv("WAYFINDER_STORE_SQLITE_PATH", ""),
			RedisURL:        getEnv("WAYFINDER_REDIS_URL", ""),
			RedisPassword:   getEnv("WAYFINDER_REDIS_PASSWORD", ""),
			RedisDB:         getEnvInt("WAYFINDER_REDIS_DB", 0),
			TTL:             getEnvDuration("WAYFINDER_STATE_TTL", 30*24*time.Hour),
			JanitorSchedule: getEnv("WAYFINDER_JANITOR_SCHEDULE", "@hourly"),
		},
		Policy: PolicyConfig{
			TablePath: getEnv("WAYFINDER_POLICY_PATH", ""),
			FlagsPath: getEnv("WAYFINDER_FLAGS_PATH", ""),
		},
		Auth: AuthConfig{
			OIDCIssuer:   getEnv("WAYFINDER_OIDC_ISSUER", ""),
			OIDCClientID: getEnv("WAYFINDER_OIDC_CLIENT_ID", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLevel(getEnv("WAYFINDER_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("WAYFINDER_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("WAYFINDER_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("WAYFINDER_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("WAYFINDER_OTEL_SERVICE_NAME", "wayfinder"),
			OTelServiceVersion: getEnv("WAYFINDER_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("WAYFINDER_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend URL must be http or https: %s", c.Backend.BaseURL)
	}

	switch c.Store.Type {
	case "file":
		if c.Store.FileRoot == "" {
			return fmt.Errorf("file root is required for file store")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis store")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be file, sqlite, or redis)", c.Store.Type)
	}

	if c.Auth.OIDCIssuer != "" && c.Auth.OIDCClientID == "" {
		return fmt.Errorf("OIDC client id is required when an issuer is set")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
