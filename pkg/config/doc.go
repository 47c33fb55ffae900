// Package config provides application configuration management from environment variables.
//
// # Configuration Structure
//
// Server settings:
//
//	WAYFINDER_HOST="0.0.0.0"
//	WAYFINDER_PORT="8080"
//	WAYFINDER_READ_TIMEOUT="15s"
//	WAYFINDER_WRITE_TIMEOUT="15s"
//
// Platform API:
//
//	WAYFINDER_BACKEND_URL="https://api.tuutta.example"
//	WAYFINDER_BACKEND_TIMEOUT="10s"
//	WAYFINDER_PREFETCH_TTL="5m"
//
// Workspace state store:
//
//	WAYFINDER_STORE_TYPE="file"  # file, sqlite, redis
//	WAYFINDER_STORE_FILE_ROOT="/var/lib/wayfinder/state"
//	WAYFINDER_STORE_SQLITE_PATH="/var/lib/wayfinder/state.db"
//	WAYFINDER_REDIS_URL="redis://localhost:6379"
//	WAYFINDER_STATE_TTL="720h"
//	WAYFINDER_JANITOR_SCHEDULE="@hourly"
//
// Policy and flags:
//
//	WAYFINDER_POLICY_PATH=""     # empty uses the embedded table
//	WAYFINDER_FLAGS_PATH=""      # empty disables the file flag gate
//
// Auth:
//
//	WAYFINDER_OIDC_ISSUER=""     # empty disables token verification
//	WAYFINDER_OIDC_CLIENT_ID=""
//
// Observability settings:
//
//	WAYFINDER_LOG_LEVEL="info"  # debug, info, warn, error
//	WAYFINDER_METRICS_ENABLED="true"
//	WAYFINDER_OTEL_ENABLED="false"
//	WAYFINDER_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
