package app

import (
	"os"
	"strconv"
	"time"

	"github.com/socialfin/authgate/pkg/jwtx"
)

// Directory backend selection.
const (
	DirectoryModeEmbedded = "embedded"
	DirectoryModeRemote   = "remote"
)

type Config struct {
	JWTSecret string // Required: HMAC signing secret for tokens
	Issuer    string // Optional: issuer claim for tokens (default: authgate)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DirectoryMode         string // Optional: embedded or remote (default: embedded)
	DirectoryURL          string // Required in remote mode: directory admin API base URL
	DirectoryServiceKey   string // Required in remote mode: service key for admin calls
	DirectoryLegacyLookup bool   // Optional: fall back to list+filter email lookups
	DatabaseFile          string // Optional: SQLite file for embedded mode (default: ./authgate.db)

	RedisAddr     string // Optional: redis for grants and rate counters; empty runs in-memory
	RedisPassword string // Optional
	RedisDB       int    // Optional

	RateLimitPerMinute int // Optional: shared per-minute window (default: 60)
	RateLimitPerHour   int // Optional: shared per-hour window (default: 1000)
	LoginAttemptLimit  int // Optional: login attempts per 5 minutes (default: 5)

	RequireVerifiedEmail bool // Optional: reject logins from unverified accounts

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		JWTSecret: os.Getenv("AUTHGATE_JWT_SECRET"),
		Issuer:    getEnvOrDefault("AUTHGATE_ISSUER", "authgate"),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTHGATE_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTHGATE_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),

		DirectoryMode:         getEnvOrDefault("AUTHGATE_DIRECTORY_MODE", DirectoryModeEmbedded),
		DirectoryURL:          os.Getenv("AUTHGATE_DIRECTORY_URL"),
		DirectoryServiceKey:   os.Getenv("AUTHGATE_DIRECTORY_SERVICE_KEY"),
		DirectoryLegacyLookup: getEnvBoolOrDefault("AUTHGATE_DIRECTORY_LEGACY_LOOKUP", false),
		DatabaseFile:          getEnvOrDefault("AUTHGATE_DATABASE_FILE", "authgate.db"),

		RedisAddr:     os.Getenv("AUTHGATE_REDIS_ADDR"),
		RedisPassword: os.Getenv("AUTHGATE_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("AUTHGATE_REDIS_DB", 0),

		RateLimitPerMinute: getEnvIntOrDefault("AUTHGATE_RATE_LIMIT_PER_MINUTE", 60),
		RateLimitPerHour:   getEnvIntOrDefault("AUTHGATE_RATE_LIMIT_PER_HOUR", 1000),
		LoginAttemptLimit:  getEnvIntOrDefault("AUTHGATE_LOGIN_ATTEMPT_LIMIT", 5),

		RequireVerifiedEmail: getEnvBoolOrDefault("AUTHGATE_REQUIRE_VERIFIED_EMAIL", false),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
