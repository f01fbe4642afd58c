package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/task-service/domain/ratelimit"
	"github.com/example/task-service/modules/api"
	ratelimitmod "github.com/example/task-service/modules/ratelimit"
	"github.com/example/task-service/modules/task"
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTP            api.Config
	Database        task.DatabaseConfig
	RateLimit       ratelimitmod.Config
	RateLimitOn     bool
	ShutdownTimeout time.Duration
	LogLevel        string // info or error
}

func loadConfig() Config {
	return Config{
		HTTP: api.Config{
			Addr:           getEnv("HTTP_ADDR", ":3000"),
			Prefix:         normalizePrefix(getEnv("API_PREFIX", "")),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ServiceTimeout: getEnvDuration("SERVICE_TIMEOUT", task.DefaultCallTimeout),
			AccessLog:      getEnvBool("HTTP_ACCESS_LOG", true),
		},
		Database: task.DatabaseConfig{
			Driver: getEnv("DB_DRIVER", task.DriverSQLite),
			Path:   getEnv("DB_PATH", "tasks.db"),
			URL:    getEnv("DATABASE_URL", ""),
			Debug:  getEnvBool("DB_DEBUG", false),
		},
		RateLimit: ratelimitmod.Config{
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			Limit: ratelimit.Config{
				RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 100),
				WindowSize:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			},
		},
		RateLimitOn:     getEnvBool("RATE_LIMIT_ENABLED", false),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// normalizePrefix turns "api/v1/" into "/api/v1". Empty stays empty.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
