package main

import (
	"testing"
	"time"

	"github.com/example/task-service/modules/task"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "API_PREFIX", "CORS_ALLOWED_ORIGINS", "DB_DRIVER", "DB_PATH",
		"DATABASE_URL", "DB_DEBUG", "SERVICE_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"RATE_LIMIT_ENABLED", "REDIS_ADDR", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, "", cfg.HTTP.Prefix)
	assert.Equal(t, "*", cfg.HTTP.AllowedOrigins)
	assert.Equal(t, task.DefaultCallTimeout, cfg.HTTP.ServiceTimeout)
	assert.Equal(t, task.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "tasks.db", cfg.Database.Path)
	assert.False(t, cfg.Database.Debug)
	assert.False(t, cfg.RateLimitOn)
	assert.Equal(t, "localhost:6379", cfg.RateLimit.RedisAddr)
	assert.Equal(t, 100, cfg.RateLimit.Limit.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.RateLimit.Limit.WindowSize)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("API_PREFIX", "api/v1/")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://tasks@localhost/tasks")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "1")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("SERVICE_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg := loadConfig()
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/api/v1", cfg.HTTP.Prefix)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ServiceTimeout)
	assert.Equal(t, task.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://tasks@localhost/tasks", cfg.Database.URL)
	assert.True(t, cfg.Database.Debug)
	assert.True(t, cfg.RateLimitOn)
	assert.Equal(t, 20, cfg.RateLimit.Limit.RequestsPerWindow)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Limit.WindowSize)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "many")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("DB_DEBUG", "maybe")

	cfg := loadConfig()
	assert.Equal(t, 100, cfg.RateLimit.Limit.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.RateLimit.Limit.WindowSize)
	assert.False(t, cfg.Database.Debug)
}

func TestNormalizePrefix(t *testing.T) {
	for in, want := range map[string]string{
		"":        "",
		"/":       "",
		"/api":    "/api",
		"api/v1":  "/api/v1",
		" /api/ ": "/api",
	} {
		assert.Equal(t, want, normalizePrefix(in), "input %q", in)
	}
}
