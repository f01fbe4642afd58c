package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/example/task-service/domain/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Config configures the rate limiter module.
type Config struct {
	RedisAddr string
	Limit     ratelimit.Config
	KeyPrefix string
}

// Module provides per-IP rate limiting for the HTTP surface as a mono module.
type Module struct {
	cfg     Config
	client  *redis.Client
	limiter atomic.Pointer[SlidingWindowLimiter]
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new rate limiting module.
func NewModule(cfg Config, logger types.Logger) *Module {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = ratelimit.DefaultKeyPrefix
	}
	cfg.Limit = cfg.Limit.Normalize()
	return &Module{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start connects to Redis and builds the limiter.
func (m *Module) Start(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr: m.cfg.RedisAddr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.client = client
	m.limiter.Store(NewSlidingWindowLimiter(client, m.cfg.Limit, m.cfg.KeyPrefix+"ip:"))
	m.logger.Info("Connected to Redis",
		"addr", m.cfg.RedisAddr,
		"requests", m.cfg.Limit.RequestsPerWindow,
		"window", m.cfg.Limit.WindowSize.String())
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Close(); err != nil {
		m.logger.Warn("Error closing Redis connection", "error", err)
	}
	m.limiter.Store(nil)
	m.client = nil
	m.logger.Info("Rate limiter stopped")
	return nil
}

// Health verifies the Redis connection.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "Redis client not initialized",
		}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("Redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis":    m.cfg.RedisAddr,
			"requests": m.cfg.Limit.RequestsPerWindow,
			"window":   m.cfg.Limit.WindowSize.String(),
		},
	}
}

// Handler returns the Fiber middleware. It is safe to install before Start:
// requests pass through untouched until the limiter exists.
func (m *Module) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limiter := m.limiter.Load()
		if limiter == nil {
			return c.Next()
		}
		return IPRateLimit(limiter)(c)
	}
}
