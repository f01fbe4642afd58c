package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Config configures the HTTP server.
type Config struct {
	Addr           string
	Prefix         string // prepended to every /tasks route
	AllowedOrigins string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ServiceTimeout time.Duration // per call to the task module
	AccessLog      bool
}

// APIModule is the driving adapter that exposes the task REST endpoints.
// It calls into the task module via the TaskPort interface.
type APIModule struct {
	cfg        Config
	app        *fiber.App
	taskPort   task.TaskPort
	middleware []fiber.Handler
	logger     types.Logger
	startedAt  time.Time
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule. Extra middleware runs after the
// built-in recover, request-id, logger and CORS handlers.
func NewModule(cfg Config, logger types.Logger, middleware ...fiber.Handler) *APIModule {
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "*"
	}
	return &APIModule{
		cfg:        cfg,
		middleware: middleware,
		logger:     logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskPort = task.NewTaskAdapter(container, m.cfg.ServiceTimeout)
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskPort == nil {
		return fmt.Errorf("taskPort dependency not set")
	}

	m.app = m.newApp()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors (port in use, permission denied)
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.startedAt = time.Now()
	m.logger.Info("HTTP server started", "addr", m.cfg.Addr, "prefix", m.cfg.Prefix)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":   m.cfg.Addr,
			"uptime": time.Since(m.startedAt).Round(time.Second).String(),
		},
	}
}

// newApp builds the Fiber app with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Service",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           m.cfg.ReadTimeout,
		WriteTimeout:          m.cfg.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if m.cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	for _, h := range m.middleware {
		app.Use(h)
	}

	m.registerRoutes(app)
	return app
}

// errorHandler renders framework errors (unknown routes, panics) in the response envelope.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{Success: false, Error: message})
}

// writeError maps a task error to its status code and envelope.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Success: false, Error: ve.Message})
	case errors.Is(err, domain.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Success: false, Error: "Task not found"})
	default:
		m.logger.Error("Task operation failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Success: false, Error: err.Error()})
	}
}
