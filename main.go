package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-service/modules/api"
	"github.com/example/task-service/modules/audit"
	ratelimitmod "github.com/example/task-service/modules/ratelimit"
	"github.com/example/task-service/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

func main() {
	log.Println("=== Task Service ===")

	cfg := loadConfig()

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Register modules: independent ones first, then task, then api (depends on task)
	app.Register(audit.NewModule(logger))

	var middleware []fiber.Handler
	if cfg.RateLimitOn {
		limiter := ratelimitmod.NewModule(cfg.RateLimit, logger)
		app.Register(limiter)
		middleware = append(middleware, limiter.Handler())
	}

	app.Register(task.NewModule(cfg.Database, logger))
	app.Register(api.NewModule(cfg.HTTP, logger, middleware...))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg Config) {
	p := cfg.HTTP.Prefix
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Database: %s (%s)", cfg.Database.Driver, cfg.Database.Location())
	if cfg.RateLimitOn {
		log.Printf("Rate limit: %d requests per %s (Redis %s)",
			cfg.RateLimit.Limit.RequestsPerWindow, cfg.RateLimit.Limit.WindowSize, cfg.RateLimit.RedisAddr)
	}
	log.Println("")
	log.Printf("HTTP Server: http://localhost%s", cfg.HTTP.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Printf("  GET    %s/tasks            - List tasks (category, priority, completed, search, sort)", p)
	log.Printf("  POST   %s/tasks            - Create a task", p)
	log.Printf("  GET    %s/tasks/stats      - Task statistics", p)
	log.Printf("  GET    %s/tasks/categories - Distinct categories", p)
	log.Printf("  GET    %s/tasks/:id        - Get a task", p)
	log.Printf("  PUT    %s/tasks/:id        - Update a task", p)
	log.Printf("  DELETE %s/tasks/:id        - Delete a task", p)
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("Example:")
	log.Printf(`  curl -X POST http://localhost%s%s/tasks -H 'Content-Type: application/json' -d '{"title":"Write report","priority":"high"}'`, cfg.HTTP.Addr, p)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
