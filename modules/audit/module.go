// Package audit records task lifecycle events as structured log lines.
package audit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/task-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module is a driven adapter that consumes task events.
type Module struct {
	created atomic.Int64
	updated atomic.Int64
	deleted atomic.Int64
	// last holds the UnixNano of the most recent event's timestamp.
	last   atomic.Int64
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new audit module.
func NewModule(logger types.Logger) *Module {
	return &Module{logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "audit"
}

// RegisterEventConsumers subscribes to every task lifecycle event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated.v1", "TaskUpdated.v1", "TaskDeleted.v1"})
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.created.Add(1)
	m.touch(event.CreatedAt)

	category := ""
	if event.Category != nil {
		category = *event.Category
	}
	m.logger.Info("Task created",
		"event_id", event.EventID,
		"task_id", event.TaskID,
		"title", event.Title,
		"priority", event.Priority,
		"category", category)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.updated.Add(1)
	m.touch(event.UpdatedAt)

	m.logger.Info("Task updated",
		"event_id", event.EventID,
		"task_id", event.TaskID,
		"changed", event.Changed,
		"completed", event.Completed)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.deleted.Add(1)
	m.touch(event.DeletedAt)

	m.logger.Info("Task deleted",
		"event_id", event.EventID,
		"task_id", event.TaskID,
		"title", event.Title)
	return nil
}

// touch advances the last-event mark. Events may arrive out of order.
func (m *Module) touch(at time.Time) {
	n := at.UnixNano()
	for {
		cur := m.last.Load()
		if n <= cur || m.last.CompareAndSwap(cur, n) {
			return
		}
	}
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Audit module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Audit module stopped",
		"created", m.created.Load(),
		"updated", m.updated.Load(),
		"deleted", m.deleted.Load())
	return nil
}

// Health reports the number of events seen per type.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"task_created": m.created.Load(),
		"task_updated": m.updated.Load(),
		"task_deleted": m.deleted.Load(),
	}
	if last := m.last.Load(); last > 0 {
		details["last_event_at"] = time.Unix(0, last).UTC().Format(time.RFC3339Nano)
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
