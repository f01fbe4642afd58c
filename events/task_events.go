package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// TaskCreatedEvent is emitted after a new task is committed.
type TaskCreatedEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    uint      `json:"task_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after an update is committed.
// Changed lists the JSON names of the fields present in the update.
type TaskUpdatedEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    uint      `json:"task_id"`
	Changed   []string  `json:"changed"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedEvent is emitted after a task is removed.
type TaskDeletedEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    uint      `json:"task_id"`
	Title     string    `json:"title"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// NewEventID returns a unique identifier for an event instance.
func NewEventID() string {
	return uuid.NewString()
}
