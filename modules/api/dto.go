package api

import (
	domain "github.com/example/task-service/domain/task"
)

// Every response is an envelope with a success flag.

// ErrorResponse is the envelope for any failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// TaskListResponse is the HTTP response for listing tasks.
type TaskListResponse struct {
	Success bool          `json:"success"`
	Tasks   []domain.Task `json:"tasks"`
	Count   int           `json:"count"`
}

// TaskResponse is the HTTP response for a single task.
type TaskResponse struct {
	Success bool         `json:"success"`
	Task    *domain.Task `json:"task"`
	Message string       `json:"message,omitempty"`
}

// MessageResponse is the HTTP response for operations that return no data.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatsResponse is the HTTP response for the task aggregate.
type StatsResponse struct {
	Success bool          `json:"success"`
	Stats   *domain.Stats `json:"stats"`
}

// CategoriesResponse is the HTTP response for distinct categories.
type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// HealthResponse is the HTTP response for the health check.
type HealthResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}
