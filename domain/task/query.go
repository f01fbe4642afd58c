package task

import (
	"strings"
)

// SortOrder selects the ordering of list results.
type SortOrder string

const (
	SortCreated  SortOrder = "created"
	SortDueDate  SortOrder = "due_date"
	SortPriority SortOrder = "priority"
	SortTitle    SortOrder = "title"
)

var sortOrders = []SortOrder{SortCreated, SortDueDate, SortPriority, SortTitle}

// ParseSortOrder validates a sort parameter. Empty selects SortCreated.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortCreated, nil
	}
	for _, o := range sortOrders {
		if SortOrder(s) == o {
			return o, nil
		}
	}
	names := make([]string, len(sortOrders))
	for i, o := range sortOrders {
		names[i] = string(o)
	}
	return "", &ValidationError{Message: msgSortOrderPrefix + strings.Join(names, ", ")}
}

// Filter narrows a task listing. Empty strings and nil pointers disable a filter.
type Filter struct {
	Category  string    `json:"category,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Search    string    `json:"search,omitempty"`
	Sort      SortOrder `json:"sort,omitempty"`
}

// ParseCompleted interprets a completed query parameter: only a
// case-insensitive "true" is true, any other present value is false.
func ParseCompleted(v string) bool {
	return strings.EqualFold(v, "true")
}

// Stats is the aggregate returned by the stats operation.
type Stats struct {
	TotalTasks        int64              `json:"total_tasks"`
	CompletedTasks    int64              `json:"completed_tasks"`
	PendingTasks      int64              `json:"pending_tasks"`
	OverdueTasks      int64              `json:"overdue_tasks"`
	PriorityBreakdown map[Priority]int64 `json:"priority_breakdown"`
}
