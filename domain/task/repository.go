package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository provides database operations for tasks.
// It holds no connection: every call receives the handle to run on,
// either the pool or an open transaction.
type Repository struct{}

// NewRepository creates a new task repository.
func NewRepository() *Repository {
	return &Repository{}
}

// List returns the tasks matching f, ordered by f.Sort.
func (r *Repository) List(ctx context.Context, db *gorm.DB, f Filter) ([]Task, error) {
	q := db.WithContext(ctx).Model(&Task{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", like, like)
	}

	for _, order := range orderClauses(f.Sort) {
		q = q.Order(order)
	}

	tasks := make([]Task, 0)
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func orderClauses(s SortOrder) []string {
	switch s {
	case SortDueDate:
		return []string{"CASE WHEN due_date IS NULL THEN 1 ELSE 0 END", "due_date ASC", "id DESC"}
	case SortPriority:
		return []string{priorityRankExpr(), "id DESC"}
	case SortTitle:
		return []string{"title ASC", "id DESC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

// priorityRankExpr orders urgent first. Values come from the fixed Priorities list.
func priorityRankExpr() string {
	var b strings.Builder
	b.WriteString("CASE priority")
	for _, p := range Priorities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, len(Priorities)-1-p.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(Priorities))
	return b.String()
}

// Create inserts a new task and fills in its ID.
func (r *Repository) Create(ctx context.Context, db *gorm.DB, t *Task) error {
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get retrieves a task by ID.
func (r *Repository) Get(ctx context.Context, db *gorm.DB, id uint) (*Task, error) {
	var t Task
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// Update writes every column of t except id and created_at.
func (r *Repository) Update(ctx context.Context, db *gorm.DB, t *Task) error {
	result := db.WithContext(ctx).Model(t).Select("*").Omit("id", "created_at").Updates(t)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete permanently removes a task.
func (r *Repository) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Delete(&Task{}, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CountBy counts the tasks matching every scope.
func (r *Repository) CountBy(ctx context.Context, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&Task{}).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// Categories returns the distinct non-empty categories in store order.
func (r *Repository) Categories(ctx context.Context, db *gorm.DB) ([]string, error) {
	categories := make([]string, 0)
	err := db.WithContext(ctx).Model(&Task{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CompletedIs matches tasks by completion flag.
func CompletedIs(completed bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("completed = ?", completed)
	}
}

// PriorityIs matches tasks with priority p.
func PriorityIs(p Priority) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("priority = ?", p)
	}
}

// OverdueAt matches incomplete tasks due before now.
func OverdueAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("due_date < ? AND completed = ?", now.UTC(), false)
	}
}
