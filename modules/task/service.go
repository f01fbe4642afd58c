package task

import (
	"context"
	"maps"
	"slices"
	"time"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Service implements the task operations on top of the repository.
// Writes run in a transaction so a failure leaves no partial state.
type Service struct {
	db       *gorm.DB
	repo     *domain.Repository
	eventBus mono.EventBus
	logger   types.Logger
	now      func() time.Time
	reads    singleflight.Group // coalesces concurrent aggregate reads
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service. eventBus may be nil, in which case
// no lifecycle events are published.
func NewService(db *gorm.DB, eventBus mono.EventBus, logger types.Logger) *Service {
	return &Service{
		db:       db,
		repo:     domain.NewRepository(),
		eventBus: eventBus,
		logger:   logger,
		now:      utcNow,
	}
}

// utcNow truncates to microseconds, the finest precision every supported store keeps.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ListTasks returns the tasks matching filter.
func (s *Service) ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	sort, err := domain.ParseSortOrder(string(filter.Sort))
	if err != nil {
		return nil, err
	}
	filter.Sort = sort

	tasks, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, domain.Internal("list tasks", err)
	}
	return tasks, nil
}

// CreateTask validates draft and persists a new task.
func (s *Service) CreateTask(ctx context.Context, draft domain.Draft) (*domain.Task, error) {
	title, _ := draft.Title.Get()
	if title == "" {
		return nil, &domain.ValidationError{Message: domain.MsgTitleRequired}
	}

	var dueDate *time.Time
	if v, ok := draft.DueDate.Get(); ok && v != "" {
		due, err := parseDueDate(v)
		if err != nil {
			return nil, err
		}
		dueDate = &due
	}

	priority := domain.DefaultPriority
	if draft.Priority.Set {
		v, ok := draft.Priority.Get()
		if !ok || !domain.Priority(v).Valid() {
			return nil, domain.InvalidPriorityError()
		}
		priority = domain.Priority(v)
	}

	description, _ := draft.Description.Get()

	var category *string
	if v, ok := draft.Category.Get(); ok {
		category = &v
	}

	now := s.now()
	t := &domain.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    category,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, t)
	})
	if err != nil {
		return nil, domain.Internal("create task", err)
	}

	s.logger.Info("Task created", "id", t.ID, "priority", t.Priority)
	s.publishCreated(t)
	return t, nil
}

// GetTask returns the task with the given ID.
func (s *Service) GetTask(ctx context.Context, id uint) (*domain.Task, error) {
	t, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return nil, domain.Internal("get task", err)
	}
	return t, nil
}

// UpdateTask applies patch to the task with the given ID.
// A missing task is reported before an empty patch.
func (s *Service) UpdateTask(ctx context.Context, id uint, patch domain.Patch) (*domain.Task, error) {
	var updated *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if !patch.HasData {
			return &domain.ValidationError{Message: domain.MsgNoData}
		}
		if err := applyPatch(t, patch); err != nil {
			return err
		}

		// updated_at must advance even when the clock has not.
		now := s.now()
		if !now.After(t.UpdatedAt) {
			now = t.UpdatedAt.Add(time.Microsecond)
		}
		t.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, domain.Internal("update task", err)
	}

	s.logger.Info("Task updated", "id", id, "changed", patch.Changed())
	s.publishUpdated(updated, patch.Changed())
	return updated, nil
}

// applyPatch copies the present fields of patch onto t, validating as it goes.
func applyPatch(t *domain.Task, patch domain.Patch) error {
	if patch.Title.Set {
		v, ok := patch.Title.Get()
		if !ok || v == "" {
			return &domain.ValidationError{Message: domain.MsgTitleEmpty}
		}
		t.Title = v
	}
	if patch.Description.Set {
		t.Description, _ = patch.Description.Get()
	}
	if patch.Completed.Set {
		t.Completed = patch.Completed.Value
	}
	if patch.Priority.Set {
		v, ok := patch.Priority.Get()
		if !ok || !domain.Priority(v).Valid() {
			return domain.InvalidPriorityError()
		}
		t.Priority = domain.Priority(v)
	}
	if patch.Category.Set {
		if v, ok := patch.Category.Get(); ok {
			t.Category = &v
		} else {
			t.Category = nil
		}
	}
	if patch.DueDate.Set {
		if v, ok := patch.DueDate.Get(); ok && v != "" {
			due, err := parseDueDate(v)
			if err != nil {
				return err
			}
			t.DueDate = &due
		} else {
			t.DueDate = nil
		}
	}
	return nil
}

// DeleteTask permanently removes the task with the given ID.
func (s *Service) DeleteTask(ctx context.Context, id uint) error {
	var deleted *domain.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return domain.Internal("delete task", err)
	}

	s.logger.Info("Task deleted", "id", id)
	s.publishDeleted(deleted)
	return nil
}

// Stats computes the task aggregate. Concurrent callers share one computation.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	// The shared computation must not inherit one caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.reads.Do("stats", func() (any, error) {
		return s.computeStats(shared)
	})
	if err != nil {
		return nil, domain.Internal("task stats", err)
	}
	stats := *v.(*domain.Stats)
	stats.PriorityBreakdown = maps.Clone(stats.PriorityBreakdown)
	return &stats, nil
}

func (s *Service) computeStats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{PriorityBreakdown: make(map[domain.Priority]int64, len(domain.Priorities))}
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if stats.TotalTasks, err = s.repo.CountBy(ctx, tx); err != nil {
			return err
		}
		if stats.CompletedTasks, err = s.repo.CountBy(ctx, tx, domain.CompletedIs(true)); err != nil {
			return err
		}
		if stats.OverdueTasks, err = s.repo.CountBy(ctx, tx, domain.OverdueAt(now)); err != nil {
			return err
		}
		for _, p := range domain.Priorities {
			n, err := s.repo.CountBy(ctx, tx, domain.PriorityIs(p))
			if err != nil {
				return err
			}
			stats.PriorityBreakdown[p] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	return stats, nil
}

// Categories returns the distinct non-empty categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.reads.Do("categories", func() (any, error) {
		return s.repo.Categories(shared, s.db)
	})
	if err != nil {
		return nil, domain.Internal("list categories", err)
	}
	return slices.Clone(v.([]string)), nil
}

func parseDueDate(v string) (time.Time, error) {
	due, err := domain.ParseDueDate(v)
	if err != nil {
		return time.Time{}, err
	}
	return due.Truncate(time.Microsecond), nil
}

// Event publishing is best-effort: failures are logged, never returned.

func (s *Service) publishCreated(t *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		EventID:   events.NewEventID(),
		TaskID:    t.ID,
		Title:     t.Title,
		Priority:  string(t.Priority),
		Category:  t.Category,
		CreatedAt: t.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("Failed to publish TaskCreated event", "id", t.ID, "error", err)
	}
}

func (s *Service) publishUpdated(t *domain.Task, changed []string) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskUpdatedEvent{
		EventID:   events.NewEventID(),
		TaskID:    t.ID,
		Changed:   changed,
		Completed: t.Completed,
		UpdatedAt: t.UpdatedAt,
	}
	if err := events.TaskUpdatedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("Failed to publish TaskUpdated event", "id", t.ID, "error", err)
	}
}

func (s *Service) publishDeleted(t *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		EventID:   events.NewEventID(),
		TaskID:    t.ID,
		Title:     t.Title,
		DeletedAt: s.now(),
	}
	if err := events.TaskDeletedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("Failed to publish TaskDeleted event", "id", t.ID, "error", err)
	}
}
