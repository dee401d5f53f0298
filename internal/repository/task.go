package repository

import (
	"context"
	"time"

	"github.com/azamatb/todo-tracker/internal/domain"
)

type ListTasksInput struct {
	OwnerID   string
	Completed *bool           // nil = both
	Priority  domain.Priority // empty = all priorities
	Category  string          // empty = all categories
	Search    string          // free-text match against title+description
	SortBy    string          // whitelisted column, defaults to created_at
	SortOrder string          // "asc" or "desc", defaults to desc
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *domain.Priority
	DueDate     *time.Time
	ClearDue    bool // Due date explicitly set to null
	Category    *string
	Tags        []string // nil = untouched
}

// Every method here is scoped by owner: a task owned by another user is
// indistinguishable from a missing one and surfaces as ErrTaskNotFound.
// UseCase depends on the interface so tests can pass a fake.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error)
	Update(ctx context.Context, id, ownerID string, patch UpdateTaskInput) (*domain.Task, error)
	ToggleCompleted(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// Delete removes the task and returns its last state.
	Delete(ctx context.Context, id, ownerID string) (*domain.Task, error)

	// Aggregations for the stats summary.
	CompletionCounts(ctx context.Context, ownerID string) (total, completed int, err error)
	PriorityCounts(ctx context.Context, ownerID string) ([]domain.PriorityCount, error)
	// CategoryCounts returns the limit largest categories, count
	// descending, ties broken by category name ascending.
	CategoryCounts(ctx context.Context, ownerID string, limit int) ([]domain.CategoryCount, error)

	// DueSoon returns incomplete tasks due within [from, to] inclusive.
	DueSoon(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Task, error)
}
