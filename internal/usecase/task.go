package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/repository"
)

const categoryBreakdownLimit = 10

type TaskUsecase struct {
	tasks repository.TaskRepository
}

func NewTaskUsecase(tasks repository.TaskRepository) *TaskUsecase {
	return &TaskUsecase{tasks: tasks}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	Category    string
	Tags        []string
}

// CreateTask validates and persists a new task. The owner always comes
// from the authenticated caller, never from client input.
func (u *TaskUsecase) CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if err := validateTaskFields(title, input.Description, input.Category, input.Tags); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &domain.ValidationError{Field: "priority", Message: "priority must be low, medium or high"}
	}

	tags := trimTags(input.Tags)
	if tags == nil {
		tags = []string{}
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Completed:   false,
		Priority:    priority,
		DueDate:     input.DueDate,
		Category:    strings.TrimSpace(input.Category),
		Tags:        tags,
	}

	created, err := u.tasks.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (u *TaskUsecase) GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return u.tasks.GetByID(ctx, id, ownerID)
}

type ListTasksInput struct {
	Completed *bool
	Priority  string
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// ListTasks applies the conjunctive filters scoped to the owner. Sort
// parameters arrive in API form (camelCase) and are normalized here.
func (u *TaskUsecase) ListTasks(ctx context.Context, ownerID string, input ListTasksInput) ([]*domain.Task, error) {
	if input.Priority != "" && !domain.Priority(input.Priority).Valid() {
		return nil, &domain.ValidationError{Field: "priority", Message: "priority must be low, medium or high"}
	}

	return u.tasks.List(ctx, repository.ListTasksInput{
		OwnerID:   ownerID,
		Completed: input.Completed,
		Priority:  domain.Priority(input.Priority),
		Category:  input.Category,
		Search:    strings.TrimSpace(input.Search),
		SortBy:    normalizeSortBy(input.SortBy),
		SortOrder: normalizeSortOrder(input.SortOrder),
	})
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
	Category    *string
	Tags        []string
}

// UpdateTask applies a partial update: only fields present in the input
// change, and creation-time validation applies to each replaced field.
func (u *TaskUsecase) UpdateTask(ctx context.Context, id, ownerID string, input UpdateTaskInput) (*domain.Task, error) {
	patch := repository.UpdateTaskInput{
		Completed: input.Completed,
		DueDate:   input.DueDate,
		ClearDue:  input.ClearDue,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
		}
		if utf8.RuneCountInString(title) > domain.TitleMaxLen {
			return nil, &domain.ValidationError{Field: "title", Message: "title must be at most 100 characters"}
		}
		patch.Title = &title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(desc) > domain.DescriptionMaxLen {
			return nil, &domain.ValidationError{Field: "description", Message: "description must be at most 500 characters"}
		}
		patch.Description = &desc
	}
	if input.Priority != nil {
		priority := domain.Priority(*input.Priority)
		if !priority.Valid() {
			return nil, &domain.ValidationError{Field: "priority", Message: "priority must be low, medium or high"}
		}
		patch.Priority = &priority
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if utf8.RuneCountInString(category) > domain.CategoryMaxLen {
			return nil, &domain.ValidationError{Field: "category", Message: "category must be at most 50 characters"}
		}
		patch.Category = &category
	}
	if input.Tags != nil {
		tags := trimTags(input.Tags)
		for _, tag := range tags {
			if utf8.RuneCountInString(tag) > domain.TagMaxLen {
				return nil, &domain.ValidationError{Field: "tags", Message: "each tag must be at most 20 characters"}
			}
		}
		patch.Tags = tags
	}

	// An all-absent patch still runs: it refreshes updated_at, so the
	// "updated" response stays accurate, and missing IDs still 404.
	return u.tasks.Update(ctx, id, ownerID, patch)
}

// ToggleCompleted flips the completion flag. Applying it twice returns
// the task to its original state.
func (u *TaskUsecase) ToggleCompleted(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return u.tasks.ToggleCompleted(ctx, id, ownerID)
}

func (u *TaskUsecase) DeleteTask(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return u.tasks.Delete(ctx, id, ownerID)
}

// Summary assembles the per-user aggregate stats.
func (u *TaskUsecase) Summary(ctx context.Context, ownerID string) (*domain.Stats, error) {
	total, completed, err := u.tasks.CompletionCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("completion counts: %w", err)
	}

	priorities, err := u.tasks.PriorityCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("priority counts: %w", err)
	}

	categories, err := u.tasks.CategoryCounts(ctx, ownerID, categoryBreakdownLimit)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}

	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}

	if priorities == nil {
		priorities = []domain.PriorityCount{}
	}
	if categories == nil {
		categories = []domain.CategoryCount{}
	}

	return &domain.Stats{
		Total:             total,
		Completed:         completed,
		Incomplete:        total - completed,
		CompletionRate:    rate,
		PriorityBreakdown: priorities,
		CategoryBreakdown: categories,
	}, nil
}

// DueSoon returns incomplete tasks due within the next three days.
func (u *TaskUsecase) DueSoon(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	now := time.Now()
	return u.tasks.DueSoon(ctx, ownerID, now, now.Add(domain.DueSoonWindow))
}

// Field limits count characters, not bytes: a 100-rune multibyte title
// is within bounds even at 300 bytes.
func validateTaskFields(title, description, category string, tags []string) error {
	if utf8.RuneCountInString(title) > domain.TitleMaxLen {
		return &domain.ValidationError{Field: "title", Message: "title must be at most 100 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) > domain.DescriptionMaxLen {
		return &domain.ValidationError{Field: "description", Message: "description must be at most 500 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(category)) > domain.CategoryMaxLen {
		return &domain.ValidationError{Field: "category", Message: "category must be at most 50 characters"}
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(strings.TrimSpace(tag)) > domain.TagMaxLen {
			return &domain.ValidationError{Field: "tags", Message: "each tag must be at most 20 characters"}
		}
	}
	return nil
}

func trimTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, strings.TrimSpace(tag))
	}
	return out
}

func normalizeSortBy(sortBy string) string {
	switch sortBy {
	case "dueDate":
		return "due_date"
	case "createdAt", "":
		return "created_at"
	case "updatedAt":
		return "updated_at"
	default:
		return sortBy // repository whitelists the rest
	}
}

func normalizeSortOrder(order string) string {
	if order == "asc" {
		return "asc"
	}
	return "desc"
}
