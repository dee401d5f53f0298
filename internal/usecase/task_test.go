package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/repository"
	"github.com/azamatb/todo-tracker/internal/usecase"
)

// ---- fake ----

type fakeTaskRepo struct {
	create           func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	getByID          func(ctx context.Context, id, ownerID string) (*domain.Task, error)
	list             func(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, error)
	update           func(ctx context.Context, id, ownerID string, patch repository.UpdateTaskInput) (*domain.Task, error)
	toggleCompleted  func(ctx context.Context, id, ownerID string) (*domain.Task, error)
	deleteTask       func(ctx context.Context, id, ownerID string) (*domain.Task, error)
	completionCounts func(ctx context.Context, ownerID string) (int, int, error)
	priorityCounts   func(ctx context.Context, ownerID string) ([]domain.PriorityCount, error)
	categoryCounts   func(ctx context.Context, ownerID string, limit int) ([]domain.CategoryCount, error)
	dueSoon          func(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Task, error)
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return r.create(ctx, task)
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return r.getByID(ctx, id, ownerID)
}

func (r *fakeTaskRepo) List(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, error) {
	return r.list(ctx, input)
}

func (r *fakeTaskRepo) Update(ctx context.Context, id, ownerID string, patch repository.UpdateTaskInput) (*domain.Task, error) {
	return r.update(ctx, id, ownerID, patch)
}

func (r *fakeTaskRepo) ToggleCompleted(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return r.toggleCompleted(ctx, id, ownerID)
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return r.deleteTask(ctx, id, ownerID)
}

func (r *fakeTaskRepo) CompletionCounts(ctx context.Context, ownerID string) (int, int, error) {
	return r.completionCounts(ctx, ownerID)
}

func (r *fakeTaskRepo) PriorityCounts(ctx context.Context, ownerID string) ([]domain.PriorityCount, error) {
	return r.priorityCounts(ctx, ownerID)
}

func (r *fakeTaskRepo) CategoryCounts(ctx context.Context, ownerID string, limit int) ([]domain.CategoryCount, error) {
	return r.categoryCounts(ctx, ownerID, limit)
}

func (r *fakeTaskRepo) DueSoon(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Task, error) {
	return r.dueSoon(ctx, ownerID, from, to)
}

// echoCreate persists nothing and returns the task as-is, the way the
// store would after assigning an ID.
func echoCreate(captured **domain.Task) func(context.Context, *domain.Task) (*domain.Task, error) {
	return func(_ context.Context, task *domain.Task) (*domain.Task, error) {
		*captured = task
		out := *task
		out.ID = "task-1"
		return &out, nil
	}
}

// ---- CreateTask ----

func TestCreateTask_BlankTitle_RejectedWithoutPersisting(t *testing.T) {
	repo := &fakeTaskRepo{
		create: func(_ context.Context, _ *domain.Task) (*domain.Task, error) {
			t.Fatal("create must not be called")
			return nil, nil
		},
	}
	uc := usecase.NewTaskUsecase(repo)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := uc.CreateTask(context.Background(), "owner-1", usecase.CreateTaskInput{Title: title})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("title %q: want ValidationError, got %v", title, err)
		}
	}
}

func TestCreateTask_AppliesDefaults(t *testing.T) {
	var captured *domain.Task
	repo := &fakeTaskRepo{create: echoCreate(&captured)}

	task, err := usecase.NewTaskUsecase(repo).CreateTask(context.Background(), "owner-1",
		usecase.CreateTaskInput{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Title != "Buy milk" {
		t.Errorf("title = %q, want trimmed", task.Title)
	}
	if task.Completed {
		t.Error("new task must start incomplete")
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.Tags == nil || len(task.Tags) != 0 {
		t.Errorf("tags = %v, want empty slice", task.Tags)
	}
	if task.DueDate != nil {
		t.Errorf("dueDate = %v, want nil", task.DueDate)
	}
}

func TestCreateTask_OwnerForcedFromCaller(t *testing.T) {
	var captured *domain.Task
	repo := &fakeTaskRepo{create: echoCreate(&captured)}

	_, err := usecase.NewTaskUsecase(repo).CreateTask(context.Background(), "caller-id",
		usecase.CreateTaskInput{Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.OwnerID != "caller-id" {
		t.Errorf("ownerID = %q, want caller-id", captured.OwnerID)
	}
}

func TestCreateTask_FieldLimits(t *testing.T) {
	repo := &fakeTaskRepo{
		create: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			return task, nil
		},
	}
	uc := usecase.NewTaskUsecase(repo)

	cases := []struct {
		name  string
		input usecase.CreateTaskInput
	}{
		{"title too long", usecase.CreateTaskInput{Title: strings.Repeat("a", 101)}},
		{"multibyte title too long", usecase.CreateTaskInput{Title: strings.Repeat("한", 101)}},
		{"description too long", usecase.CreateTaskInput{Title: "x", Description: strings.Repeat("a", 501)}},
		{"category too long", usecase.CreateTaskInput{Title: "x", Category: strings.Repeat("a", 51)}},
		{"tag too long", usecase.CreateTaskInput{Title: "x", Tags: []string{strings.Repeat("a", 21)}}},
		{"bad priority", usecase.CreateTaskInput{Title: "x", Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateTask(context.Background(), "owner-1", tc.input)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("want ValidationError, got %v", err)
			}
		})
	}
}

// Limits are in characters. A 100-rune Hangul title is 300 bytes and
// must still be accepted.
func TestCreateTask_MultibyteFieldsWithinLimits(t *testing.T) {
	repo := &fakeTaskRepo{
		create: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			return task, nil
		},
	}

	task, err := usecase.NewTaskUsecase(repo).CreateTask(context.Background(), "owner-1",
		usecase.CreateTaskInput{
			Title:    strings.Repeat("한", 100),
			Category: strings.Repeat("글", 50),
			Tags:     []string{strings.Repeat("가", 20)},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != strings.Repeat("한", 100) {
		t.Error("multibyte title altered on the way to the store")
	}
}

// ---- ListTasks ----

func TestListTasks_NormalizesSortParams(t *testing.T) {
	var captured repository.ListTasksInput
	repo := &fakeTaskRepo{
		list: func(_ context.Context, input repository.ListTasksInput) ([]*domain.Task, error) {
			captured = input
			return nil, nil
		},
	}
	uc := usecase.NewTaskUsecase(repo)

	_, err := uc.ListTasks(context.Background(), "owner-1", usecase.ListTasksInput{
		SortBy:    "dueDate",
		SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.SortBy != "due_date" {
		t.Errorf("sortBy = %q, want due_date", captured.SortBy)
	}
	if captured.SortOrder != "asc" {
		t.Errorf("sortOrder = %q, want asc", captured.SortOrder)
	}
	if captured.OwnerID != "owner-1" {
		t.Errorf("ownerID = %q, want owner-1", captured.OwnerID)
	}
}

func TestListTasks_DefaultsToCreationTimeDescending(t *testing.T) {
	var captured repository.ListTasksInput
	repo := &fakeTaskRepo{
		list: func(_ context.Context, input repository.ListTasksInput) ([]*domain.Task, error) {
			captured = input
			return nil, nil
		},
	}

	_, err := usecase.NewTaskUsecase(repo).ListTasks(context.Background(), "owner-1", usecase.ListTasksInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.SortBy != "created_at" || captured.SortOrder != "desc" {
		t.Errorf("default sort = %s %s, want created_at desc", captured.SortBy, captured.SortOrder)
	}
}

func TestListTasks_InvalidPriorityFilter_Rejected(t *testing.T) {
	repo := &fakeTaskRepo{
		list: func(_ context.Context, _ repository.ListTasksInput) ([]*domain.Task, error) {
			t.Fatal("list must not be called")
			return nil, nil
		},
	}

	_, err := usecase.NewTaskUsecase(repo).ListTasks(context.Background(), "owner-1",
		usecase.ListTasksInput{Priority: "urgent"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("want ValidationError, got %v", err)
	}
}

// ---- UpdateTask ----

func TestUpdateTask_OnlySuppliedFieldsReachTheStore(t *testing.T) {
	var captured repository.UpdateTaskInput
	repo := &fakeTaskRepo{
		update: func(_ context.Context, _, _ string, patch repository.UpdateTaskInput) (*domain.Task, error) {
			captured = patch
			return &domain.Task{}, nil
		},
	}

	title := "  New title  "
	_, err := usecase.NewTaskUsecase(repo).UpdateTask(context.Background(), "task-1", "owner-1",
		usecase.UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Title == nil || *captured.Title != "New title" {
		t.Errorf("title = %v, want trimmed %q", captured.Title, "New title")
	}
	if captured.Description != nil || captured.Completed != nil || captured.Priority != nil ||
		captured.DueDate != nil || captured.Category != nil || captured.Tags != nil {
		t.Error("untouched fields must stay nil in the patch")
	}
}

func TestUpdateTask_MultibyteTitleWithinLimit(t *testing.T) {
	repo := &fakeTaskRepo{
		update: func(_ context.Context, _, _ string, patch repository.UpdateTaskInput) (*domain.Task, error) {
			return &domain.Task{Title: *patch.Title}, nil
		},
	}

	title := strings.Repeat("한", 100)
	task, err := usecase.NewTaskUsecase(repo).UpdateTask(context.Background(), "task-1", "owner-1",
		usecase.UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != title {
		t.Error("multibyte title altered")
	}
}

func TestUpdateTask_BlankTitle_Rejected(t *testing.T) {
	repo := &fakeTaskRepo{
		update: func(_ context.Context, _, _ string, _ repository.UpdateTaskInput) (*domain.Task, error) {
			t.Fatal("update must not be called")
			return nil, nil
		},
	}

	blank := "   "
	_, err := usecase.NewTaskUsecase(repo).UpdateTask(context.Background(), "task-1", "owner-1",
		usecase.UpdateTaskInput{Title: &blank})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("want ValidationError, got %v", err)
	}
}

// An empty patch still goes through Update so updated_at is refreshed
// and the "updated" response stays truthful.
func TestUpdateTask_EmptyPatch_StillWrites(t *testing.T) {
	wrote := false
	repo := &fakeTaskRepo{
		update: func(_ context.Context, id, ownerID string, patch repository.UpdateTaskInput) (*domain.Task, error) {
			wrote = true
			if patch.Title != nil || patch.Description != nil || patch.Completed != nil ||
				patch.Priority != nil || patch.DueDate != nil || patch.ClearDue ||
				patch.Category != nil || patch.Tags != nil {
				t.Errorf("empty patch must reach the store empty: %+v", patch)
			}
			return &domain.Task{ID: id, OwnerID: ownerID}, nil
		},
	}

	_, err := usecase.NewTaskUsecase(repo).UpdateTask(context.Background(), "task-1", "owner-1",
		usecase.UpdateTaskInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wrote {
		t.Error("expected Update to run for an empty patch")
	}
}

func TestUpdateTask_NotFoundPropagates(t *testing.T) {
	repo := &fakeTaskRepo{
		update: func(_ context.Context, _, _ string, _ repository.UpdateTaskInput) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}

	done := true
	_, err := usecase.NewTaskUsecase(repo).UpdateTask(context.Background(), "task-1", "intruder",
		usecase.UpdateTaskInput{Completed: &done})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("want ErrTaskNotFound, got %v", err)
	}
}

// ---- ToggleCompleted ----

func TestToggleCompleted_IsInvolutive(t *testing.T) {
	state := &domain.Task{ID: "task-1", OwnerID: "owner-1", Completed: false}
	repo := &fakeTaskRepo{
		toggleCompleted: func(_ context.Context, _, _ string) (*domain.Task, error) {
			state.Completed = !state.Completed
			out := *state
			return &out, nil
		},
	}
	uc := usecase.NewTaskUsecase(repo)

	first, err := uc.ToggleCompleted(context.Background(), "task-1", "owner-1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Completed {
		t.Error("first toggle should complete the task")
	}

	second, err := uc.ToggleCompleted(context.Background(), "task-1", "owner-1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Completed {
		t.Error("second toggle should restore the original state")
	}
}

// ---- Summary ----

func TestSummary_TotalsAddUp(t *testing.T) {
	repo := &fakeTaskRepo{
		completionCounts: func(_ context.Context, _ string) (int, int, error) { return 7, 3, nil },
		priorityCounts: func(_ context.Context, _ string) ([]domain.PriorityCount, error) {
			return []domain.PriorityCount{{Priority: domain.PriorityHigh, Count: 2}, {Priority: domain.PriorityMedium, Count: 5}}, nil
		},
		categoryCounts: func(_ context.Context, _ string, _ int) ([]domain.CategoryCount, error) {
			return []domain.CategoryCount{{Category: "work", Count: 4}}, nil
		},
	}

	stats, err := usecase.NewTaskUsecase(repo).Summary(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Total != stats.Completed+stats.Incomplete {
		t.Errorf("total %d != completed %d + incomplete %d", stats.Total, stats.Completed, stats.Incomplete)
	}
	if stats.CompletionRate != 43 { // round(3/7*100)
		t.Errorf("completionRate = %d, want 43", stats.CompletionRate)
	}
}

func TestSummary_ZeroTasks(t *testing.T) {
	repo := &fakeTaskRepo{
		completionCounts: func(_ context.Context, _ string) (int, int, error) { return 0, 0, nil },
		priorityCounts: func(_ context.Context, _ string) ([]domain.PriorityCount, error) {
			return nil, nil
		},
		categoryCounts: func(_ context.Context, _ string, _ int) ([]domain.CategoryCount, error) {
			return nil, nil
		},
	}

	stats, err := usecase.NewTaskUsecase(repo).Summary(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("completionRate = %d, want 0 for empty store", stats.CompletionRate)
	}
	if stats.PriorityBreakdown == nil || stats.CategoryBreakdown == nil {
		t.Error("breakdowns must be empty slices, not nil")
	}
}

func TestSummary_CategoryBreakdownLimitedToTen(t *testing.T) {
	var capturedLimit int
	repo := &fakeTaskRepo{
		completionCounts: func(_ context.Context, _ string) (int, int, error) { return 0, 0, nil },
		priorityCounts: func(_ context.Context, _ string) ([]domain.PriorityCount, error) {
			return nil, nil
		},
		categoryCounts: func(_ context.Context, _ string, limit int) ([]domain.CategoryCount, error) {
			capturedLimit = limit
			return nil, nil
		},
	}

	if _, err := usecase.NewTaskUsecase(repo).Summary(context.Background(), "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedLimit != 10 {
		t.Errorf("category limit = %d, want 10", capturedLimit)
	}
}

// ---- DueSoon ----

func TestDueSoon_UsesThreeDayInclusiveWindow(t *testing.T) {
	var from, to time.Time
	repo := &fakeTaskRepo{
		dueSoon: func(_ context.Context, _ string, f, u time.Time) ([]*domain.Task, error) {
			from, to = f, u
			return nil, nil
		},
	}

	before := time.Now()
	if _, err := usecase.NewTaskUsecase(repo).DueSoon(context.Background(), "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now()

	if from.Before(before) || from.After(after) {
		t.Errorf("window start %v not at now", from)
	}
	if got := to.Sub(from); got != domain.DueSoonWindow {
		t.Errorf("window length = %v, want %v", got, domain.DueSoonWindow)
	}
}
