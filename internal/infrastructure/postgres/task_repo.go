package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, owner_id, title, description, completed, priority,
	due_date, category, tags, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	query := `
		INSERT INTO tasks (owner_id, title, description, completed, priority, due_date, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.Category,
		task.Tags,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *TaskRepository) List(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, error) {
	args := []any{input.OwnerID}
	where := []string{"owner_id = $1"}

	if input.Completed != nil {
		args = append(args, *input.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	if input.Priority != "" {
		args = append(args, input.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if input.Category != "" {
		args = append(args, input.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if input.Search != "" {
		args = append(args, escapeLike(input.Search))
		where = append(where, fmt.Sprintf(
			"(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			len(args), len(args)))
	}

	query := fmt.Sprintf(`SELECT `+taskColumns+` FROM tasks WHERE %s ORDER BY %s %s, id %s`,
		strings.Join(where, " AND "), sortColumn(input.SortBy), sortDirection(input.SortOrder),
		sortDirection(input.SortOrder))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) Update(ctx context.Context, id, ownerID string, patch repository.UpdateTaskInput) (*domain.Task, error) {
	set := []string{"updated_at = NOW()"}
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.ClearDue {
		set = append(set, "due_date = NULL")
	} else if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Tags != nil {
		add("tags", patch.Tags)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND owner_id = $%d RETURNING `+taskColumns,
		strings.Join(set, ", "), len(args)-1, len(args))

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *TaskRepository) ToggleCompleted(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	query := `
		UPDATE tasks
		SET    completed  = NOT completed,
		       updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *TaskRepository) CompletionCounts(ctx context.Context, ownerID string) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM tasks
		WHERE owner_id = $1`

	var total, completed int
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("completion counts: %w", err)
	}
	return total, completed, nil
}

func (r *TaskRepository) PriorityCounts(ctx context.Context, ownerID string) ([]domain.PriorityCount, error) {
	query := `
		SELECT priority, COUNT(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY priority
		ORDER BY priority`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("priority counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.PriorityCount
	for rows.Next() {
		var c domain.PriorityCount
		if err := rows.Scan(&c.Priority, &c.Count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *TaskRepository) CategoryCounts(ctx context.Context, ownerID string, limit int) ([]domain.CategoryCount, error) {
	// Name tiebreak keeps equal-count orderings reproducible.
	query := `
		SELECT category, COUNT(*) AS cnt
		FROM tasks
		WHERE owner_id = $1 AND category <> ''
		GROUP BY category
		ORDER BY cnt DESC, category ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *TaskRepository) DueSoon(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id  = $1
		  AND completed = FALSE
		  AND due_date  IS NOT NULL
		  AND due_date >= $2
		  AND due_date <= $3
		ORDER BY due_date ASC`

	rows, err := r.pool.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("due soon: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally instead of acting as a pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// sortColumn whitelists ORDER BY targets; anything unknown falls back
// to creation time so client input never reaches the SQL text.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "due_date", "priority", "title", "updated_at":
		return sortBy
	default:
		return "created_at"
	}
}

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.Priority,
		&t.DueDate, &t.Category, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
