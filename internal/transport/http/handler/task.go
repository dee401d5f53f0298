package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/transport/http/middleware"
	"github.com/azamatb/todo-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
)

// taskUsecaser is the subset of TaskUsecase the handler needs.
type taskUsecaser interface {
	CreateTask(ctx context.Context, ownerID string, input usecase.CreateTaskInput) (*domain.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID string, input usecase.ListTasksInput) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, id, ownerID string, input usecase.UpdateTaskInput) (*domain.Task, error)
	ToggleCompleted(ctx context.Context, id, ownerID string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Summary(ctx context.Context, ownerID string) (*domain.Stats, error)
	DueSoon(ctx context.Context, ownerID string) ([]*domain.Task, error)
}

type TaskHandler struct {
	taskUsecase taskUsecaser
	logger      *slog.Logger
	debug       bool
}

func NewTaskHandler(taskUsecase taskUsecaser, logger *slog.Logger, debug bool) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		logger:      logger.With("component", "task_handler"),
		debug:       debug,
	}
}

type taskPayload struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Completed    bool            `json:"completed"`
	Priority     domain.Priority `json:"priority"`
	DueDate      *time.Time      `json:"dueDate"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	User         string          `json:"user"`
	DaysUntilDue *int            `json:"daysUntilDue"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toTaskPayload(t *domain.Task) taskPayload {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskPayload{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		Category:     t.Category,
		Tags:         tags,
		User:         t.OwnerID,
		DaysUntilDue: t.DaysUntilDue(time.Now()),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTaskPayloads(tasks []*domain.Task) []taskPayload {
	out := make([]taskPayload, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskPayload(t))
	}
	return out
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
}

// nullableTime distinguishes an absent dueDate (leave untouched) from
// an explicit null (clear the deadline) in partial updates.
type nullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *nullableTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Completed   *bool        `json:"completed"`
	Priority    *string      `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     nullableTime `json:"dueDate"`
	Category    *string      `json:"category"`
	Tags        []string     `json:"tags"`
}

// GET /api/todos
func (h *TaskHandler) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	input := usecase.ListTasksInput{
		Priority:  c.Query("priority"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("completed must be true or false", nil, false))
			return
		}
		input.Completed = &completed
	}

	tasks, err := h.taskUsecase.ListTasks(c.Request.Context(), user.ID, input)
	if err != nil {
		h.logError(c, "list tasks", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(tasks),
		"data":    toTaskPayloads(tasks),
	})
}

// GET /api/todos/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	task, err := h.taskUsecase.GetByID(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.logError(c, "get task", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toTaskPayload(task)})
}

// POST /api/todos
func (h *TaskHandler) Create(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body", err, h.debug))
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), user.ID, usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     req.DueDate,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logError(c, "create task", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task created",
		"data":    toTaskPayload(task),
	})
}

// PUT /api/todos/:id
func (h *TaskHandler) Update(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body", err, h.debug))
		return
	}

	input := usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if req.DueDate.Set {
		if req.DueDate.Value == nil {
			input.ClearDue = true
		} else {
			input.DueDate = req.DueDate.Value
		}
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), c.Param("id"), user.ID, input)
	if err != nil {
		h.logError(c, "update task", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated",
		"data":    toTaskPayload(task),
	})
}

// PATCH /api/todos/:id/toggle
func (h *TaskHandler) Toggle(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	task, err := h.taskUsecase.ToggleCompleted(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.logError(c, "toggle task", err)
		writeError(c, err, h.debug)
		return
	}

	message := "Task marked incomplete"
	if task.Completed {
		message = "Task marked complete"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    toTaskPayload(task),
	})
}

// DELETE /api/todos/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	task, err := h.taskUsecase.DeleteTask(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.logError(c, "delete task", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
		"data":    toTaskPayload(task),
	})
}

// GET /api/todos/stats/summary
func (h *TaskHandler) Summary(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	stats, err := h.taskUsecase.Summary(c.Request.Context(), user.ID)
	if err != nil {
		h.logError(c, "task summary", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GET /api/todos/due-soon
func (h *TaskHandler) DueSoon(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	tasks, err := h.taskUsecase.DueSoon(c.Request.Context(), user.ID)
	if err != nil {
		h.logError(c, "due soon", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(tasks),
		"data":    toTaskPayloads(tasks),
	})
}

func (h *TaskHandler) logError(c *gin.Context, op string, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) || errors.Is(err, domain.ErrTaskNotFound) {
		return
	}
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
}
