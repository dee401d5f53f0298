package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	CategoryMaxLen    = 50
	TagMaxLen         = 20

	// DueSoonWindow is the inclusive lookahead for upcoming deadlines.
	DueSoonWindow = 72 * time.Hour
)

type Task struct {
	ID          string
	OwnerID     string // set at creation, never reassigned
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time // nil means no deadline
	Category    string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DaysUntilDue reports whole days left until the deadline, rounding up.
// Returns nil when no due date is set; negative values mean overdue.
func (t *Task) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(math.Ceil(t.DueDate.Sub(now).Hours() / 24))
	return &days
}

// Stats is the per-user aggregate returned by the summary endpoint.
type Stats struct {
	Total             int                `json:"total"`
	Completed         int                `json:"completed"`
	Incomplete        int                `json:"incomplete"`
	CompletionRate    int                `json:"completionRate"`
	PriorityBreakdown []PriorityCount    `json:"priorityBreakdown"`
	CategoryBreakdown []CategoryCount    `json:"categoryBreakdown"`
}

type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ValidationError reports a rejected input field. Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
