// internal/models/task.go
package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64        `json:"id" db:"id"`
	OwnerID     int64        `json:"ownerId" db:"owner_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	DueDate     *time.Time   `json:"dueDate" db:"due_date"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Status      TaskStatus   `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	Owner    *UserSummary `json:"owner,omitempty" db:"-"`
	Comments []Comment    `json:"comments,omitempty" db:"-"`
}

// TaskChanges is a partial update; nil fields are left untouched.
// ClearDueDate wins over DueDate.
type TaskChanges struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *TaskPriority
	Status       *TaskStatus
}

func (c TaskChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.DueDate == nil && !c.ClearDueDate &&
		c.Priority == nil && c.Status == nil
}
