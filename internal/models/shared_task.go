package models

import "time"

type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// SharedTask grants a non-owner access to a task.
type SharedTask struct {
	ID         int64      `json:"id" db:"id"`
	TaskID     int64      `json:"taskId" db:"task_id"`
	UserID     int64      `json:"userId" db:"user_id"`
	Permission Permission `json:"permission" db:"permission"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`

	Task *Task `json:"task,omitempty" db:"-"`
}
