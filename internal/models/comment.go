package models

import "time"

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	TaskID    int64     `json:"taskId" db:"task_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author *UserSummary `json:"author,omitempty" db:"-"`
}
