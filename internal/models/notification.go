package models

import "time"

type NotificationType string

const (
	NotificationDueDate    NotificationType = "due-date"
	NotificationSharedTask NotificationType = "shared-task"
	NotificationComment    NotificationType = "comment"
)

type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
