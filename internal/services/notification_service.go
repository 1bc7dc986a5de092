package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

// dueSoonDays is the window, in whole days, for the due-date notification.
const dueSoonDays = 3

// Notifier pushes committed outbox rows to an external channel.
// Delivery is best-effort: implementations log failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, notifications ...models.Notification)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ...models.Notification) {}

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type notificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.Printf("[notification][mark-read][ok] user=%d updated=%d", userID, n)
	return n, nil
}

// enqueue appends a notification through store. Callers pass a transactional store
// so the row commits or rolls back together with the mutation that caused it.
func enqueue(ctx context.Context, store repositories.Store, userID int64, typ models.NotificationType, message string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	if err := store.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("enqueue %s notification: %w", typ, err)
	}
	return n, nil
}

// dueSoon reports whether due falls within the notification window.
// The day difference truncates toward zero, so past dates qualify too.
func dueSoon(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	days := int(due.Sub(now).Hours() / 24)
	return days <= dueSoonDays
}

func dueSoonMessage(task *models.Task) string {
	return fmt.Sprintf("Task \"%s\" is due soon (%s)", task.Title, humanDate(*task.DueDate))
}

// humanDate renders t as "Mar 3rd 2025".
func humanDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%s %d%s %d", t.Format("Jan"), day, suffix, t.Year())
}

func sharedTaskMessage(owner string, task *models.Task) string {
	return fmt.Sprintf("%s shared a task \"%s\" with you", owner, task.Title)
}

func commentMessage(author string, task *models.Task) string {
	return fmt.Sprintf("%s commented on your task \"%s\"", author, task.Title)
}
