package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskhub/internal/authz"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
}

type TaskService interface {
	Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, id, requesterID int64) (*models.Task, error)
	List(ctx context.Context, ownerID int64) ([]models.Task, error)
	Update(ctx context.Context, id, requesterID int64, changes models.TaskChanges) (*models.Task, error)
	UpdateStatus(ctx context.Context, id, requesterID int64, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type taskService struct {
	store    repositories.Store
	tx       repositories.Transactor
	notifier Notifier
	now      func() time.Time
}

func NewTaskService(store repositories.Store, tx repositories.Transactor, notifier Notifier) TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &taskService{store: store, tx: tx, notifier: notifier, now: time.Now}
}

// denyMessages are the 403 texts per action.
var denyMessages = map[authz.Action]string{
	authz.ActionView:         "Not authorized to access this task",
	authz.ActionUpdate:       "Not authorized to update this task",
	authz.ActionUpdateStatus: "Not authorized to update this task",
	authz.ActionDelete:       "Not authorized to delete this task",
	authz.ActionShare:        "Not authorized to share this task",
	authz.ActionComment:      "Not authorized to comment on this task",
	authz.ActionListComments: "Not authorized to view comments for this task",
}

// authorizeTask loads the task and evaluates authz.TaskPolicy for action.
// The share row is fetched only for non-owners on rules that consult it.
func authorizeTask(ctx context.Context, store repositories.Store, taskID, requesterID int64, action authz.Action) (*models.Task, error) {
	task, err := store.Tasks.FindWithOwner(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "Task not found")
	}

	rule := authz.TaskPolicy.Rule(action)
	var share *models.SharedTask
	if task.OwnerID != requesterID && rule.NeedsShare() {
		share, err = store.Shares.FindByTaskAndUser(ctx, taskID, requesterID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if !rule.Allows(task.OwnerID, requesterID, share) {
		log.Printf("[task][%s][deny] task=%d user=%d", action, taskID, requesterID)
		return nil, forbiddenError(denyMessages[action])
	}
	return task, nil
}

// validateTaskChanges trims and checks a partial update in place.
func validateTaskChanges(changes *models.TaskChanges) error {
	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return validationError("Title cannot be empty")
		}
		changes.Title = &title
	}
	if changes.Priority != nil && !changes.Priority.Valid() {
		return validationError("Invalid priority")
	}
	if changes.Status != nil && !changes.Status.Valid() {
		return validationError("Invalid status")
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("Please add a title")
	}
	task := &models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, validationError("Invalid priority")
		}
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, validationError("Invalid status")
		}
		task.Status = *in.Status
	}

	var queued []models.Notification
	err := s.tx.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks.Store(ctx, task); err != nil {
			return err
		}
		if dueSoon(task.DueDate, s.now()) {
			n, err := enqueue(ctx, tx, ownerID, models.NotificationDueDate, dueSoonMessage(task))
			if err != nil {
				return err
			}
			queued = append(queued, *n)
		}
		return nil
	})
	if err != nil {
		log.Printf("[task][create][err] owner=%d: %v", ownerID, err)
		return nil, err
	}
	log.Printf("[task][create][ok] id=%d owner=%d notified=%d", task.ID, ownerID, len(queued))
	s.notifier.Notify(ctx, queued...)
	return task, nil
}

func (s *taskService) Get(ctx context.Context, id, requesterID int64) (*models.Task, error) {
	task, err := authorizeTask(ctx, s.store, id, requesterID, authz.ActionView)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.ListByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Comments = comments
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID int64) ([]models.Task, error) {
	return s.store.Tasks.ListByOwner(ctx, ownerID)
}

// applyUpdate persists changes and restores the owner summary the RETURNING row lacks.
func applyUpdate(ctx context.Context, store repositories.Store, task *models.Task, changes models.TaskChanges) (*models.Task, error) {
	updated, err := store.Tasks.Update(ctx, task.ID, changes)
	if err != nil {
		return nil, notFoundOr(err, "Task not found")
	}
	updated.Owner = task.Owner
	return updated, nil
}

func (s *taskService) Update(ctx context.Context, id, requesterID int64, changes models.TaskChanges) (*models.Task, error) {
	task, err := authorizeTask(ctx, s.store, id, requesterID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := validateTaskChanges(&changes); err != nil {
		return nil, err
	}
	updated, err := applyUpdate(ctx, s.store, task, changes)
	if err != nil {
		return nil, err
	}
	log.Printf("[task][update][ok] id=%d by=%d", id, requesterID)
	return updated, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id, requesterID int64, status models.TaskStatus) (*models.Task, error) {
	task, err := authorizeTask(ctx, s.store, id, requesterID, authz.ActionUpdateStatus)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, validationError("Status is required")
	}
	if !status.Valid() {
		return nil, validationError("Invalid status")
	}
	updated, err := applyUpdate(ctx, s.store, task, models.TaskChanges{Status: &status})
	if err != nil {
		return nil, err
	}
	log.Printf("[task][status][ok] id=%d status=%s by=%d", id, status, requesterID)
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, id, requesterID int64) error {
	if _, err := authorizeTask(ctx, s.store, id, requesterID, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.store.Tasks.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Task not found")
	}
	log.Printf("[task][delete][ok] id=%d by=%d", id, requesterID)
	return nil
}
