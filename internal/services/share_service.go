package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"taskhub/internal/authz"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

type ShareService interface {
	Share(ctx context.Context, taskID, requesterID, targetUserID int64, permission string) (*models.SharedTask, error)
	ListForUser(ctx context.Context, userID int64) ([]models.SharedTask, error)
	UpdateViaShare(ctx context.Context, shareID, requesterID int64, changes models.TaskChanges) (*models.Task, error)
	Remove(ctx context.Context, shareID, requesterID int64) error
}

type shareService struct {
	store    repositories.Store
	tx       repositories.Transactor
	notifier Notifier
}

func NewShareService(store repositories.Store, tx repositories.Transactor, notifier Notifier) ShareService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &shareService{store: store, tx: tx, notifier: notifier}
}

func parsePermission(raw string) (models.Permission, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.PermissionView, nil
	}
	p := models.Permission(raw)
	if !p.Valid() {
		return "", validationError("Invalid permission")
	}
	return p, nil
}

func (s *shareService) Share(ctx context.Context, taskID, requesterID, targetUserID int64, permission string) (*models.SharedTask, error) {
	task, err := authorizeTask(ctx, s.store, taskID, requesterID, authz.ActionShare)
	if err != nil {
		return nil, err
	}
	perm, err := parsePermission(permission)
	if err != nil {
		return nil, err
	}
	if targetUserID <= 0 {
		return nil, validationError("userId is required")
	}
	if _, err := s.store.Users.GetByID(ctx, targetUserID); err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if _, err := s.store.Shares.FindByTaskAndUser(ctx, taskID, targetUserID); err == nil {
		return nil, conflictError("Task already shared with this user")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	ownerName := ""
	if task.Owner != nil {
		ownerName = task.Owner.Username
	}
	share := &models.SharedTask{
		TaskID:     taskID,
		UserID:     targetUserID,
		Permission: perm,
	}
	var queued *models.Notification
	err = s.tx.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.Shares.Create(ctx, share); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return conflictError("Task already shared with this user")
			}
			return err
		}
		n, err := enqueue(ctx, tx, targetUserID, models.NotificationSharedTask, sharedTaskMessage(ownerName, task))
		if err != nil {
			return err
		}
		queued = n
		return nil
	})
	if err != nil {
		log.Printf("[share][create][err] task=%d target=%d: %v", taskID, targetUserID, err)
		return nil, err
	}
	log.Printf("[share][create][ok] id=%d task=%d target=%d perm=%s", share.ID, taskID, targetUserID, perm)
	s.notifier.Notify(ctx, *queued)
	return share, nil
}

func (s *shareService) ListForUser(ctx context.Context, userID int64) ([]models.SharedTask, error) {
	return s.store.Shares.ListForUser(ctx, userID)
}

func (s *shareService) UpdateViaShare(ctx context.Context, shareID, requesterID int64, changes models.TaskChanges) (*models.Task, error) {
	share, err := s.store.Shares.FindByIDForUser(ctx, shareID, requesterID)
	if err != nil {
		return nil, notFoundOr(err, "Shared task not found or not authorized")
	}
	if !authz.CanEditViaShare(share, requesterID) {
		log.Printf("[share][update][deny] share=%d user=%d perm=%s", shareID, requesterID, share.Permission)
		return nil, forbiddenError("You only have view permission for this task")
	}
	task, err := s.store.Tasks.FindWithOwner(ctx, share.TaskID)
	if err != nil {
		return nil, notFoundOr(err, "Task not found")
	}
	if err := validateTaskChanges(&changes); err != nil {
		return nil, err
	}
	updated, err := applyUpdate(ctx, s.store, task, changes)
	if err != nil {
		return nil, err
	}
	log.Printf("[share][update][ok] share=%d task=%d by=%d", shareID, task.ID, requesterID)
	return updated, nil
}

func (s *shareService) Remove(ctx context.Context, shareID, requesterID int64) error {
	share, err := s.store.Shares.FindByID(ctx, shareID)
	if err != nil {
		return notFoundOr(err, "Shared task not found")
	}
	task, err := s.store.Tasks.FindByID(ctx, share.TaskID)
	if err != nil {
		return notFoundOr(err, "Task not found")
	}
	if !authz.CanRevokeShare(task.OwnerID, requesterID, share) {
		log.Printf("[share][delete][deny] share=%d user=%d", shareID, requesterID)
		return forbiddenError("Not authorized to remove this shared task")
	}
	if err := s.store.Shares.Delete(ctx, shareID); err != nil {
		return notFoundOr(err, "Shared task not found")
	}
	log.Printf("[share][delete][ok] share=%d by=%d", shareID, requesterID)
	return nil
}
