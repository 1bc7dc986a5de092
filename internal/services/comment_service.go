package services

import (
	"context"
	"log"
	"strings"

	"taskhub/internal/authz"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

// CommentService appends to and reads a task's comment log. Comments are
// never edited or deleted.
type CommentService struct {
	store    repositories.Store
	tx       repositories.Transactor
	notifier Notifier
}

func NewCommentService(store repositories.Store, tx repositories.Transactor, notifier Notifier) *CommentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CommentService{store: store, tx: tx, notifier: notifier}
}

func (s *CommentService) Add(ctx context.Context, taskID int64, author *models.User, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("Please add a comment")
	}
	task, err := authorizeTask(ctx, s.store, taskID, author.ID, authz.ActionComment)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{TaskID: taskID, UserID: author.ID, Content: content}
	var queued []models.Notification
	err = s.tx.InTx(ctx, func(tx repositories.Store) error {
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		if task.OwnerID == author.ID {
			return nil
		}
		n, err := enqueue(ctx, tx, task.OwnerID, models.NotificationComment, commentMessage(author.Username, task))
		if err != nil {
			return err
		}
		queued = append(queued, *n)
		return nil
	})
	if err != nil {
		log.Printf("[comment][create][err] task=%d user=%d: %v", taskID, author.ID, err)
		return nil, err
	}
	log.Printf("[comment][create][ok] id=%d task=%d user=%d", comment.ID, taskID, author.ID)
	s.notifier.Notify(ctx, queued...)

	withAuthor, err := s.store.Comments.FindWithAuthor(ctx, comment.ID)
	if err != nil {
		log.Printf("[comment][create][warn] reload id=%d: %v", comment.ID, err)
		summary := author.Summary()
		comment.Author = &summary
		return comment, nil
	}
	return withAuthor, nil
}

func (s *CommentService) List(ctx context.Context, taskID, requesterID int64) ([]models.Comment, error) {
	if _, err := authorizeTask(ctx, s.store, taskID, requesterID, authz.ActionListComments); err != nil {
		return nil, err
	}
	return s.store.Comments.ListByTask(ctx, taskID)
}
