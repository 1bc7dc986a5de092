package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/models"
)

func TestCommentAdd(t *testing.T) {
	db := newMemDB()
	notifier := &recordingNotifier{}
	svc := NewCommentService(db.Store(), db, notifier)
	owner := db.addUser("alice")
	viewer := db.addUser("bob")
	stranger := db.addUser("carol")
	task := db.addTask(owner.ID, "Launch")
	db.addShare(task.ID, viewer.ID, models.PermissionView)
	ctx := context.Background()

	t.Run("empty content is checked before the task lookup", func(t *testing.T) {
		_, err := svc.Add(ctx, 9999, &viewer, "  ")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Please add a comment", err.Error())
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := svc.Add(ctx, 9999, &viewer, "hi")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stranger", func(t *testing.T) {
		_, err := svc.Add(ctx, task.ID, &stranger, "hi")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("sharer notifies owner", func(t *testing.T) {
		c, err := svc.Add(ctx, task.ID, &viewer, "looks good")
		require.NoError(t, err)
		require.NotNil(t, c.Author)
		assert.Equal(t, "bob", c.Author.Username)
		assert.Equal(t, "looks good", c.Content)

		got := db.notificationsFor(owner.ID)
		require.Len(t, got, 1)
		assert.Equal(t, models.NotificationComment, got[0].Type)
		assert.Equal(t, `bob commented on your task "Launch"`, got[0].Message)
		assert.Len(t, notifier.sent, 1)
	})

	t.Run("owner does not notify self", func(t *testing.T) {
		_, err := svc.Add(ctx, task.ID, &owner, "thanks")
		require.NoError(t, err)
		assert.Len(t, db.notificationsFor(owner.ID), 1)
		assert.Len(t, notifier.sent, 1)
	})
}

func TestCommentList(t *testing.T) {
	db := newMemDB()
	svc := NewCommentService(db.Store(), db, nil)
	owner := db.addUser("alice")
	stranger := db.addUser("carol")
	task := db.addTask(owner.ID, "t")
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Add(ctx, task.ID, &owner, text)
		require.NoError(t, err)
	}

	comments, err := svc.List(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "three", comments[0].Content)
	assert.Equal(t, "one", comments[2].Content)

	_, err = svc.List(ctx, task.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.List(ctx, 9999, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
