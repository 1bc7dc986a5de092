package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type notificationRepository struct {
	db sqlx.ExtContext
	t  Table
}

func NewNotificationRepository(db sqlx.ExtContext, schema *Schema) NotificationRepository {
	return &notificationRepository{db: db, t: schema.Notifications}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	q, args, err := psql.Insert(r.t.Name).
		Columns("user_id", "type", "message").
		Values(n.UserID, n.Type, n.Message).
		Suffix("RETURNING id, is_read, created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRowxContext(ctx, q, args...).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	return classify(err, "Create", r.t.Name)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	q, args, err := psql.Select(r.t.Columns...).
		From(r.t.Name).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	notes := []models.Notification{}
	if err := sqlx.SelectContext(ctx, r.db, &notes, q, args...); err != nil {
		return nil, classify(err, "ListByUser", r.t.Name)
	}
	return notes, nil
}

// MarkAllRead flips only unread rows, so repeating it changes nothing.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	q, args, err := psql.Update(r.t.Name).
		Set("is_read", true).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, classify(err, "MarkAllRead", r.t.Name)
	}
	return res.RowsAffected()
}
