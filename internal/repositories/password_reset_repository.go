package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.PasswordReset, error)
	GetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id int64) error
}

type passwordResetRepository struct {
	db sqlx.ExtContext
	t  Table
}

func NewPasswordResetRepository(db sqlx.ExtContext, schema *Schema) PasswordResetRepository {
	return &passwordResetRepository{db: db, t: schema.PasswordResets}
}

func (r *passwordResetRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	q, args, err := psql.Insert(r.t.Name).
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	pr := &models.PasswordReset{UserID: userID, Token: token, ExpiresAt: expiresAt}
	if err := r.db.QueryRowxContext(ctx, q, args...).Scan(&pr.ID, &pr.CreatedAt); err != nil {
		return nil, classify(err, "Create", r.t.Name)
	}
	return pr, nil
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	q, args, err := psql.Select(r.t.Columns...).From(r.t.Name).Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return nil, err
	}
	pr := &models.PasswordReset{}
	if err := sqlx.GetContext(ctx, r.db, pr, q, args...); err != nil {
		return nil, classify(err, "GetByToken", r.t.Name)
	}
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id int64) error {
	q, args, err := psql.Update(r.t.Name).
		Set("used_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "used_at": nil}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, "MarkUsed", r.t.Name)
	}
	return expectAffected(res, "MarkUsed", r.t.Name)
}
