package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

// UserPatch is the persisted form of a profile change. PasswordHash is
// already hashed by the service layer.
type UserPatch struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	TelegramChatID *int64
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
}

type userRepository struct {
	db sqlx.ExtContext
	t  Table
}

func NewUserRepository(db sqlx.ExtContext, schema *Schema) UserRepository {
	return &userRepository{db: db, t: schema.Users}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	q, args, err := psql.Insert(r.t.Name).
		Columns("username", "email", "password_hash", "role", "telegram_chat_id").
		Values(user.Username, user.Email, user.PasswordHash, user.Role, user.TelegramChatID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRowxContext(ctx, q, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return classify(err, "Create", r.t.Name)
}

func (r *userRepository) getBy(ctx context.Context, op string, where sq.Sqlizer) (*models.User, error) {
	q, args, err := psql.Select(r.t.Columns...).From(r.t.Name).Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	u := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, u, q, args...); err != nil {
		return nil, classify(err, op, r.t.Name)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "GetByID", sq.Eq{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "GetByEmail", sq.Expr("LOWER(email) = LOWER(?)", email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "GetByUsername", sq.Eq{"username": username})
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	q, args, err := psql.Select(r.t.Columns...).From(r.t.Name).OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := sqlx.SelectContext(ctx, r.db, &users, q, args...); err != nil {
		return nil, classify(err, "List", r.t.Name)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	set := map[string]interface{}{"updated_at": sq.Expr("NOW()")}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.TelegramChatID != nil {
		set["telegram_chat_id"] = *patch.TelegramChatID
	}

	q, args, err := psql.Update(r.t.Name).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + r.t.List()).
		ToSql()
	if err != nil {
		return nil, err
	}
	u := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, u, q, args...); err != nil {
		return nil, classify(err, "Update", r.t.Name)
	}
	return u, nil
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	q, args, err := psql.Update(r.t.Name).
		Set("refresh_token", token).
		Set("refresh_expires_at", expiresAt).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, "UpdateRefresh", r.t.Name)
	}
	return expectAffected(res, "UpdateRefresh", r.t.Name)
}

// RotateRefresh swaps a live refresh token for a new one in a single statement,
// so a token can be redeemed only once.
func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q, args, err := psql.Update(r.t.Name).
		Set("refresh_token", newToken).
		Set("refresh_expires_at", newExpiresAt).
		Where(sq.Eq{"refresh_token": oldToken}).
		Where(sq.Expr("refresh_expires_at > NOW()")).
		Suffix("RETURNING " + r.t.List()).
		ToSql()
	if err != nil {
		return nil, err
	}
	u := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, u, q, args...); err != nil {
		return nil, classify(err, "RotateRefresh", r.t.Name)
	}
	return u, nil
}
