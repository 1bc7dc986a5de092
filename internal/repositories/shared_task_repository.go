package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

type SharedTaskRepository interface {
	Create(ctx context.Context, share *models.SharedTask) error
	FindByID(ctx context.Context, id int64) (*models.SharedTask, error)
	FindByIDForUser(ctx context.Context, id, userID int64) (*models.SharedTask, error)
	FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.SharedTask, error)
	ListForUser(ctx context.Context, userID int64) ([]models.SharedTask, error)
	Delete(ctx context.Context, id int64) error
}

type sharedTaskRepository struct {
	db    sqlx.ExtContext
	t     Table
	tasks Table
	users Table
}

func NewSharedTaskRepository(db sqlx.ExtContext, schema *Schema) SharedTaskRepository {
	return &sharedTaskRepository{db: db, t: schema.SharedTasks, tasks: schema.Tasks, users: schema.Users}
}

// sharedRow is a share joined with its task and the task owner.
type sharedRow struct {
	models.SharedTask
	TaskRow      models.Task        `db:"task"`
	OwnerSummary models.UserSummary `db:"owner"`
}

func (r *sharedTaskRepository) Create(ctx context.Context, share *models.SharedTask) error {
	q, args, err := psql.Insert(r.t.Name).
		Columns("task_id", "user_id", "permission").
		Values(share.TaskID, share.UserID, share.Permission).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRowxContext(ctx, q, args...).Scan(&share.ID, &share.CreatedAt)
	return classify(err, "Create", r.t.Name)
}

func (r *sharedTaskRepository) findOne(ctx context.Context, op string, where sq.Sqlizer) (*models.SharedTask, error) {
	q, args, err := psql.Select(r.t.Columns...).From(r.t.Name).Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	share := &models.SharedTask{}
	if err := sqlx.GetContext(ctx, r.db, share, q, args...); err != nil {
		return nil, classify(err, op, r.t.Name)
	}
	return share, nil
}

func (r *sharedTaskRepository) FindByID(ctx context.Context, id int64) (*models.SharedTask, error) {
	return r.findOne(ctx, "FindByID", sq.Eq{"id": id})
}

func (r *sharedTaskRepository) FindByIDForUser(ctx context.Context, id, userID int64) (*models.SharedTask, error) {
	return r.findOne(ctx, "FindByIDForUser", sq.Eq{"id": id, "user_id": userID})
}

func (r *sharedTaskRepository) FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.SharedTask, error) {
	return r.findOne(ctx, "FindByTaskAndUser", sq.Eq{"task_id": taskID, "user_id": userID})
}

func (r *sharedTaskRepository) ListForUser(ctx context.Context, userID int64) ([]models.SharedTask, error) {
	cols := r.t.Cols("s")
	cols = append(cols, r.tasks.Nested("t", "task")...)
	cols = append(cols, r.users.Nested("u", "owner", "id", "username")...)

	q, args, err := psql.Select(cols...).
		From(r.t.Name + " s").
		Join(r.tasks.Name + " t ON t.id = s.task_id").
		Join(r.users.Name + " u ON u.id = t.owner_id").
		Where(sq.Eq{"s.user_id": userID}).
		OrderBy("s.created_at DESC", "s.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []sharedRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, classify(err, "ListForUser", r.t.Name)
	}

	out := make([]models.SharedTask, 0, len(rows))
	for _, row := range rows {
		share := row.SharedTask
		task := row.TaskRow
		owner := row.OwnerSummary
		task.Owner = &owner
		share.Task = &task
		out = append(out, share)
	}
	return out, nil
}

func (r *sharedTaskRepository) Delete(ctx context.Context, id int64) error {
	q, args, err := psql.Delete(r.t.Name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, "Delete", r.t.Name)
	}
	return expectAffected(res, "Delete", r.t.Name)
}
