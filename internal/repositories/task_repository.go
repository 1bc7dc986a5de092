package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindWithOwner(ctx context.Context, id int64) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	Update(ctx context.Context, id int64, changes models.TaskChanges) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	db    sqlx.ExtContext
	t     Table
	users Table
}

func NewTaskRepository(db sqlx.ExtContext, schema *Schema) TaskRepository {
	return &taskRepository{db: db, t: schema.Tasks, users: schema.Users}
}

// taskRow is a task joined with its owner.
type taskRow struct {
	models.Task
	OwnerSummary models.UserSummary `db:"owner"`
}

func (row taskRow) toTask() models.Task {
	t := row.Task
	owner := row.OwnerSummary
	t.Owner = &owner
	return t
}

func (r *taskRepository) withOwner() sq.SelectBuilder {
	cols := append(r.t.Cols("t"), r.users.Nested("u", "owner", "id", "username", "email")...)
	return psql.Select(cols...).
		From(r.t.Name + " t").
		Join(r.users.Name + " u ON u.id = t.owner_id")
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	q, args, err := psql.Insert(r.t.Name).
		Columns("owner_id", "title", "description", "due_date", "priority", "status").
		Values(task.OwnerID, task.Title, task.Description, task.DueDate, task.Priority, task.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRowxContext(ctx, q, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return classify(err, "Store", r.t.Name)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	q, args, err := psql.Select(r.t.Columns...).From(r.t.Name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	task := &models.Task{}
	if err := sqlx.GetContext(ctx, r.db, task, q, args...); err != nil {
		return nil, classify(err, "FindByID", r.t.Name)
	}
	return task, nil
}

func (r *taskRepository) FindWithOwner(ctx context.Context, id int64) (*models.Task, error) {
	q, args, err := r.withOwner().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row taskRow
	if err := sqlx.GetContext(ctx, r.db, &row, q, args...); err != nil {
		return nil, classify(err, "FindWithOwner", r.t.Name)
	}
	task := row.toTask()
	return &task, nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	q, args, err := r.withOwner().
		Where(sq.Eq{"t.owner_id": ownerID}).
		OrderBy("t.due_date ASC NULLS LAST", "t.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []taskRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, classify(err, "ListByOwner", r.t.Name)
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id int64, changes models.TaskChanges) (*models.Task, error) {
	set := map[string]interface{}{"updated_at": sq.Expr("NOW()")}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.ClearDueDate {
		set["due_date"] = nil
	} else if changes.DueDate != nil {
		set["due_date"] = *changes.DueDate
	}
	if changes.Priority != nil {
		set["priority"] = *changes.Priority
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}

	q, args, err := psql.Update(r.t.Name).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + r.t.List()).
		ToSql()
	if err != nil {
		return nil, err
	}
	task := &models.Task{}
	if err := sqlx.GetContext(ctx, r.db, task, q, args...); err != nil {
		return nil, classify(err, "Update", r.t.Name)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
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
