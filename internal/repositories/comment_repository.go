package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindWithAuthor(ctx context.Context, id int64) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db    sqlx.ExtContext
	t     Table
	users Table
}

func NewCommentRepository(db sqlx.ExtContext, schema *Schema) CommentRepository {
	return &commentRepository{db: db, t: schema.Comments, users: schema.Users}
}

type commentRow struct {
	models.Comment
	AuthorSummary models.UserSummary `db:"author"`
}

func (row commentRow) toComment() models.Comment {
	c := row.Comment
	author := row.AuthorSummary
	c.Author = &author
	return c
}

func (r *commentRepository) withAuthor() sq.SelectBuilder {
	cols := append(r.t.Cols("c"), r.users.Nested("u", "author", "id", "username")...)
	return psql.Select(cols...).
		From(r.t.Name + " c").
		Join(r.users.Name + " u ON u.id = c.user_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	q, args, err := psql.Insert(r.t.Name).
		Columns("task_id", "user_id", "content").
		Values(comment.TaskID, comment.UserID, comment.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRowxContext(ctx, q, args...).Scan(&comment.ID, &comment.CreatedAt)
	return classify(err, "Create", r.t.Name)
}

func (r *commentRepository) FindWithAuthor(ctx context.Context, id int64) (*models.Comment, error) {
	q, args, err := r.withAuthor().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row commentRow
	if err := sqlx.GetContext(ctx, r.db, &row, q, args...); err != nil {
		return nil, classify(err, "FindWithAuthor", r.t.Name)
	}
	c := row.toComment()
	return &c, nil
}

// ListByTask returns the comments of a task, newest first.
func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	q, args, err := r.withAuthor().
		Where(sq.Eq{"c.task_id": taskID}).
		OrderBy("c.created_at DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []commentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, args...); err != nil {
		return nil, classify(err, "ListByTask", r.t.Name)
	}
	comments := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toComment())
	}
	return comments, nil
}
