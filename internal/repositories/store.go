package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store groups repositories bound to one executor: the pool or a transaction.
type Store struct {
	Users          UserRepository
	Tasks          TaskRepository
	Shares         SharedTaskRepository
	Comments       CommentRepository
	Notifications  NotificationRepository
	PasswordResets PasswordResetRepository
}

func NewStore(db sqlx.ExtContext, schema *Schema) Store {
	return Store{
		Users:          NewUserRepository(db, schema),
		Tasks:          NewTaskRepository(db, schema),
		Shares:         NewSharedTaskRepository(db, schema),
		Comments:       NewCommentRepository(db, schema),
		Notifications:  NewNotificationRepository(db, schema),
		PasswordResets: NewPasswordResetRepository(db, schema),
	}
}

// Transactor runs fn against a Store whose repositories share one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

type TxManager struct {
	db     *sqlx.DB
	schema *Schema
}

func NewTxManager(db *sqlx.DB, schema *Schema) *TxManager {
	return &TxManager{db: db, schema: schema}
}

func (m *TxManager) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewStore(tx, m.schema)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
