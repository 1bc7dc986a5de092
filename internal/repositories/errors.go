package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key violation")
)

const uniqueViolation = pq.ErrorCode("23505")

// Error carries the failed operation and table next to the driver error.
type Error struct {
	Op         string
	Table      string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("repositories: %s: table=%s", e.Op, e.Table)
	if e.Constraint != "" {
		msg += ": constraint=" + e.Constraint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func classify(err error, op, table string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &Error{Op: op, Table: table, Constraint: pqErr.Constraint, Err: ErrDuplicate}
	}
	return &Error{Op: op, Table: table, Err: err}
}

// ConstraintOf returns the violated constraint name, if any.
func ConstraintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Constraint
	}
	return ""
}

func expectAffected(res sql.Result, op, table string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}
	return nil
}
