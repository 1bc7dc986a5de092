package repositories

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ForeignKey declares a reference from Column to the id of table References.
type ForeignKey struct {
	Column     string
	References string
	OnDelete   string
}

// Table describes one relation the repositories read and write.
type Table struct {
	Name        string
	Columns     []string
	ForeignKeys []ForeignKey
	Unique      [][]string
}

// Cols returns the column list qualified with alias.
func (t Table) Cols(alias string) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = alias + "." + c
	}
	return out
}

// Nested returns alias-qualified columns renamed to prefix.column so sqlx
// can scan them into a nested struct tagged db:"prefix".
func (t Table) Nested(alias, prefix string, cols ...string) []string {
	if len(cols) == 0 {
		cols = t.Columns
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, prefix, c)
	}
	return out
}

// List returns the unqualified column list for RETURNING clauses.
func (t Table) List() string {
	return strings.Join(t.Columns, ", ")
}

func (t Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Schema is built once at startup and handed to every repository.
type Schema struct {
	Users          Table
	Tasks          Table
	SharedTasks    Table
	Comments       Table
	Notifications  Table
	PasswordResets Table
}

func NewSchema() *Schema {
	return &Schema{
		Users: Table{
			Name: "users",
			Columns: []string{
				"id", "username", "email", "password_hash", "role", "telegram_chat_id",
				"refresh_token", "refresh_expires_at", "created_at", "updated_at",
			},
			Unique: [][]string{{"username"}, {"email"}},
		},
		Tasks: Table{
			Name: "tasks",
			Columns: []string{
				"id", "owner_id", "title", "description", "due_date",
				"priority", "status", "created_at", "updated_at",
			},
			ForeignKeys: []ForeignKey{{Column: "owner_id", References: "users", OnDelete: "CASCADE"}},
		},
		SharedTasks: Table{
			Name:    "shared_tasks",
			Columns: []string{"id", "task_id", "user_id", "permission", "created_at"},
			ForeignKeys: []ForeignKey{
				{Column: "task_id", References: "tasks", OnDelete: "CASCADE"},
				{Column: "user_id", References: "users", OnDelete: "CASCADE"},
			},
			Unique: [][]string{{"task_id", "user_id"}},
		},
		Comments: Table{
			Name:    "comments",
			Columns: []string{"id", "task_id", "user_id", "content", "created_at"},
			ForeignKeys: []ForeignKey{
				{Column: "task_id", References: "tasks", OnDelete: "CASCADE"},
				{Column: "user_id", References: "users", OnDelete: "CASCADE"},
			},
		},
		Notifications: Table{
			Name:    "notifications",
			Columns: []string{"id", "user_id", "type", "message", "is_read", "created_at"},
			ForeignKeys: []ForeignKey{
				{Column: "user_id", References: "users", OnDelete: "CASCADE"},
			},
		},
		PasswordResets: Table{
			Name:    "password_resets",
			Columns: []string{"id", "user_id", "token", "expires_at", "used_at", "created_at"},
			ForeignKeys: []ForeignKey{
				{Column: "user_id", References: "users", OnDelete: "CASCADE"},
			},
			Unique: [][]string{{"token"}},
		},
	}
}

func (s *Schema) Tables() []Table {
	return []Table{s.Users, s.Tasks, s.SharedTasks, s.Comments, s.Notifications, s.PasswordResets}
}

func (s *Schema) table(name string) (Table, bool) {
	for _, t := range s.Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Validate rejects foreign keys and unique keys that point at unknown tables or columns.
func (s *Schema) Validate() error {
	for _, t := range s.Tables() {
		if !t.Has("id") {
			return fmt.Errorf("schema: table %s has no id column", t.Name)
		}
		for _, fk := range t.ForeignKeys {
			if !t.Has(fk.Column) {
				return fmt.Errorf("schema: %s.%s: unknown column", t.Name, fk.Column)
			}
			if _, ok := s.table(fk.References); !ok {
				return fmt.Errorf("schema: %s.%s references unknown table %s", t.Name, fk.Column, fk.References)
			}
		}
		for _, uk := range t.Unique {
			for _, c := range uk {
				if !t.Has(c) {
					return fmt.Errorf("schema: %s unique key on unknown column %s", t.Name, c)
				}
			}
		}
	}
	return nil
}
