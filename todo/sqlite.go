package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	assignee   TEXT NOT NULL DEFAULT '',
	due_date   TEXT,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const todoColumns = "id, text, assignee, due_date, completed, created_at, updated_at"

// SQLiteStore persists todos in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the todos table exists. The caller is responsible for calling
// Close. AUTOINCREMENT keeps IDs monotonic so a deleted todo's ID is
// never reassigned.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Create persists a new todo and returns it with ID and timestamps set.
func (s *SQLiteStore) Create(ctx context.Context, text, assignee string, dueDate *string) (*Todo, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO todos (text, assignee, due_date, completed, created_at, updated_at)
		VALUES (?,?,?,0,?,?)
		RETURNING `+todoColumns,
		text, assignee, nullString(dueDate), now, now,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return t, nil
}

// List returns all todos. Ordering is left to the grouping layer.
func (s *SQLiteStore) List(ctx context.Context) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

// Get retrieves a todo by ID.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Todo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// Update applies the supplied fields in a single UPDATE statement so two
// concurrent partial updates never tear a row.
func (s *SQLiteStore) Update(ctx context.Context, id int64, upd Update) (*Todo, error) {
	q := strings.Builder{}
	q.WriteString("UPDATE todos SET updated_at = ?")
	args := []any{time.Now().UTC()}

	if upd.Text != nil {
		q.WriteString(", text = ?")
		args = append(args, *upd.Text)
	}
	if upd.Assignee != nil {
		q.WriteString(", assignee = ?")
		args = append(args, *upd.Assignee)
	}
	if upd.ClearDueDate {
		q.WriteString(", due_date = NULL")
	} else if upd.DueDate != nil {
		q.WriteString(", due_date = ?")
		args = append(args, *upd.DueDate)
	}
	if upd.Completed != nil {
		q.WriteString(", completed = ?")
		args = append(args, *upd.Completed)
	}
	q.WriteString(" WHERE id = ? RETURNING " + todoColumns)
	args = append(args, id)

	row := s.db.QueryRowContext(ctx, q.String(), args...)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

// Toggle flips the completed flag unconditionally.
func (s *SQLiteStore) Toggle(ctx context.Context, id int64) (*Todo, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE todos SET completed = NOT completed, updated_at = ?
		WHERE id = ? RETURNING `+todoColumns,
		time.Now().UTC(), id,
	)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	return t, nil
}

// Delete removes a todo by ID, reporting whether a row was removed.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// scanner abstracts sql.Row and sql.Rows for scanTodo.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*Todo, error) {
	var t Todo
	var dueDate sql.NullString
	var completed int
	err := s.Scan(&t.ID, &t.Text, &t.Assignee, &dueDate, &completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	t.Completed = completed != 0
	return &t, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
