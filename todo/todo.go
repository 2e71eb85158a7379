// Package todo defines the shared-list task model, its persistence
// contract, and the grouping and mutation logic built on top of it.
package todo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Unassigned is the canonical assignee for todos nobody has claimed.
const Unassigned = "Unassigned"

// DateLayout is the wire and storage format for due dates.
const DateLayout = "2006-01-02"

// Todo is a single item on the shared list.
type Todo struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Assignee  string    `json:"assignee"`
	DueDate   *string   `json:"due_date,omitempty"` // YYYY-MM-DD, nil = no due date
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update describes a partial mutation of a todo. Nil pointer fields are
// left untouched. ClearDueDate removes the due date; it takes precedence
// over DueDate.
type Update struct {
	Text         *string
	Assignee     *string
	DueDate      *string
	ClearDueDate bool
	Completed    *bool
}

// Store persists and retrieves todos. Implementations must apply each
// operation atomically: a concurrent reader never observes a
// half-written row, and Update applies all supplied fields in a single
// statement or critical section.
type Store interface {
	// Create persists a new todo and returns it with its assigned ID
	// and timestamps.
	Create(ctx context.Context, text, assignee string, dueDate *string) (*Todo, error)

	// List returns all todos in no particular order.
	List(ctx context.Context) ([]Todo, error)

	// Get retrieves a todo by ID.
	Get(ctx context.Context, id int64) (*Todo, error)

	// Update applies the supplied fields and returns the updated todo.
	Update(ctx context.Context, id int64, upd Update) (*Todo, error)

	// Toggle flips the completed flag and returns the updated todo.
	Toggle(ctx context.Context, id int64) (*Todo, error)

	// Delete removes a todo. It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ErrNotFound is returned by Store operations whose target todo does
// not exist. Check with errors.Is.
var ErrNotFound = errors.New("todo not found")

// ValidationError reports rejected input. Check with errors.As.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
