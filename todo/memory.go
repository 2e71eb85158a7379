package todo

import (
	"context"
	"sync"
	"time"
)

// MemoryStore holds todos in process memory. State does not survive the
// process; otherwise it is interchangeable with SQLiteStore.
type MemoryStore struct {
	mu     sync.Mutex
	todos  map[int64]Todo
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{todos: make(map[int64]Todo), nextID: 1}
}

// Create stores a new todo. IDs count up and are never reused, even
// after a delete.
func (s *MemoryStore) Create(_ context.Context, text, assignee string, dueDate *string) (*Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t := Todo{
		ID:        s.nextID,
		Text:      text,
		Assignee:  assignee,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if dueDate != nil {
		d := *dueDate
		t.DueDate = &d
	}
	s.nextID++
	s.todos[t.ID] = t
	out := t
	return &out, nil
}

// List returns copies of all todos in no particular order.
func (s *MemoryStore) List(_ context.Context) ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		todos = append(todos, t)
	}
	return todos, nil
}

// Get retrieves a todo by ID.
func (s *MemoryStore) Get(_ context.Context, id int64) (*Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := t
	return &out, nil
}

// Update applies the supplied fields under a single lock hold.
func (s *MemoryStore) Update(_ context.Context, id int64, upd Update) (*Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Text != nil {
		t.Text = *upd.Text
	}
	if upd.Assignee != nil {
		t.Assignee = *upd.Assignee
	}
	if upd.ClearDueDate {
		t.DueDate = nil
	} else if upd.DueDate != nil {
		d := *upd.DueDate
		t.DueDate = &d
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	s.todos[id] = t
	out := t
	return &out, nil
}

// Toggle flips the completed flag unconditionally.
func (s *MemoryStore) Toggle(_ context.Context, id int64) (*Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	s.todos[id] = t
	out := t
	return &out, nil
}

// Delete removes a todo, reporting whether it existed.
func (s *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return false, nil
	}
	delete(s.todos, id)
	return true, nil
}
