package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Mutation event message types pushed to live subscribers.
const (
	EventCreated = "todo_created"
	EventUpdated = "todo_updated"
	EventToggled = "todo_toggled"
	EventDeleted = "todo_deleted"
)

// Publisher delivers a mutation event to all live subscribers. Delivery
// is best-effort and must not block the caller.
type Publisher interface {
	Publish(messageType string, data any)
}

// CreateRequest carries the fields of a new todo.
type CreateRequest struct {
	Text     string  `json:"text"`
	Assignee string  `json:"assignee"`
	DueDate  *string `json:"due_date"`
}

// Service coordinates mutations: it validates input, invokes the store,
// and publishes one event per successful mutation. A failed store
// operation publishes nothing.
type Service struct {
	store  Store
	pub    Publisher
	logger *slog.Logger
}

// NewService creates a Service over the given store and publisher.
func NewService(store Store, pub Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, pub: pub, logger: logger}
}

// Create validates and persists a new todo, then announces it.
// An empty assignee is canonicalized to "Unassigned".
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Todo, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	dueDate, err := normalizeDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		assignee = Unassigned
	}

	t, err := s.store.Create(ctx, text, assignee, dueDate)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	s.logger.Info("todo created", slog.Int64("id", t.ID), slog.String("assignee", t.Assignee))
	s.pub.Publish(EventCreated, t)
	return t, nil
}

// Update applies a partial mutation. Unsupplied fields keep their
// current value; see Update for the due-date clearing rule.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Todo, error) {
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return nil, &ValidationError{Field: "text", Reason: "must not be empty"}
		}
		upd.Text = &text
	}
	if !upd.ClearDueDate {
		dueDate, err := normalizeDueDate(upd.DueDate)
		if err != nil {
			return nil, err
		}
		upd.DueDate = dueDate
	}

	t, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update %d: %w", id, err)
	}
	s.logger.Info("todo updated", slog.Int64("id", t.ID))
	s.pub.Publish(EventUpdated, t)
	return t, nil
}

// Toggle flips a todo's completed flag and announces the result.
func (s *Service) Toggle(ctx context.Context, id int64) (*Todo, error) {
	t, err := s.store.Toggle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle %d: %w", id, err)
	}
	s.logger.Info("todo toggled", slog.Int64("id", t.ID), slog.Bool("completed", t.Completed))
	s.pub.Publish(EventToggled, t)
	return t, nil
}

// Delete removes a todo and announces its ID. A missing todo is
// ErrNotFound; no event is published for it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	if !removed {
		return ErrNotFound
	}
	s.logger.Info("todo deleted", slog.Int64("id", id))
	s.pub.Publish(EventDeleted, map[string]int64{"id": id})
	return nil
}

// ListGrouped is the read path: all todos in presentation order. Store
// failures surface to the caller, never an empty result.
func (s *Service) ListGrouped(ctx context.Context) ([]DateGroup, error) {
	todos, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return GroupByDate(todos), nil
}

func normalizeDueDate(d *string) (*string, error) {
	if d == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil, &ValidationError{Field: "due_date", Reason: "must not be empty; omit to leave unset"}
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		return nil, &ValidationError{Field: "due_date", Reason: "must be formatted YYYY-MM-DD"}
	}
	return &v, nil
}
