package todo

import (
	"context"
	"errors"
	"os"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	f, err := os.CreateTemp("", "whiteboard-todo-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	path := f.Name()
	t.Cleanup(func() { os.Remove(path) })

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Both Store implementations must satisfy identical semantics, so every
// contract test runs against both.
func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "buy milk", "Joe", strptr("2024-05-01"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("Create returned zero ID")
		}
		if created.Completed {
			t.Error("new todo should not be completed")
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("timestamps not set on create")
		}

		got, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Text != "buy milk" {
			t.Errorf("Text = %q, want %q", got.Text, "buy milk")
		}
		if got.Assignee != "Joe" {
			t.Errorf("Assignee = %q, want Joe", got.Assignee)
		}
		if got.DueDate == nil || *got.DueDate != "2024-05-01" {
			t.Errorf("DueDate = %v, want 2024-05-01", got.DueDate)
		}
	})
}

func TestStore_IDsAreMonotonic(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		first, err := store.Create(ctx, "first", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		second, err := store.Create(ctx, "second", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if second.ID <= first.ID {
			t.Fatalf("second ID %d not greater than first %d", second.ID, first.ID)
		}

		// A deleted ID must never come back.
		if _, err := store.Delete(ctx, second.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		third, err := store.Create(ctx, "third", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if third.ID <= second.ID {
			t.Errorf("ID %d reused after deleting %d", third.ID, second.ID)
		}
	})
}

func TestStore_Get_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		if _, err := store.Get(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get missing id: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Update_Partial(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "orig", "Joe", strptr("2024-05-01"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		// Only text supplied: everything else keeps its value.
		got, err := store.Update(ctx, created.ID, Update{Text: strptr("renamed")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Text != "renamed" {
			t.Errorf("Text = %q, want renamed", got.Text)
		}
		if got.Assignee != "Joe" {
			t.Errorf("Assignee = %q, want Joe (unchanged)", got.Assignee)
		}
		if got.DueDate == nil || *got.DueDate != "2024-05-01" {
			t.Errorf("DueDate = %v, want 2024-05-01 (unchanged)", got.DueDate)
		}
		if got.Completed {
			t.Error("Completed flipped by unrelated update")
		}
	})
}

func TestStore_Update_AllFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "orig", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		done := true
		got, err := store.Update(ctx, created.ID, Update{
			Text:      strptr("new text"),
			Assignee:  strptr("Shannon"),
			DueDate:   strptr("2024-12-24"),
			Completed: &done,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Text != "new text" || got.Assignee != "Shannon" || !got.Completed {
			t.Errorf("updated todo = %+v", got)
		}
		if got.DueDate == nil || *got.DueDate != "2024-12-24" {
			t.Errorf("DueDate = %v, want 2024-12-24", got.DueDate)
		}
		if got.ID != created.ID {
			t.Errorf("ID changed: %d -> %d", created.ID, got.ID)
		}
	})
}

func TestStore_Update_ClearDueDate(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "dated", "Joe", strptr("2024-05-01"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := store.Update(ctx, created.ID, Update{ClearDueDate: true})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.DueDate != nil {
			t.Errorf("DueDate = %v, want nil after clear", *got.DueDate)
		}
	})
}

func TestStore_Update_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		_, err := store.Update(context.Background(), 9999, Update{Text: strptr("x")})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update missing id: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Toggle(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "flip me", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := store.Toggle(ctx, created.ID)
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if !got.Completed {
			t.Error("first toggle: Completed = false, want true")
		}
		got, err = store.Toggle(ctx, created.ID)
		if err != nil {
			t.Fatalf("Toggle back: %v", err)
		}
		if got.Completed {
			t.Error("second toggle: Completed = true, want false")
		}
	})
}

func TestStore_Toggle_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		if _, err := store.Toggle(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Toggle missing id: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		created, err := store.Create(ctx, "doomed", "Joe", nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		removed, err := store.Delete(ctx, created.ID)
		if err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if !removed {
			t.Error("Delete existing id = false, want true")
		}
		if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
		}

		removed, err = store.Delete(ctx, created.ID)
		if err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		if removed {
			t.Error("Delete missing id = true, want false")
		}
	})
}

func TestStore_List(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		todos, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List empty: %v", err)
		}
		if len(todos) != 0 {
			t.Errorf("List empty store: got %d todos", len(todos))
		}

		for _, text := range []string{"a", "b", "c"} {
			if _, err := store.Create(ctx, text, "Joe", nil); err != nil {
				t.Fatalf("Create %q: %v", text, err)
			}
		}
		todos, err = store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(todos) != 3 {
			t.Errorf("List: got %d todos, want 3", len(todos))
		}
	})
}
