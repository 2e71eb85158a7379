// Package api implements the REST surface of the shared-list service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/joe5saia/family-whiteboard/todo"
)

// Handlers bundles all REST API handler dependencies.
type Handlers struct {
	Todos   *todo.Service
	Logger  *slog.Logger
	Version string
}

// RegisterRoutes registers all API routes on the given router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.Methods(http.MethodGet).Path("/api/todos").HandlerFunc(h.listTodos)
	r.Methods(http.MethodPost).Path("/api/todos").HandlerFunc(h.createTodo)
	r.Methods(http.MethodPut).Path("/api/todos/{id}/toggle").HandlerFunc(h.toggleTodo)
	r.Methods(http.MethodPut).Path("/api/todos/{id}").HandlerFunc(h.updateTodo)
	r.Methods(http.MethodDelete).Path("/api/todos/{id}").HandlerFunc(h.deleteTodo)
	r.Methods(http.MethodGet).Path("/api/status").HandlerFunc(h.status)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *todo.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, todo.ErrNotFound):
		writeError(w, http.StatusNotFound, "todo not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID extracts and parses the {id} route variable. A second return
// of false means a 400 was already written.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid todo id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Todos.ListGrouped(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []todo.DateGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	var req todo.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	t, err := h.Todos.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// updateRequest is the wire form of a partial update. due_date is kept
// raw so an explicit null (clear the date) can be told apart from an
// absent field (leave it alone).
type updateRequest struct {
	Text      *string         `json:"text"`
	Assignee  *string         `json:"assignee"`
	DueDate   json.RawMessage `json:"due_date"`
	Completed *bool           `json:"completed"`
}

var jsonNull = []byte("null")

func (req *updateRequest) toUpdate() (todo.Update, error) {
	upd := todo.Update{
		Text:      req.Text,
		Assignee:  req.Assignee,
		Completed: req.Completed,
	}
	switch {
	case req.DueDate == nil:
		// field absent: leave as is
	case bytes.Equal(bytes.TrimSpace(req.DueDate), jsonNull):
		upd.ClearDueDate = true
	default:
		var d string
		if err := json.Unmarshal(req.DueDate, &d); err != nil {
			return todo.Update{}, err
		}
		upd.DueDate = &d
	}
	return upd, nil
}

func (h *Handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date: "+err.Error())
		return
	}
	t, err := h.Todos.Update(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) toggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.Todos.Toggle(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Todos.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
	})
}
