package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

func decodeError(t *testing.T, body []byte) middleware.ErrorResponseBody {
	t.Helper()
	var resp middleware.ErrorResponseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode error body: %v (%s)", err, body)
	}
	return resp
}

func TestTodoHandler_List_EmptyIsArray(t *testing.T) {
	w := serve(t, newTestDeps(), http.MethodGet, "/api/todos", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}

func TestTodoHandler_Display(t *testing.T) {
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		displayFn: func(ctx context.Context) ([]model.Todo, error) {
			return []model.Todo{{ID: "a", TaskName: "first", Priority: model.PriorityHigh}}, nil
		},
	}

	w := serve(t, deps, http.MethodGet, "/api/todos/display", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var todos []model.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todos); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != "a" {
		t.Errorf("todos = %+v", todos)
	}
}

func TestTodoHandler_Create_Success(t *testing.T) {
	deadline := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		createFn: func(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
			if input.TaskName != "Write report" || input.Priority != "high" {
				t.Errorf("input = %+v", input)
			}
			if input.Deadline == nil || !input.Deadline.Equal(deadline) {
				t.Errorf("deadline = %v, want %v", input.Deadline, deadline)
			}
			return &model.Todo{ID: "new", TaskName: input.TaskName, Priority: model.PriorityHigh}, nil
		},
	}

	w := serve(t, deps, http.MethodPost, "/api/todos",
		`{"taskName":"Write report","priority":"high","deadline":"2026-01-02T00:00:00Z"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}
	var todo model.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todo); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if todo.ID != "new" {
		t.Errorf("ID = %q, want %q", todo.ID, "new")
	}
}

func TestTodoHandler_Create_InvalidJSON(t *testing.T) {
	w := serve(t, newTestDeps(), http.MethodPost, "/api/todos", `{"taskName":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, w.Body.Bytes()); resp.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidRequest)
	}
}

func TestTodoHandler_Create_ValidationError(t *testing.T) {
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		createFn: func(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
			return nil, model.NewValidationError("taskName", "required")
		},
	}

	w := serve(t, deps, http.MethodPost, "/api/todos", `{"taskName":"  "}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, w.Body.Bytes()); resp.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeValidation)
	}
}

func TestTodoHandler_Update_PassesIDAndPatch(t *testing.T) {
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		updateFn: func(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
			if id != "todo-1" {
				t.Errorf("id = %q, want %q", id, "todo-1")
			}
			if patch.Notes == nil || *patch.Notes != "updated" {
				t.Errorf("patch.Notes = %v", patch.Notes)
			}
			if patch.TaskName != nil {
				t.Errorf("patch.TaskName = %v, want nil", *patch.TaskName)
			}
			return &model.Todo{ID: id, Notes: *patch.Notes}, nil
		},
	}

	w := serve(t, deps, http.MethodPatch, "/api/todos/todo-1", `{"notes":"updated"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestTodoHandler_Update_NotFound(t *testing.T) {
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		updateFn: func(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
			return nil, model.NewNotFoundError("todo", id)
		},
	}

	w := serve(t, deps, http.MethodPatch, "/api/todos/missing", `{}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if resp := decodeError(t, w.Body.Bytes()); resp.Code != model.ErrCodeTodoNotFound {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeTodoNotFound)
	}
}

func TestTodoHandler_Delete(t *testing.T) {
	var deleted string
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	w := serve(t, deps, http.MethodDelete, "/api/todos/todo-9", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deleted != "todo-9" {
		t.Errorf("deleted = %q, want %q", deleted, "todo-9")
	}
}

func TestTodoHandler_Toggle_StoreFailure(t *testing.T) {
	deps := newTestDeps()
	deps.TodoService = &mockTodoService{
		toggleFn: func(ctx context.Context, id string) (*model.Todo, error) {
			return nil, &model.StoreError{Op: "set", Key: "todos", Err: errors.New("disk full")}
		},
	}

	w := serve(t, deps, http.MethodPost, "/api/todos/todo-1/toggle", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if resp := decodeError(t, w.Body.Bytes()); resp.Code != model.ErrCodeStoreFailed {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeStoreFailed)
	}
}
