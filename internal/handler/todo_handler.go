package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	List(ctx context.Context) ([]model.Todo, error)
	Display(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id string) error
	ToggleCompleted(ctx context.Context, id string) (*model.Todo, error)
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	logger  *slog.Logger
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{service: service, logger: logger}
}

// List は保存順のTodo一覧を返す。
// GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilTodos(todos))
}

// Display は優先度と期限で並べた表示用の先頭5件を返す。
// GET /api/todos/display
func (h *TodoHandler) Display(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.Display(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilTodos(todos))
}

// Create はTodoを作成する。
// POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.CreateTodoInput
	if !decodeJSON(w, r, &input, false) {
		return
	}
	todo, err := h.service.Create(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Update はTodoを部分更新する。
// PATCH /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TodoPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	todo, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete はTodoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle は完了状態を反転する。
// POST /api/todos/{id}/toggle
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	todo, err := h.service.ToggleCompleted(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func nonNilTodos(todos []model.Todo) []model.Todo {
	if todos == nil {
		return []model.Todo{}
	}
	return todos
}
