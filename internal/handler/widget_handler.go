package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// LayoutManagerInterface はレイアウトハンドラーが必要とするインターフェース。
type LayoutManagerInterface interface {
	Widgets() []model.WidgetDescriptor
	Reorder(ctx context.Context, id model.WidgetID, newPosition int) ([]model.WidgetDescriptor, error)
	ToggleVisible(ctx context.Context, id model.WidgetID) ([]model.WidgetDescriptor, error)
	Reset(ctx context.Context) ([]model.WidgetDescriptor, error)
}

// LayoutHandler はウィジェットレイアウトのHTTPハンドラー。
type LayoutHandler struct {
	manager LayoutManagerInterface
	logger  *slog.Logger
}

// NewLayoutHandler はLayoutHandlerを生成する。
func NewLayoutHandler(manager LayoutManagerInterface, logger *slog.Logger) *LayoutHandler {
	return &LayoutHandler{manager: manager, logger: logger}
}

// reorderRequest は並べ替えリクエストのボディ。
type reorderRequest struct {
	ID       model.WidgetID `json:"id"`
	Position int            `json:"position"`
}

// Get は現在のレイアウトを返す。
// GET /api/layout
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Widgets())
}

// Reorder はウィジェットを指定位置へ移動する。
// POST /api/layout/reorder
func (h *LayoutHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	h.respond(w, r)(h.manager.Reorder(r.Context(), req.ID, req.Position))
}

// ToggleVisible はウィジェットの表示を切り替える。
// POST /api/layout/{id}/toggle
func (h *LayoutHandler) ToggleVisible(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.manager.ToggleVisible(r.Context(), model.WidgetID(chi.URLParam(r, "id"))))
}

// Reset は既定のレイアウトに戻す。
// POST /api/layout/reset
func (h *LayoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.manager.Reset(r.Context()))
}

func (h *LayoutHandler) respond(w http.ResponseWriter, r *http.Request) func([]model.WidgetDescriptor, error) {
	return func(widgets []model.WidgetDescriptor, err error) {
		if err != nil {
			middleware.WriteError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, widgets)
	}
}
