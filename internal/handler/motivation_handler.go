package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// MotivationSelectorInterface はモチベーションハンドラーが必要とするインターフェース。
type MotivationSelectorInterface interface {
	Today(ctx context.Context) (*model.MotivationState, error)
	Refresh(ctx context.Context) (*model.MotivationState, error)
}

// MotivationHandler は今日の名言と画像のHTTPハンドラー。
type MotivationHandler struct {
	selector MotivationSelectorInterface
	logger   *slog.Logger
}

// NewMotivationHandler はMotivationHandlerを生成する。
func NewMotivationHandler(selector MotivationSelectorInterface, logger *slog.Logger) *MotivationHandler {
	return &MotivationHandler{selector: selector, logger: logger}
}

// Today は今日の名言と画像を返す。同じ日のうちは同じ組を返す。
// GET /api/motivation
func (h *MotivationHandler) Today(w http.ResponseWriter, r *http.Request) {
	state, err := h.selector.Today(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Refresh は名言と画像を引き直す。
// POST /api/motivation/refresh
func (h *MotivationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	state, err := h.selector.Refresh(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
