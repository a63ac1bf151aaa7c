package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// BookmarkServiceInterface はブックマークハンドラーが必要とするサービスインターフェース。
type BookmarkServiceInterface interface {
	List(ctx context.Context) ([]model.Bookmark, error)
	Display(ctx context.Context) ([]model.Bookmark, error)
	Create(ctx context.Context, input model.CreateBookmarkInput) (*model.Bookmark, error)
	Update(ctx context.Context, id string, patch model.BookmarkPatch) (*model.Bookmark, error)
	Delete(ctx context.Context, id string) error
}

// BookmarkHandler はブックマーク管理のHTTPハンドラー。
type BookmarkHandler struct {
	service BookmarkServiceInterface
	logger  *slog.Logger
}

// NewBookmarkHandler はBookmarkHandlerを生成する。
func NewBookmarkHandler(service BookmarkServiceInterface, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{service: service, logger: logger}
}

// List は保存順のブックマーク一覧を返す。
// GET /api/bookmarks
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilBookmarks(bookmarks))
}

// Display は新しい順の表示用ブックマークを返す。
// GET /api/bookmarks/display
func (h *BookmarkHandler) Display(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service.Display(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilBookmarks(bookmarks))
}

// Create はブックマークを作成する。
// POST /api/bookmarks
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.CreateBookmarkInput
	if !decodeJSON(w, r, &input, false) {
		return
	}
	bookmark, err := h.service.Create(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

// Update はブックマークを部分更新する。
// PATCH /api/bookmarks/{id}
func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.BookmarkPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}
	bookmark, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

// Delete はブックマークを削除する。
// DELETE /api/bookmarks/{id}
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNilBookmarks(bookmarks []model.Bookmark) []model.Bookmark {
	if bookmarks == nil {
		return []model.Bookmark{}
	}
	return bookmarks
}
