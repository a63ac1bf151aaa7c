// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/focusez/internal/middleware"
)

// AuthGateInterface は認証ハンドラーが必要とするトークン管理インターフェース。
type AuthGateInterface interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	OwnerID(ctx context.Context) (string, error)
}

// AuthFlowInterface は外部認証フローのインターフェース。
type AuthFlowInterface interface {
	LoginURL() string
	CompleteQuery(ctx context.Context, query url.Values) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	gate   AuthGateInterface
	flow   AuthFlowInterface
	logger *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(gate AuthGateInterface, flow AuthFlowInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, flow: flow, logger: logger}
}

// loginRequest はトークンを直接渡すログインリクエストのボディ。
type loginRequest struct {
	Token string `json:"token"`
}

// authStatusResponse は認証状態のAPIレスポンス。
type authStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	OwnerID       string `json:"ownerId"`
}

// StartLogin は外部認証フローへリダイレクトする。
// GET /auth/login
func (h *AuthHandler) StartLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.flow.LoginURL(), http.StatusTemporaryRedirect)
}

// Callback は認証フローのコールバックからトークンを取り出して保存する。
// GET /auth/callback?token=xxx または ?error=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.CompleteQuery(r.Context(), r.URL.Query()); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	h.Status(w, r)
}

// Login はトークンを直接保存する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := h.gate.Login(r.Context(), req.Token); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	h.Status(w, r)
}

// Logout はトークンを削除する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context()); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Status は現在の認証状態を返す。
// GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	authenticated, err := h.gate.IsAuthenticated(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	ownerID, err := h.gate.OwnerID(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authStatusResponse{
		Authenticated: authenticated,
		OwnerID:       ownerID,
	})
}
