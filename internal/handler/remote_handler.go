package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/focusez/internal/apiclient"
	"github.com/hitoshi/focusez/internal/middleware"
)

// RemoteAPIInterface は外部REST APIを呼び出すクライアントのインターフェース。
type RemoteAPIInterface interface {
	Do(ctx context.Context, method, endpoint string, body, out any, opts ...apiclient.CallOption) error
}

// RemoteHandler は /api/remote/* を外部REST APIの /api/* へ中継するハンドラー。
// 保存されているトークンがあればBearerとして付与される。
type RemoteHandler struct {
	api    RemoteAPIInterface
	logger *slog.Logger
}

// NewRemoteHandler はRemoteHandlerを生成する。
func NewRemoteHandler(api RemoteAPIInterface, logger *slog.Logger) *RemoteHandler {
	return &RemoteHandler{api: api, logger: logger}
}

// Forward はリクエストを中継し、応答のJSONをそのまま返す。
// 外部APIの非2xx応答と通信失敗は502になる。
// ANY /api/remote/*
func (h *RemoteHandler) Forward(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "*")
	if r.URL.RawQuery != "" {
		endpoint += "?" + r.URL.RawQuery
	}

	var body any
	if r.ContentLength != 0 && r.Method != http.MethodGet && r.Method != http.MethodHead {
		var raw json.RawMessage
		if !decodeJSON(w, r, &raw, true) {
			return
		}
		if len(raw) > 0 {
			body = raw
		}
	}

	var out json.RawMessage
	if err := h.api.Do(r.Context(), r.Method, endpoint, body, &out); err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	if len(out) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
