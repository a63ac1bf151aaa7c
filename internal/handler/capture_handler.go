package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/focusez/internal/capture"
	"github.com/hitoshi/focusez/internal/middleware"
)

// MessengerInterface はメッセージ送信に必要なインターフェース。
type MessengerInterface interface {
	Send(ctx context.Context, msg capture.Message) (capture.Ack, error)
}

// CapturerInterface はキャプチャハンドラーが必要とするインターフェース。
type CapturerInterface interface {
	Capture(ctx context.Context, event capture.KeyEvent, page capture.Page) (*capture.Result, error)
	CaptureURL(ctx context.Context, rawURL string) (*capture.Result, error)
}

// ToastListerInterface は表示中の確認メッセージを返すインターフェース。
type ToastListerInterface interface {
	Active() []capture.Toast
}

// CaptureHandler はページ取り込みとメッセージ送信のHTTPハンドラー。
type CaptureHandler struct {
	messenger MessengerInterface
	capturer  CapturerInterface
	toasts    ToastListerInterface
	logger    *slog.Logger
}

// NewCaptureHandler はCaptureHandlerを生成する。
func NewCaptureHandler(
	messenger MessengerInterface,
	capturer CapturerInterface,
	toasts ToastListerInterface,
	logger *slog.Logger,
) *CaptureHandler {
	return &CaptureHandler{
		messenger: messenger,
		capturer:  capturer,
		toasts:    toasts,
		logger:    logger,
	}
}

// captureRequest はキャプチャリクエストのボディ。
// URLだけが指定された場合はサーバー側でページを取得する。
type captureRequest struct {
	capture.KeyEvent
	Page *capture.Page `json:"page,omitempty"`
	URL  string        `json:"url,omitempty"`
}

// SendMessage はメッセージをバックグラウンドのハンドラへ届ける。
// POST /api/messages
func (h *CaptureHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var msg capture.Message
	if !decodeJSON(w, r, &msg, false) {
		return
	}
	ack, err := h.messenger.Send(r.Context(), msg)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// Capture はキー入力またはURLからブックマークを取り込む。
// POST /api/capture
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	var (
		result *capture.Result
		err    error
	)
	if req.Page == nil && req.URL != "" {
		result, err = h.capturer.CaptureURL(r.Context(), req.URL)
	} else {
		var page capture.Page
		if req.Page != nil {
			page = *req.Page
		}
		result, err = h.capturer.Capture(r.Context(), req.KeyEvent, page)
	}
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Toasts は表示中の確認メッセージを返す。
// GET /api/toasts
func (h *CaptureHandler) Toasts(w http.ResponseWriter, r *http.Request) {
	toasts := h.toasts.Active()
	if toasts == nil {
		toasts = []capture.Toast{}
	}
	writeJSON(w, http.StatusOK, toasts)
}
