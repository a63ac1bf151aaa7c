package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// TimerInterface はタイマーハンドラーが必要とするインターフェース。
type TimerInterface interface {
	Session() *model.TimerSession
	Start(ctx context.Context, taskName string, minutes int) (bool, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
}

// TimerHandler はフォーカスタイマーのHTTPハンドラー。
type TimerHandler struct {
	timer  TimerInterface
	logger *slog.Logger
}

// NewTimerHandler はTimerHandlerを生成する。
func NewTimerHandler(timer TimerInterface, logger *slog.Logger) *TimerHandler {
	return &TimerHandler{timer: timer, logger: logger}
}

// timerStartRequest はタイマー開始リクエストのボディ。
type timerStartRequest struct {
	TaskName string `json:"taskName"`
	Minutes  int    `json:"minutes"`
}

// timerResponse はタイマー状態のAPIレスポンス。セッションが無い場合はnull。
type timerResponse struct {
	Session *model.TimerSession `json:"session"`
}

// Get は現在のセッションを返す。
// GET /api/timer
func (h *TimerHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timerResponse{Session: h.timer.Session()})
}

// Start はセッションを開始する。タスク名が空または分数が0以下の場合は何もしない。
// POST /api/timer/start
func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req timerStartRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	started, err := h.timer.Start(r.Context(), req.TaskName, req.Minutes)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Started bool                `json:"started"`
		Session *model.TimerSession `json:"session"`
	}{Started: started, Session: h.timer.Session()})
}

// Pause はカウントダウンを一時停止する。
// POST /api/timer/pause
func (h *TimerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.timer.Pause(r.Context()))
}

// Resume は一時停止したカウントダウンを再開する。
// POST /api/timer/resume
func (h *TimerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.timer.Resume(r.Context()))
}

// Stop はセッションを破棄する。
// POST /api/timer/stop
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.timer.Stop(r.Context()))
}

func (h *TimerHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, timerResponse{Session: h.timer.Session()})
}
