package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/focusez/internal/store"
)

// healthTimeout は1回のヘルスチェックでストアの応答を待つ上限。
const healthTimeout = 3 * time.Second

// HealthHandler はストアの疎通を確認するハンドラー。
type HealthHandler struct {
	pingers []store.Pinger
	logger  *slog.Logger
}

// NewHealthHandler はHealthHandlerを生成する。pingersが空の場合は常に正常を返す。
func NewHealthHandler(pingers []store.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pingers: pingers, logger: logger}
}

// Check は全ストアにPingし、いずれかが失敗した場合は503を返す。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	for _, p := range h.pingers {
		if err := p.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
