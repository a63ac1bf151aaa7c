package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/hitoshi/focusez/internal/model"
)

// NewOriginGuardMiddleware は状態変更リクエストのOriginを検証するミドルウェアを返す。
// ローカルで動くサーバーに対し、任意のWebページからのクロスサイトPOSTを拒否する。
// 安全なメソッド（GET, HEAD, OPTIONS）とOriginヘッダーの無いリクエスト（CLIなど）は通す。
func NewOriginGuardMiddleware(allowedOrigins []string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || OriginAllowed(r, allowedOrigins) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("origin check failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("origin", r.Header.Get("Origin")),
			)
			WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
				Code:     model.ErrCodeForbiddenOrigin,
				Message:  "許可されていないオリジンからのリクエストです。",
				Category: "auth",
				Action:   "ダッシュボードの画面から操作してください。",
			})
		})
	}
}

// OriginAllowed はリクエストのOriginが許可されているかを判定する。
// Originが無い場合と、Hostと同一オリジンの場合は許可する。
// WebSocketのCheckOriginでも使用する。
func OriginAllowed(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(allowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host != "" && u.Host == r.Host
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
