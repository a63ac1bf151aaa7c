package auth

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/focusez/internal/model"
)

// WebFlow は外部APIのブラウザ認証フロー。
// ログインURLへ遷移させ、コールバックURLのtokenクエリパラメータを受け取ってログインする。
type WebFlow struct {
	gate        *Gate
	apiBaseURL  string
	callbackURL string
	logger      *slog.Logger
}

// NewWebFlow はWebFlowを生成する。callbackURLが空でなければログインURLにredirect_uriとして付与する。
func NewWebFlow(gate *Gate, apiBaseURL, callbackURL string, logger *slog.Logger) *WebFlow {
	return &WebFlow{
		gate:        gate,
		apiBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// LoginURL は認証開始URL（{API_BASE}/auth/google）を返す。
func (f *WebFlow) LoginURL() string {
	loginURL := f.apiBaseURL + "/auth/google"
	if f.callbackURL == "" {
		return loginURL
	}
	return loginURL + "?" + url.Values{"redirect_uri": {f.callbackURL}}.Encode()
}

// Complete はコールバックURLからトークンを取り出してログインする。
// errorパラメータがある場合やトークンが無い場合はAuthFlowErrorを返し、状態は変更しない。
func (f *WebFlow) Complete(ctx context.Context, callbackURL string) error {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return f.fail(ctx, "invalid callback url")
	}
	return f.CompleteQuery(ctx, u.Query())
}

// CompleteQuery はコールバックのクエリパラメータからトークンを取り出してログインする。
func (f *WebFlow) CompleteQuery(ctx context.Context, query url.Values) error {
	if reason := query.Get("error"); reason != "" {
		return f.fail(ctx, reason)
	}
	token := strings.TrimSpace(query.Get("token"))
	if token == "" {
		return f.fail(ctx, "no token in callback")
	}
	return f.gate.Login(ctx, token)
}

func (f *WebFlow) fail(ctx context.Context, reason string) error {
	f.logger.WarnContext(ctx, "auth flow failed", slog.String("reason", reason))
	return &model.AuthFlowError{Reason: reason}
}
