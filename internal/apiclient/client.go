// Package apiclient は外部REST APIの汎用クライアントを提供する。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/model"
)

// DefaultTimeout はAPI呼び出しのタイムアウト。
const DefaultTimeout = 15 * time.Second

// maxErrorBody はエラー応答からログに残す本文の最大長。
const maxErrorBody = 512

// TokenSource は保存されているセッショントークンを返す。無い場合は空文字列。
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config はクライアントの設定。
type Config struct {
	BaseURL   string        // 例: http://localhost:3000
	Timeout   time.Duration // 0の場合はDefaultTimeout
	RateLimit float64       // 1秒あたりのリクエスト数。0以下で無制限
	Burst     int
}

// Client は {BaseURL}/api/{endpoint} へJSONで要求を送るクライアント。
// リトライはしない。
type Client struct {
	baseURL string
	tokens  TokenSource
	base    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// New はClientを生成する。
func New(cfg Config, tokens TokenSource, logger *slog.Logger, m metrics.MetricsCollector) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
		base:    &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

type callOptions struct {
	requireAuth bool
	header      http.Header
}

// CallOption はDoの呼び出しごとの設定。
type CallOption func(*callOptions)

// WithoutAuth はAuthorizationヘッダーを付けずに呼び出す。
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.requireAuth = false }
}

// WithHeader は追加のリクエストヘッダーを設定する。
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) { o.header.Set(key, value) }
}

// Do はendpointへmethodで要求を送る。bodyがnilでなければJSONとして送信し、
// outがnilでなければ応答本文をJSONとしてデコードする。
// 認証が必要な呼び出し（既定）でトークンが保存されている場合は Bearer トークンを付与する。
// 2xx以外の応答や通信の失敗はmodel.NetworkErrorを返す。
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...CallOption) error {
	o := callOptions{requireAuth: true, header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}

	url := c.URL(endpoint)

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range o.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := c.base
	if o.requireAuth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		client = c.authorized(token)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &model.NetworkError{Method: method, URL: url, Err: err}
	}

	start := time.Now()
	resp, err := client.Do(req)
	c.metrics.RecordAPILatency(metricEndpoint(endpoint), time.Since(start))
	if err != nil {
		c.logger.ErrorContext(ctx, "API call failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return &model.NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.ErrorContext(ctx, "API call failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)),
		)
		return &model.NetworkError{Method: method, URL: url, StatusCode: resp.StatusCode}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return &model.NetworkError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Get はGET要求を送る。
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

// Post はPOST要求を送る。
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

// Put はPUT要求を送る。
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, opts...)
}

// Patch はPATCH要求を送る。
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, opts...)
}

// Delete はDELETE要求を送る。
func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, opts...)
}

// URL はendpointの完全なURLを返す。
func (c *Client) URL(endpoint string) string {
	return c.baseURL + "/api/" + strings.TrimLeft(endpoint, "/")
}

// authorized はトークンをBearerとして付与するクライアントを返す。トークンが空なら素のクライアント。
func (c *Client) authorized(token string) *http.Client {
	if token == "" {
		return c.base
	}
	return &http.Client{
		Timeout: c.base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base.Transport,
		},
	}
}

// metricEndpoint はメトリクスのラベルに使うendpointの先頭セグメントを返す。
// IDを含むパスでラベルが増え続けないようにする。
func metricEndpoint(endpoint string) string {
	e := strings.TrimLeft(endpoint, "/")
	if i := strings.IndexAny(e, "/?"); i >= 0 {
		e = e[:i]
	}
	return e
}
