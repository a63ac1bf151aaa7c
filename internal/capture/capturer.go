package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/security"
)

// SavedMessage は取り込み成功時に表示する確認メッセージ。
const SavedMessage = "Bookmark saved!"

// maxPageSize は取り込み時に読み込むHTMLの最大サイズ（1MB）。
const maxPageSize = 1 * 1024 * 1024

// DefaultFetchTimeout はURLだけで取り込む際のページ取得タイムアウト。
const DefaultFetchTimeout = 10 * time.Second

// Result はキー入力を処理した結果。
type Result struct {
	// Handled がtrueの場合、呼び出し側はキーの既定動作（切り取り）を取り消す。
	Handled  bool                       `json:"handled"`
	Bookmark *model.CreateBookmarkInput `json:"bookmark,omitempty"`
	Ack      *Ack                       `json:"ack,omitempty"`
	Toast    *Toast                     `json:"toast,omitempty"`
}

// Capturer はページ側の取り込み処理。キー入力を判定し、Busへ送信し、確認メッセージを出す。
type Capturer struct {
	bus     *Bus
	toaster *Toaster
	guard   security.PageFetchGuard
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewCapturer はCapturerを生成する。guardがnilの場合はCaptureURLを使えない。
func NewCapturer(
	bus *Bus,
	toaster *Toaster,
	guard security.PageFetchGuard,
	timeout time.Duration,
	logger *slog.Logger,
	m metrics.MetricsCollector,
) *Capturer {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &Capturer{
		bus:     bus,
		toaster: toaster,
		guard:   guard,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Capture はキー入力が取り込みショートカットであればページを保存する。
// ショートカットでない場合はHandled=falseを返し、何もしない。
func (c *Capturer) Capture(ctx context.Context, event KeyEvent, page Page) (*Result, error) {
	if !event.IsTrigger() {
		return &Result{Handled: false}, nil
	}

	input, err := Extract(page)
	if err != nil {
		c.metrics.RecordCapture("invalid")
		return &Result{Handled: true}, err
	}
	return c.send(ctx, input)
}

// CaptureURL はURLのページを取得して保存する。
// 取得先はSSRFガードで検証し、プライベートネットワークへの接続は拒否する。
func (c *Capturer) CaptureURL(ctx context.Context, rawURL string) (*Result, error) {
	page, err := c.fetch(ctx, rawURL)
	if err != nil {
		c.metrics.RecordCapture("fetch_failed")
		return nil, err
	}
	input, err := Extract(*page)
	if err != nil {
		c.metrics.RecordCapture("invalid")
		return nil, err
	}
	return c.send(ctx, input)
}

func (c *Capturer) send(ctx context.Context, input model.CreateBookmarkInput) (*Result, error) {
	ack, err := c.bus.Send(ctx, Message{Type: MessageSaveBookmark, Data: input})
	if err != nil {
		c.metrics.RecordCapture("failed")
		c.logger.WarnContext(ctx, "bookmark capture failed",
			slog.String("url", input.URL),
			slog.String("error", err.Error()),
		)
		return &Result{Handled: true, Bookmark: &input, Ack: &ack}, err
	}

	toast := c.toaster.Show(SavedMessage)
	c.metrics.RecordCapture("saved")
	return &Result{Handled: true, Bookmark: &input, Ack: &ack, Toast: &toast}, nil
}

// fetch はページを取得する。HTML以外の応答はタイトル無しのページとして扱う。
func (c *Capturer) fetch(ctx context.Context, rawURL string) (*Page, error) {
	if c.guard == nil {
		return nil, fmt.Errorf("page fetch is not configured")
	}
	if err := c.guard.Validate(rawURL); err != nil {
		return nil, model.NewValidationError("url", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewValidationError("url", err.Error())
	}
	req.Header.Set("User-Agent", "Focusez/1.0 Bookmark Capture")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.guard.NewClient(c.timeout).Do(req)
	if err != nil {
		return nil, &model.NetworkError{Method: http.MethodGet, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.NetworkError{Method: http.MethodGet, URL: rawURL, StatusCode: resp.StatusCode}
	}

	page := &Page{URL: resp.Request.URL.String()}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return page, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, &model.NetworkError{Method: http.MethodGet, URL: rawURL, Err: err}
	}
	page.HTML = string(body)
	return page, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || strings.HasSuffix(mediaType, "+xml")
}
