package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/focusez/internal/model"
)

// --- モック定義 ---

// openGuard はhttptestサーバーへの接続を許可するガード。
type openGuard struct {
	validateErr error
}

func (g openGuard) NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (g openGuard) Validate(rawURL string) error { return g.validateErr }

type recordingHandler struct {
	inputs []model.CreateBookmarkInput
	err    error
}

func (h *recordingHandler) handle(ctx context.Context, in model.CreateBookmarkInput) error {
	h.inputs = append(h.inputs, in)
	return h.err
}

func newTestCapturer(t *testing.T, guard openGuard) (*Capturer, *recordingHandler, *Toaster) {
	t.Helper()
	bus := NewBus()
	h := &recordingHandler{}
	if err := bus.Register(h.handle); err != nil {
		t.Fatal(err)
	}
	toaster := NewToaster()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewCapturer(bus, toaster, guard, time.Second, logger, nil), h, toaster
}

func TestCapture_NonTriggerIgnored(t *testing.T) {
	c, h, toaster := newTestCapturer(t, openGuard{})

	res, err := c.Capture(context.Background(), KeyEvent{Key: "c", Ctrl: true}, Page{Title: "x", URL: "https://x.com"})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if res.Handled {
		t.Error("non-trigger key should not be handled")
	}
	if len(h.inputs) != 0 || len(toaster.Active()) != 0 {
		t.Error("nothing should be sent or shown")
	}
}

func TestCapture_TriggerSavesAndToasts(t *testing.T) {
	c, h, toaster := newTestCapturer(t, openGuard{})

	res, err := c.Capture(context.Background(),
		KeyEvent{Key: "x", Meta: true},
		Page{Title: "Go", URL: "https://go.dev/doc/"},
	)
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if !res.Handled || res.Ack == nil || !res.Ack.Success {
		t.Errorf("result = %+v, want handled with success ack", res)
	}
	if len(h.inputs) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(h.inputs))
	}
	want := model.CreateBookmarkInput{Title: "Go", URL: "https://go.dev/doc/", Favicon: "https://go.dev/favicon.ico"}
	if h.inputs[0] != want {
		t.Errorf("sent = %+v, want %+v", h.inputs[0], want)
	}
	active := toaster.Active()
	if len(active) != 1 || active[0].Message != SavedMessage {
		t.Errorf("toasts = %+v, want one %q", active, SavedMessage)
	}
}

func TestCapture_HandlerErrorNoToast(t *testing.T) {
	c, h, toaster := newTestCapturer(t, openGuard{})
	h.err = errors.New("store down")

	res, err := c.Capture(context.Background(), KeyEvent{Key: "x", Ctrl: true}, Page{Title: "Go", URL: "https://go.dev"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !res.Handled {
		t.Error("trigger should still be reported as handled")
	}
	if len(toaster.Active()) != 0 {
		t.Error("no confirmation should be shown on failure")
	}
}

func TestCaptureURL_FetchesPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><head><title>Fetched &amp; Parsed</title><link rel="icon" href="/static/fav.png"></head></html>`)
	}))
	defer ts.Close()

	c, h, _ := newTestCapturer(t, openGuard{})
	res, err := c.CaptureURL(context.Background(), ts.URL+"/article")
	if err != nil {
		t.Fatalf("CaptureURL returned error: %v", err)
	}
	if res.Bookmark == nil {
		t.Fatal("expected bookmark in result")
	}
	if len(h.inputs) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(h.inputs))
	}
	got := h.inputs[0]
	if got.Title != "Fetched & Parsed" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.URL != ts.URL+"/article" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Favicon != ts.URL+"/static/fav.png" {
		t.Errorf("Favicon = %q", got.Favicon)
	}
}

func TestCaptureURL_NonHTMLUsesURLAsTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer ts.Close()

	c, h, _ := newTestCapturer(t, openGuard{})
	if _, err := c.CaptureURL(context.Background(), ts.URL+"/paper.pdf"); err != nil {
		t.Fatalf("CaptureURL returned error: %v", err)
	}
	if h.inputs[0].Title != ts.URL+"/paper.pdf" {
		t.Errorf("Title = %q, want URL", h.inputs[0].Title)
	}
}

func TestCaptureURL_BlockedByGuard(t *testing.T) {
	c, h, _ := newTestCapturer(t, openGuard{validateErr: errors.New("blocked IP address")})

	_, err := c.CaptureURL(context.Background(), "http://10.0.0.1/")
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(h.inputs) != 0 {
		t.Error("handler must not be called for blocked URLs")
	}
}

func TestCaptureURL_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c, _, _ := newTestCapturer(t, openGuard{})
	_, err := c.CaptureURL(context.Background(), ts.URL)
	var netErr *model.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusNotFound {
		t.Fatalf("error = %v, want NetworkError 404", err)
	}
}

func TestCaptureURL_WithoutGuard(t *testing.T) {
	bus := NewBus()
	c := NewCapturer(bus, NewToaster(), nil, 0, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)

	if _, err := c.CaptureURL(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error when no guard is configured")
	}
}
