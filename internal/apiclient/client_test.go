package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/focusez/internal/model"
)

// --- モック定義 ---

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(ctx context.Context) (string, error) { return s.token, s.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestDo_SendsBearerAndDecodes(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","name":"first"}`)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, staticTokens{token: "tok-123"}, testLogger(), nil)

	var out item
	if err := c.Get(context.Background(), "todos/1", &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if gotPath != "/api/todos/1" {
		t.Errorf("path = %q, want /api/todos/1", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if out.ID != "1" || out.Name != "first" {
		t.Errorf("out = %+v", out)
	}
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, staticTokens{}, testLogger(), nil)
	if err := c.Delete(context.Background(), "todos/1", nil); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestDo_WithoutAuthSkipsToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, staticTokens{token: "tok"}, testLogger(), nil)
	if err := c.Get(context.Background(), "public", nil, WithoutAuth()); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestDo_PostsJSONBody(t *testing.T) {
	var got item
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"id":"9","name":"new"}` {
			t.Errorf("body = %s", body)
		}
		if r.Header.Get("X-Request-Source") != "dashboard" {
			t.Error("expected custom header")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"9","name":"new"}`)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL + "/"}, nil, testLogger(), nil)
	err := c.Post(context.Background(), "/todos", item{ID: "9", Name: "new"}, &got, WithHeader("X-Request-Source", "dashboard"))
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if got.ID != "9" {
		t.Errorf("got = %+v", got)
	}
}

func TestDo_NonOKIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, staticTokens{token: "t"}, testLogger(), nil)
	err := c.Put(context.Background(), "todos/1", item{}, nil)

	var netErr *model.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want NetworkError", err)
	}
	if netErr.StatusCode != http.StatusUnauthorized || netErr.Method != http.MethodPut {
		t.Errorf("NetworkError = %+v", netErr)
	}
}

func TestDo_TransportFailureIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := New(Config{BaseURL: url}, nil, testLogger(), nil)
	err := c.Patch(context.Background(), "todos/1", item{}, nil)

	var netErr *model.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want NetworkError", err)
	}
	if netErr.StatusCode != 0 || netErr.Err == nil {
		t.Errorf("NetworkError = %+v, want transport error", netErr)
	}
}

func TestDo_TokenSourceError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, staticTokens{err: errors.New("store down")}, testLogger(), nil)
	if err := c.Get(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error from token source")
	}
}

func TestURL(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:3000/"}, nil, testLogger(), nil)
	if got := c.URL("/todos"); got != "http://localhost:3000/api/todos" {
		t.Errorf("URL = %q", got)
	}
}

func TestMetricEndpoint(t *testing.T) {
	tests := map[string]string{
		"todos":         "todos",
		"/todos/123":    "todos",
		"bookmarks?x=1": "bookmarks",
		"":              "",
	}
	for in, want := range tests {
		if got := metricEndpoint(in); got != want {
			t.Errorf("metricEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDo_RateLimitCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL, RateLimit: 0.001, Burst: 1}, nil, testLogger(), nil)
	ctx := context.Background()
	if err := c.Get(ctx, "a", nil); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := c.Get(ctx, "a", nil); err == nil {
		t.Fatal("expected error when limiter wait is cancelled")
	}
}
