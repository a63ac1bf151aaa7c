package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/focusez/internal/model"
)

func TestWebFlow_LoginURL(t *testing.T) {
	g, _ := newTestGate(t)

	tests := []struct {
		name     string
		base     string
		callback string
		want     string
	}{
		{"no callback", "http://localhost:3000", "", "http://localhost:3000/auth/google"},
		{"trailing slash", "https://api.example.com/", "", "https://api.example.com/auth/google"},
		{
			"with callback",
			"http://localhost:3000",
			"http://localhost:8080/auth/callback",
			"http://localhost:3000/auth/google?redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fauth%2Fcallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewWebFlow(g, tt.base, tt.callback, testLogger())
			if got := f.LoginURL(); got != tt.want {
				t.Errorf("LoginURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWebFlow_CompleteStoresToken(t *testing.T) {
	g, _ := newTestGate(t)
	f := NewWebFlow(g, "http://localhost:3000", "", testLogger())
	ctx := context.Background()

	if err := f.Complete(ctx, "https://ext.example/callback?token=abc123"); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if token, _ := g.Token(ctx); token != "abc123" {
		t.Errorf("Token = %q, want abc123", token)
	}
}

func TestWebFlow_CompleteFailures(t *testing.T) {
	ctx := context.Background()

	for _, callback := range []string{
		"https://ext.example/callback",
		"https://ext.example/callback?token=",
		"https://ext.example/callback?error=access_denied",
		"https://ext.example/callback?error=access_denied&token=abc",
		"://bad url",
	} {
		t.Run(callback, func(t *testing.T) {
			g, _ := newTestGate(t)
			f := NewWebFlow(g, "http://localhost:3000", "", testLogger())

			err := f.Complete(ctx, callback)
			var afErr *model.AuthFlowError
			if !errors.As(err, &afErr) {
				t.Fatalf("error = %v, want AuthFlowError", err)
			}
			if ok, _ := g.IsAuthenticated(ctx); ok {
				t.Error("failed flow must not log in")
			}
		})
	}
}
