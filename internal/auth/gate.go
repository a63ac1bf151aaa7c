// Package auth はトークンの有無によるログイン状態の管理と、外部認証フローを提供する。
//
// トークンの真正性や有効期限は検証しない。ストアにトークンがあればログイン済みとみなす。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/store"
)

// LocalOwnerID はトークンから所有者を特定できない場合の所有者ID。
const LocalOwnerID = "local-user"

// Gate はsync領域のauthTokenでログイン状態を管理する。
type Gate struct {
	store  store.Store
	logger *slog.Logger
	parser *jwt.Parser
}

// NewGate はGateを生成する。sはsync領域のストアであること。
func NewGate(s store.Store, logger *slog.Logger) *Gate {
	return &Gate{
		store:  s,
		logger: logger,
		parser: jwt.NewParser(),
	}
}

// Token は保存されているトークンを返す。無い場合は空文字列を返す。
func (g *Gate) Token(ctx context.Context) (string, error) {
	var token string
	if _, err := store.GetJSON(ctx, g.store, store.KeyAuthToken, &token); err != nil {
		return "", fmt.Errorf("トークンの読み込みに失敗しました: %w", err)
	}
	return token, nil
}

// IsAuthenticated はトークンが保存されているかを返す。
func (g *Gate) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := g.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Login はトークンを保存する。空のトークンだけを拒否する。
func (g *Gate) Login(ctx context.Context, token string) error {
	if token == "" {
		return model.NewValidationError("token", "required")
	}
	if err := store.SetJSON(ctx, g.store, store.KeyAuthToken, token); err != nil {
		return fmt.Errorf("トークンの保存に失敗しました: %w", err)
	}
	g.logger.InfoContext(ctx, "logged in")
	return nil
}

// Logout はトークンを削除する。
func (g *Gate) Logout(ctx context.Context) error {
	if err := store.Remove(ctx, g.store, store.KeyAuthToken); err != nil {
		return fmt.Errorf("トークンの削除に失敗しました: %w", err)
	}
	g.logger.InfoContext(ctx, "logged out")
	return nil
}

// OwnerID は新しく作るレコードの所有者IDを返す。
// トークンがJWTであれば署名を検証せずにsubクレームを使い、それ以外はLocalOwnerIDを返す。
func (g *Gate) OwnerID(ctx context.Context) (string, error) {
	token, err := g.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return LocalOwnerID, nil
	}
	return subjectOf(g.parser, token), nil
}

func subjectOf(parser *jwt.Parser, token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return LocalOwnerID
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return LocalOwnerID
	}
	return sub
}
