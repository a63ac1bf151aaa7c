// Package capture は閲覧中のページをブックマークとして取り込む機能を提供する。
//
// ページ側はキー操作を検出して SAVE_BOOKMARK メッセージを送り、
// バックグラウンド側の唯一のハンドラがブックマークを作成する。
package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/hitoshi/focusez/internal/model"
)

// MessageSaveBookmark はブックマーク保存メッセージの種別。
const MessageSaveBookmark = "SAVE_BOOKMARK"

// Message はページからバックグラウンドへの一方向メッセージ。
type Message struct {
	Type string                    `json:"type"`
	Data model.CreateBookmarkInput `json:"data"`
}

// Ack はメッセージに対する応答。
type Ack struct {
	Success bool `json:"success"`
}

// Handler は SAVE_BOOKMARK を処理する関数。
type Handler func(ctx context.Context, input model.CreateBookmarkInput) error

var (
	// ErrHandlerRegistered はハンドラが既に登録されていることを表す。
	ErrHandlerRegistered = errors.New("capture: handler already registered")
	// ErrNoHandler はハンドラが未登録のままメッセージが送られたことを表す。
	ErrNoHandler = errors.New("capture: no handler registered")
)

// Bus は1種類のメッセージを1つのハンドラへ届ける要求応答チャネル。
// ブロードキャストはしない。
type Bus struct {
	mu      sync.RWMutex
	handler Handler
}

// NewBus は空のBusを生成する。
func NewBus() *Bus {
	return &Bus{}
}

// Register はハンドラを登録する。登録できるのは1つだけ。
func (b *Bus) Register(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handler != nil {
		return ErrHandlerRegistered
	}
	b.handler = h
	return nil
}

// Send はメッセージをハンドラへ渡し、処理が終わるまで待つ。
// 未知の種別の場合はハンドラを呼ばずにエラーを返す。
func (b *Bus) Send(ctx context.Context, msg Message) (Ack, error) {
	if msg.Type != MessageSaveBookmark {
		return Ack{}, model.NewUnknownMessageError(msg.Type)
	}

	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()

	if h == nil {
		return Ack{}, ErrNoHandler
	}
	if err := h(ctx, msg.Data); err != nil {
		return Ack{Success: false}, err
	}
	return Ack{Success: true}, nil
}
