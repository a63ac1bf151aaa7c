package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/store"
)

const (
	// eventsWriteWait は1メッセージの書き込み期限。
	eventsWriteWait = 10 * time.Second
	// eventsPingInterval はキープアライブのping間隔。pongWaitより短くする。
	eventsPingInterval = 30 * time.Second
	eventsPongWait     = 60 * time.Second
)

// ChangeSubscriber は変更通知を購読できるストア。
type ChangeSubscriber interface {
	Subscribe() (<-chan store.Change, func())
}

// EventsHandler はストアの変更通知をWebSocketで配信するハンドラー。
type EventsHandler struct {
	sources  []ChangeSubscriber
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler はEventsHandlerを生成する。
// 許可オリジン以外からの接続はハンドシェイクで拒否する。
func NewEventsHandler(sources []ChangeSubscriber, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		sources: sources,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: eventsWriteWait,
			ReadBufferSize:   1024,
			WriteBufferSize:  4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(r, allowedOrigins)
			},
		},
		logger: logger,
	}
}

// Stream は接続が閉じられるまで {changedKeys, area} をJSONテキストメッセージで送り続ける。
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// ハンドシェイク完了直後の変更も届くよう、アップグレード前に購読する
	changes, closed := h.merge(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade が既にエラーレスポンスを書き込んでいる
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// クライアントからのメッセージは読み捨て、切断を検知したら終了する
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "store closed"),
				time.Now().Add(eventsWriteWait))
			return
		case change := <-changes:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
		}
	}
}

// merge は全ストアの購読を1本のチャネルにまとめる。
// ctxの終了時に購読を解除する。いずれかのストアが閉じられるとclosedが閉じられる。
func (h *EventsHandler) merge(ctx context.Context) (changes <-chan store.Change, closed <-chan struct{}) {
	out := make(chan store.Change)
	done := make(chan struct{})
	var once sync.Once

	for _, src := range h.sources {
		ch, unsubscribe := src.Subscribe()
		go func() {
			defer unsubscribe()
			for {
				select {
				case <-ctx.Done():
					return
				case change, ok := <-ch:
					if !ok {
						once.Do(func() { close(done) })
						return
					}
					select {
					case out <- change:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
	return out, done
}
