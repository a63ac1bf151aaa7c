// Package store はダッシュボードの永続化に使う非同期キーバリューストアを提供する。
//
// 値はキーごとに1つのJSON文書として保存される。コレクションの更新は
// 文書全体の読み込み・変更・書き込みで行い、書き込みは後勝ちになる。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/hitoshi/focusez/internal/model"
)

// Area はストアの領域。authTokenだけが同期可能な領域に置かれる。
type Area string

const (
	// AreaLocal はこの端末だけの領域。
	AreaLocal Area = "local"
	// AreaSync は同期可能な領域。
	AreaSync Area = "sync"
)

// ストアのキー
const (
	KeyTodos           = "todos"
	KeyBookmarks       = "bookmarks"
	KeyWidgetLayout    = "widgetLayout"
	KeyFocusTimer      = "focusTimer"
	KeyMotivationQuote = "motivationQuote"
	KeyMotivationDate  = "motivationDate"
	KeyMotivationImage = "motivationImage"
	KeyAuthToken       = "authToken"
)

// Change は変更通知。ChangedKeysには書き込みまたは削除されたキーが入る。
type Change struct {
	ChangedKeys []string `json:"changedKeys"`
	Area        Area     `json:"area"`
}

// Store はキーバリューストアのインターフェース。
// 実装は複数goroutineから同時に呼び出されても安全でなければならない。
type Store interface {
	// Get はキーの値を返す。キーが存在しない場合はfound=falseを返す。
	Get(ctx context.Context, key string) (value json.RawMessage, found bool, err error)
	// Set はキーの値を上書きする。
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Remove はキーを削除する。存在しない場合も成功する。
	Remove(ctx context.Context, key string) error
	// Subscribe は変更通知を受け取るチャネルを返す。
	// cancelを呼ぶと購読を終了しチャネルを閉じる。
	Subscribe() (changes <-chan Change, cancel func())
	// Area はこのストアの領域を返す。
	Area() Area
}

// Pinger は接続確認が可能なストア。ヘルスチェックで使用する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ErrClosed はクローズ済みのストアへの操作を表す。
var ErrClosed = errors.New("store: closed")

// GetJSON はキーの値をvにデコードする。キーが存在しない場合はfalseを返しvを変更しない。
// ストアの失敗はmodel.StoreErrorとして返す。
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return false, &model.StoreError{Op: "get", Key: key, Err: err}
	}
	if !found || len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, &model.StoreError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// SetJSON はvをJSONにエンコードしてキーに書き込む。
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &model.StoreError{Op: "encode", Key: key, Err: err}
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return &model.StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Remove はキーを削除し、失敗をmodel.StoreErrorとして返す。
func Remove(ctx context.Context, s Store, key string) error {
	if err := s.Remove(ctx, key); err != nil {
		return &model.StoreError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// subscriberBuffer は購読チャネルのバッファサイズ。
// 受信が追いつかない購読者への通知は破棄し、書き込み側をブロックしない。
const subscriberBuffer = 32

// hub は変更通知の配信を管理する。各バックエンドが埋め込んで使う。
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
	closed bool
}

func (h *hub) subscribe() (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.subs == nil {
		h.subs = make(map[int]chan Change)
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *hub) publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
