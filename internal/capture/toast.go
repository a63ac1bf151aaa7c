package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastDuration は確認メッセージの表示時間。
const ToastDuration = 3 * time.Second

// Toast は一定時間後に自動で消える確認メッセージ。
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Toaster は表示中の確認メッセージを保持する。期限切れのものは読み出し時に取り除く。
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

// NewToaster はToasterを生成する。
func NewToaster() *Toaster {
	return &Toaster{now: time.Now}
}

// Show は確認メッセージを追加し、ToastDuration後に消えるように登録する。
func (t *Toaster) Show(message string) Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	toast := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		ExpiresAt: t.now().Add(ToastDuration),
	}
	t.toasts = append(t.pruneLocked(), toast)
	return toast
}

// Active は期限切れでない確認メッセージを古い順に返す。
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.toasts = t.pruneLocked()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

func (t *Toaster) pruneLocked() []Toast {
	now := t.now()
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	return kept
}
