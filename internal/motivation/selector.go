// Package motivation は日替わりの名言と背景画像を選択する。
package motivation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/store"
)

// MaxRedrawAttempts は手動更新で直前と同じ名言を引いたときに引き直す最大回数。
const MaxRedrawAttempts = 5

// dateLayout はカレンダー日のキー形式。
const dateLayout = "2006-01-02"

// Rand は選択に使う乱数源。
type Rand interface {
	IntN(n int) int
}

// globalRand はmath/rand/v2のトップレベル関数を使うRand。
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Selector はその日の名言と背景画像を選択し、ストアにキャッシュする。
// 同じカレンダー日のうちは同じ組み合わせを返す。
type Selector struct {
	store    store.Store
	logger   *slog.Logger
	location *time.Location

	now  func() time.Time
	rand Rand

	mu sync.Mutex
}

// NewSelector はSelectorを生成する。locがnilの場合はローカルタイムゾーンで日付を判定する。
func NewSelector(s store.Store, loc *time.Location, logger *slog.Logger) *Selector {
	if loc == nil {
		loc = time.Local
	}
	return &Selector{
		store:    s,
		logger:   logger,
		location: loc,
		now:      time.Now,
		rand:     globalRand{},
	}
}

// Today はその日の名言と画像を返す。キャッシュされた日付が今日と異なる場合は
// 新しく選択して保存する。
func (s *Selector) Today(ctx context.Context) (*model.MotivationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	cached, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Date == today {
		return cached, nil
	}

	next := &model.MotivationState{
		Quote:    s.drawQuote(),
		ImageURL: s.drawImage(),
		Date:     today,
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "selected daily motivation",
		slog.String("date", today),
		slog.String("author", next.Quote.Author),
	)
	return next, nil
}

// Refresh は新しい名言と画像を選択し、その日のキャッシュを上書きする。
// 直前と同じ名言を引いた場合はMaxRedrawAttempts回まで引き直し、それでも同じなら受け入れる。
func (s *Selector) Refresh(ctx context.Context) (*model.MotivationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	quote := s.drawQuote()
	if current != nil {
		for attempts := 0; quote.Text == current.Quote.Text && attempts < MaxRedrawAttempts; attempts++ {
			quote = s.drawQuote()
		}
	}

	next := &model.MotivationState{
		Quote:    quote,
		ImageURL: s.drawImage(),
		Date:     s.today(),
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Selector) today() string {
	return s.now().In(s.location).Format(dateLayout)
}

func (s *Selector) drawQuote() model.Quote {
	return Quotes[s.rand.IntN(len(Quotes))]
}

func (s *Selector) drawImage() string {
	return ImageURL(ImageIDs[s.rand.IntN(len(ImageIDs))])
}

// load は3つのキーからキャッシュを読み込む。いずれかが欠けている場合はnilを返す。
func (s *Selector) load(ctx context.Context) (*model.MotivationState, error) {
	var state model.MotivationState

	found, err := store.GetJSON(ctx, s.store, store.KeyMotivationQuote, &state.Quote)
	if err != nil || !found {
		return nil, wrapLoad(err)
	}
	found, err = store.GetJSON(ctx, s.store, store.KeyMotivationImage, &state.ImageURL)
	if err != nil || !found {
		return nil, wrapLoad(err)
	}
	found, err = store.GetJSON(ctx, s.store, store.KeyMotivationDate, &state.Date)
	if err != nil || !found {
		return nil, wrapLoad(err)
	}
	return &state, nil
}

func wrapLoad(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("名言の読み込みに失敗しました: %w", err)
}

// save は名言、画像、日付の順に書き込む。日付を最後に書くことで、途中で失敗しても
// 次回のTodayで選び直される。
func (s *Selector) save(ctx context.Context, state *model.MotivationState) error {
	if err := store.SetJSON(ctx, s.store, store.KeyMotivationQuote, state.Quote); err != nil {
		return fmt.Errorf("名言の保存に失敗しました: %w", err)
	}
	if err := store.SetJSON(ctx, s.store, store.KeyMotivationImage, state.ImageURL); err != nil {
		return fmt.Errorf("名言の保存に失敗しました: %w", err)
	}
	if err := store.SetJSON(ctx, s.store, store.KeyMotivationDate, state.Date); err != nil {
		return fmt.Errorf("名言の保存に失敗しました: %w", err)
	}
	return nil
}
