// Package layout はダッシュボードのウィジェット配置を管理する。
package layout

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/store"
)

// DefaultLayout は初期状態のウィジェット配置を返す。呼び出しごとに新しいスライスを返す。
func DefaultLayout() []model.WidgetDescriptor {
	return []model.WidgetDescriptor{
		{ID: model.WidgetTodos, Name: "Priority Tasks", Order: 0, Visible: true},
		{ID: model.WidgetTimer, Name: "Focus Timer", Order: 1, Visible: true},
		{ID: model.WidgetMotivation, Name: "Daily Motivation", Order: 2, Visible: true},
		{ID: model.WidgetBookmarks, Name: "Quick Bookmarks", Order: 3, Visible: true},
	}
}

// Manager はウィジェット配置の状態を保持し、変更をストアへ書き込む。
// 変更は常に配置全体を1回のSetで保存し、保存に成功した後でのみ
// 手元の状態を更新する。
type Manager struct {
	store  store.Store
	logger *slog.Logger

	mu      sync.RWMutex
	widgets []model.WidgetDescriptor
}

// NewManager はデフォルト配置で初期化されたManagerを生成する。
func NewManager(s store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:   s,
		logger:  logger,
		widgets: DefaultLayout(),
	}
}

// Load はストアから配置を読み込む。保存されていない場合や、
// 既知のウィジェットIDの並びとして不正な場合はデフォルト配置を使う。
func (m *Manager) Load(ctx context.Context) ([]model.WidgetDescriptor, error) {
	var stored []model.WidgetDescriptor
	found, err := store.GetJSON(ctx, m.store, store.KeyWidgetLayout, &stored)
	if err != nil {
		return nil, fmt.Errorf("レイアウトの読み込みに失敗しました: %w", err)
	}

	next := DefaultLayout()
	if found {
		if validLayout(stored) {
			next = stored
		} else {
			m.logger.Warn("stored layout is invalid, using default",
				slog.Int("widgets", len(stored)),
			)
		}
	}

	m.mu.Lock()
	m.widgets = next
	m.mu.Unlock()
	return slices.Clone(next), nil
}

// Widgets は現在の配置のコピーを返す。
func (m *Manager) Widgets() []model.WidgetDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.widgets)
}

// Reorder は指定ウィジェットを取り除いてnewPositionに挿入し、Orderを振り直す。
// newPositionは0..N-1に丸める。未知のIDの場合は何もしない。
func (m *Manager) Reorder(ctx context.Context, id model.WidgetID, newPosition int) ([]model.WidgetDescriptor, error) {
	return m.mutate(ctx, func(widgets []model.WidgetDescriptor) ([]model.WidgetDescriptor, bool) {
		idx := indexOf(widgets, id)
		if idx < 0 {
			return widgets, false
		}
		moved := widgets[idx]
		rest := slices.Delete(slices.Clone(widgets), idx, idx+1)
		pos := min(max(newPosition, 0), len(rest))
		next := slices.Insert(rest, pos, moved)
		for i := range next {
			next[i].Order = i
		}
		return next, true
	})
}

// ToggleVisible は指定ウィジェットの表示状態を反転する。未知のIDの場合は何もしない。
func (m *Manager) ToggleVisible(ctx context.Context, id model.WidgetID) ([]model.WidgetDescriptor, error) {
	return m.mutate(ctx, func(widgets []model.WidgetDescriptor) ([]model.WidgetDescriptor, bool) {
		idx := indexOf(widgets, id)
		if idx < 0 {
			return widgets, false
		}
		next := slices.Clone(widgets)
		next[idx].Visible = !next[idx].Visible
		return next, true
	})
}

// Reset はデフォルト配置に戻す。
func (m *Manager) Reset(ctx context.Context) ([]model.WidgetDescriptor, error) {
	return m.mutate(ctx, func([]model.WidgetDescriptor) ([]model.WidgetDescriptor, bool) {
		return DefaultLayout(), true
	})
}

// mutate はfnで次の配置を計算し、変更がある場合だけ保存して反映する。
func (m *Manager) mutate(ctx context.Context, fn func([]model.WidgetDescriptor) ([]model.WidgetDescriptor, bool)) ([]model.WidgetDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, changed := fn(m.widgets)
	if !changed {
		return slices.Clone(m.widgets), nil
	}
	if err := store.SetJSON(ctx, m.store, store.KeyWidgetLayout, next); err != nil {
		return nil, fmt.Errorf("レイアウトの保存に失敗しました: %w", err)
	}
	m.widgets = next
	return slices.Clone(next), nil
}

// Watch はストアの変更通知を購読し、widgetLayoutが変わるたびに再読み込みする。
// 別のコンテキストで行われた配置変更を反映するために使う。ctxがキャンセルされるまでブロックする。
func (m *Manager) Watch(ctx context.Context) {
	changes, cancel := m.store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if !slices.Contains(change.ChangedKeys, store.KeyWidgetLayout) {
				continue
			}
			if _, err := m.Load(ctx); err != nil {
				m.logger.Error("failed to reload layout", slog.String("error", err.Error()))
			}
		}
	}
}

func indexOf(widgets []model.WidgetDescriptor, id model.WidgetID) int {
	return slices.IndexFunc(widgets, func(w model.WidgetDescriptor) bool { return w.ID == id })
}

// validLayout は各既知IDがちょうど1つずつあり、Orderが0..N-1の順列になっているかを判定する。
func validLayout(widgets []model.WidgetDescriptor) bool {
	if len(widgets) != len(model.WidgetIDs) {
		return false
	}
	seenID := make(map[model.WidgetID]bool, len(widgets))
	seenOrder := make(map[int]bool, len(widgets))
	for _, w := range widgets {
		if !w.ID.Valid() || seenID[w.ID] {
			return false
		}
		if w.Order < 0 || w.Order >= len(widgets) || seenOrder[w.Order] {
			return false
		}
		seenID[w.ID] = true
		seenOrder[w.Order] = true
	}
	return true
}
