// Package repository はストアの1キーに保存されたレコード集合の永続化を提供する。
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/hitoshi/focusez/internal/store"
)

// ErrNotFound は指定IDのレコードがコレクションに存在しないことを表す。
var ErrNotFound = errors.New("record not found")

// Record はコレクションに格納できるレコード。IDはコレクション内で一意。
type Record interface {
	RecordID() string
}

// Collection はストアの1キーにJSON配列として保存されたレコード集合。
// すべての変更はコレクション全体の読み込み・変更・書き込みで行い、
// 1回の変更につきストアへの書き込みは1回だけ行う。
//
// 同一プロセス内の変更はmuで直列化するが、別プロセスからの書き込みとは
// 後勝ちで競合する。
type Collection[T Record] struct {
	store store.Store
	key   string
	mu    sync.Mutex
}

// NewCollection はkeyに束縛されたCollectionを生成する。
func NewCollection[T Record](s store.Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

// Key はコレクションのストアキーを返す。
func (c *Collection[T]) Key() string { return c.key }

// List は保存されている全レコードを保存順で返す。キーが存在しない場合は空スライスを返す。
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var records []T
	if _, err := store.GetJSON(ctx, c.store, c.key, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Find は指定IDのレコードを返す。見つからない場合はErrNotFoundを返す。
func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	records, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

// Append はレコードを末尾に追加して保存する。
func (c *Collection[T]) Append(ctx context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.List(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return store.SetJSON(ctx, c.store, c.key, records)
}

// Replace は指定IDのレコードをfnの戻り値で置き換えて保存する。
// 見つからない場合はErrNotFoundを返し、fnがエラーを返した場合は保存しない。
func (c *Collection[T]) Replace(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.List(ctx)
	if err != nil {
		return zero, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return zero, ErrNotFound
	}

	updated, err := fn(records[idx])
	if err != nil {
		return zero, err
	}
	records[idx] = updated

	if err := store.SetJSON(ctx, c.store, c.key, records); err != nil {
		return zero, err
	}
	return updated, nil
}

// Remove は指定IDのレコードを削除して保存する。
// 見つからない場合は何も書き込まずremoved=falseを返す。
func (c *Collection[T]) Remove(ctx context.Context, id string) (removed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.List(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOf(records, id)
	if idx < 0 {
		return false, nil
	}
	records = append(records[:idx], records[idx+1:]...)

	if err := store.SetJSON(ctx, c.store, c.key, records); err != nil {
		return false, err
	}
	return true, nil
}

func indexOf[T Record](records []T, id string) int {
	for i, r := range records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}
