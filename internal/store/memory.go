package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore はプロセス内メモリに保持するストア。テストと STORE_DRIVER=memory で使用する。
type MemoryStore struct {
	area Area

	mu     sync.RWMutex
	values map[string][]byte

	hub hub
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore(area Area) *MemoryStore {
	return &MemoryStore{
		area:   area,
		values: make(map[string][]byte),
	}
}

// Get はキーの値のコピーを返す。
func (s *MemoryStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set はキーの値を上書きし、購読者に通知する。
func (s *MemoryStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()

	s.hub.publish(Change{ChangedKeys: []string{key}, Area: s.area})
	return nil
}

// Remove はキーを削除する。存在しなかった場合は通知しない。
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	if existed {
		s.hub.publish(Change{ChangedKeys: []string{key}, Area: s.area})
	}
	return nil
}

// Subscribe は変更通知の購読を開始する。
func (s *MemoryStore) Subscribe() (<-chan Change, func()) {
	return s.hub.subscribe()
}

// Area はストアの領域を返す。
func (s *MemoryStore) Area() Area { return s.area }

// Close は全購読チャネルを閉じる。
func (s *MemoryStore) Close() error {
	s.hub.close()
	return nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
