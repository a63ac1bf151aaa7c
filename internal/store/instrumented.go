package store

import (
	"context"
	"encoding/json"

	"github.com/hitoshi/focusez/internal/metrics"
)

// InstrumentedStore は書き込みと失敗をメトリクスに記録するストアのラッパー。
type InstrumentedStore struct {
	Store
	metrics metrics.MetricsCollector
}

// Instrument はsをラップしたInstrumentedStoreを返す。
func Instrument(s Store, m metrics.MetricsCollector) *InstrumentedStore {
	if m == nil {
		m = metrics.Nop{}
	}
	return &InstrumentedStore{Store: s, metrics: m}
}

// Get は失敗だけを記録する。
func (s *InstrumentedStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	v, found, err := s.Store.Get(ctx, key)
	if err != nil {
		s.metrics.RecordStoreFailure("get")
	}
	return v, found, err
}

// Set は成功したキーの書き込みを記録する。
func (s *InstrumentedStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.Store.Set(ctx, key, value); err != nil {
		s.metrics.RecordStoreFailure("set")
		return err
	}
	s.metrics.RecordStoreWrite(key)
	return nil
}

// Remove は失敗だけを記録する。
func (s *InstrumentedStore) Remove(ctx context.Context, key string) error {
	if err := s.Store.Remove(ctx, key); err != nil {
		s.metrics.RecordStoreFailure("remove")
		return err
	}
	return nil
}

// compile-time interface check
var _ Store = (*InstrumentedStore)(nil)
