package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/focusez/internal/config"
	"github.com/hitoshi/focusez/internal/database"
	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/store"
)

// Stores はlocal・syncの2領域のストアと、その後片付けをまとめたもの。
type Stores struct {
	Local store.Store
	Sync  store.Store

	// Pingers はヘルスチェックで確認する接続。memoryドライバーでは空。
	Pingers []store.Pinger

	// listen はプロセス外からの変更通知を受け取るループ。postgresドライバーのみ。
	listen []func(ctx context.Context) error

	closers []func() error
}

// Listen は変更通知のループをそれぞれgoroutineで起動する。ctxのキャンセルで終了する。
func (s *Stores) Listen(ctx context.Context, logger *slog.Logger) {
	for _, listen := range s.listen {
		go func() {
			if err := listen(ctx); err != nil {
				logger.Error("store listener stopped", slog.String("error", err.Error()))
			}
		}()
	}
}

// Close は開いたストアと接続をすべて閉じる。
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStores は設定されたドライバーで2領域のストアを開く。
// 書き込みと失敗はmに記録される。
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger, m metrics.MetricsCollector) (*Stores, error) {
	var (
		stores *Stores
		err    error
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		stores = openMemoryStores()
	case config.StoreDriverSQLite:
		stores, err = openSQLiteStores(ctx, cfg.SQLitePath)
	case config.StoreDriverPostgres:
		stores, err = openPostgresStores(ctx, cfg.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	stores.Local = store.Instrument(stores.Local, m)
	stores.Sync = store.Instrument(stores.Sync, m)

	logger.Info("store opened", slog.String("driver", cfg.StoreDriver))
	return stores, nil
}

func openMemoryStores() *Stores {
	local := store.NewMemoryStore(store.AreaLocal)
	syncArea := store.NewMemoryStore(store.AreaSync)
	return &Stores{
		Local:   local,
		Sync:    syncArea,
		closers: []func() error{local.Close, syncArea.Close},
	}
}

func openSQLiteStores(ctx context.Context, path string) (*Stores, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	local := store.NewSQLiteStore(db, store.AreaLocal)
	syncArea := store.NewSQLiteStore(db, store.AreaSync)
	return &Stores{
		Local:   local,
		Sync:    syncArea,
		Pingers: []store.Pinger{db},
		closers: []func() error{db.Close, local.Close, syncArea.Close},
	}, nil
}

func openPostgresStores(ctx context.Context, databaseURL string, logger *slog.Logger) (*Stores, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	local := store.NewPostgresStore(db, store.AreaLocal)
	syncArea := store.NewPostgresStore(db, store.AreaSync)
	return &Stores{
		Local:   local,
		Sync:    syncArea,
		Pingers: []store.Pinger{db},
		listen: []func(ctx context.Context) error{
			func(ctx context.Context) error { return local.Listen(ctx, databaseURL, logger) },
			func(ctx context.Context) error { return syncArea.Listen(ctx, databaseURL, logger) },
		},
		closers: []func() error{db.Close},
	}, nil
}

// compile-time interface check
var _ store.Pinger = (*sql.DB)(nil)
