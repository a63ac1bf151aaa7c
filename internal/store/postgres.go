package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// NotifyChannel はkv_entriesの変更トリガーがpg_notifyするチャネル名。
const NotifyChannel = "kv_changes"

// PostgresStore はPostgreSQLのkv_entriesテーブルに保存するストア。
// 変更通知はLISTEN/NOTIFYで受け取るため、別プロセスからの書き込みも通知される。
// 自身の書き込みも通知として戻ってくるので、購読側は冪等に扱う必要がある。
type PostgresStore struct {
	db   *sql.DB
	area Area
	hub  hub
}

// NewPostgresStore はPostgresStoreを生成する。
func NewPostgresStore(db *sql.DB, area Area) *PostgresStore {
	return &PostgresStore{db: db, area: area}
}

// Get はキーの値を返す。
func (s *PostgresStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE area = $1 AND key = $2`,
		string(s.area), key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get kv entry: %w", err)
	}
	return json.RawMessage(value), true, nil
}

// Set はキーの値をUPSERTする。通知はトリガー経由で発行される。
func (s *PostgresStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (area, key, value, updated_at)
		 VALUES ($1, $2, $3::jsonb, now())
		 ON CONFLICT (area, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		string(s.area), key, []byte(value),
	)
	if err != nil {
		return fmt.Errorf("failed to set kv entry: %w", err)
	}
	return nil
}

// Remove はキーを削除する。
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE area = $1 AND key = $2`,
		string(s.area), key,
	)
	if err != nil {
		return fmt.Errorf("failed to remove kv entry: %w", err)
	}
	return nil
}

// Subscribe は変更通知の購読を開始する。通知を流すにはListenを起動しておく必要がある。
func (s *PostgresStore) Subscribe() (<-chan Change, func()) {
	return s.hub.subscribe()
}

// Area はストアの領域を返す。
func (s *PostgresStore) Area() Area { return s.area }

// PingContext はDB接続を確認する。
func (s *PostgresStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// notifyPayload はトリガーが送るNOTIFYのペイロード。
type notifyPayload struct {
	Area string `json:"area"`
	Key  string `json:"key"`
}

// listenerPingInterval は通知が無いときに接続を確認する間隔。
const listenerPingInterval = 90 * time.Second

// Listen はLISTEN kv_changes を開始し、この領域の通知を購読者に配信する。
// ctxがキャンセルされるまでブロックする。終了時に購読チャネルは閉じられる。
func (s *PostgresStore) Listen(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	listener := pq.NewListener(databaseURL, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("kv listener event",
					slog.Int("event", int(ev)),
					slog.String("error", err.Error()),
				)
			}
		})
	defer listener.Close()
	defer s.hub.close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen %s: %w", NotifyChannel, err)
	}

	logger.Info("kv listener started",
		slog.String("channel", NotifyChannel),
		slog.String("area", string(s.area)),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// 再接続直後はnilが届く。取りこぼした変更は分からないため何もしない。
			if n == nil {
				continue
			}
			s.dispatch(n.Extra, logger)
		case <-time.After(listenerPingInterval):
			if err := listener.Ping(); err != nil {
				logger.Warn("kv listener ping failed", slog.String("error", err.Error()))
			}
		}
	}
}

// dispatch はNOTIFYペイロードを解釈し、この領域のものだけを配信する。
func (s *PostgresStore) dispatch(extra string, logger *slog.Logger) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(extra), &p); err != nil {
		logger.Warn("invalid kv notification payload",
			slog.String("payload", extra),
			slog.String("error", err.Error()),
		)
		return
	}
	if Area(p.Area) != s.area {
		return
	}
	s.hub.publish(Change{ChangedKeys: []string{p.Key}, Area: s.area})
}

// compile-time interface check
var _ Store = (*PostgresStore)(nil)
