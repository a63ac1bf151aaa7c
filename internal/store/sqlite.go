package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore はSQLiteファイルのkv_entriesテーブルに保存するストア。
// 変更通知は同一プロセス内の書き込みに対してのみ発行される。
type SQLiteStore struct {
	db   *sql.DB
	area Area
	hub  hub
}

// NewSQLiteStore はSQLiteStoreを生成する。
// テーブルは database.MigrateSQLite で作成済みであること。
func NewSQLiteStore(db *sql.DB, area Area) *SQLiteStore {
	return &SQLiteStore{db: db, area: area}
}

// Get はキーの値を返す。
func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE area = ? AND key = ?`,
		string(s.area), key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get: %w", err)
	}
	return json.RawMessage(value), true, nil
}

// Set はキーの値をUPSERTする。
func (s *SQLiteStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (area, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (area, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(s.area), key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	s.hub.publish(Change{ChangedKeys: []string{key}, Area: s.area})
	return nil
}

// Remove はキーを削除する。
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE area = ? AND key = ?`,
		string(s.area), key,
	)
	if err != nil {
		return fmt.Errorf("sqlite remove: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.hub.publish(Change{ChangedKeys: []string{key}, Area: s.area})
	}
	return nil
}

// Subscribe は変更通知の購読を開始する。
func (s *SQLiteStore) Subscribe() (<-chan Change, func()) {
	return s.hub.subscribe()
}

// Area はストアの領域を返す。
func (s *SQLiteStore) Area() Area { return s.area }

// PingContext はDB接続を確認する。
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close は購読チャネルを閉じる。DB接続は呼び出し側が管理する。
func (s *SQLiteStore) Close() error {
	s.hub.close()
	return nil
}

// compile-time interface check
var _ Store = (*SQLiteStore)(nil)
