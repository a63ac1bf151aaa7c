package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSQLite_InMemory(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	defer db.Close()

	if err := MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("MigrateSQLite returned error: %v", err)
	}

	var count int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv_entries'`).Scan(&count)
	if err != nil {
		t.Fatalf("テーブル存在確認クエリに失敗: %v", err)
	}
	if count != 1 {
		t.Errorf("kv_entries テーブルが作成されていません: count = %d", count)
	}
}

// TestOpenSQLite_CreatesDirectory は存在しないディレクトリ配下にDBファイルを作成できることを検証する。
func TestOpenSQLite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focusez.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	defer db.Close()
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := MigrateSQLite(ctx, db); err != nil {
		t.Fatalf("1回目のマイグレーション実行に失敗: %v", err)
	}
	if err := MigrateSQLite(ctx, db); err != nil {
		t.Fatalf("2回目のマイグレーション実行に失敗（冪等性の問題）: %v", err)
	}
}
