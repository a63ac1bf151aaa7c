// Package database はストアのバックエンドDBの接続とスキーマ管理を提供する。
//
// PostgreSQLではgolang-migrateで埋め込みマイグレーションを適用し、
// kv_entriesテーブルと変更通知トリガー（pg_notify 'kv_changes'）を作成する。
// SQLiteではsqlite.goのMigrateSQLiteが同じテーブルを作成する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator は埋め込みのkv_entriesマイグレーションを読むmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はkv_entriesと通知トリガーのマイグレーションをすべて適用する。
// focusez migrate（composeのmigrateサービス）から呼ばれ、最新であればエラーなしで返る。
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run kv migrations: %w", err)
	}

	return nil
}
