package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgreSQLの接続プール設定。ストアは1キー1文書の短いクエリだけを発行する。
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxIdleTime = 5 * time.Minute
)

// Open はkv_entriesを保持するPostgreSQLへの接続プールを開く。
// sql.Openは接続を試行しないため、到達確認は呼び出し側でPingContextを行う。
// LISTENはpq.Listenerが専用の接続を張るため、このプールは使わない。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	return db, nil
}
