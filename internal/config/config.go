package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストアのドライバー
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	StoreDriver string
	SQLitePath  string
	DatabaseURL string

	// External API / Auth
	APIBaseURL      string
	AuthCallbackURL string
	APIRateLimit    float64 // 外部APIへの1秒あたりのリクエスト数
	APIBurst        int
	APITimeout      time.Duration

	// Dashboard
	Location *time.Location

	// Capture
	CaptureFetchTimeout time.Duration

	// Rate Limit（req/min/IP）
	RateLimitGeneral int
	RateLimitCapture int

	// Logging
	LogLevel slog.Level

	// Server
	ServerPort string

	// CORS（カンマ区切りで複数指定できる）
	CORSAllowedOrigins []string
}

// Load は環境変数からConfigを読み込む。
// 値が不正な場合と、postgresドライバーでDATABASE_URLが未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var problems []string

	cfg.StoreDriver = strings.ToLower(getEnvString("STORE_DRIVER", StoreDriverSQLite))
	switch cfg.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite, StoreDriverPostgres:
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER=%q (memory|sqlite|postgres)", cfg.StoreDriver))
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required when STORE_DRIVER=postgres")
	}

	tz := getEnvString("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE=%q: %v", tz, err))
	}
	cfg.Location = loc

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			problems = append(problems, fmt.Sprintf("LOG_LEVEL=%q (debug|info|warn|error)", v))
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", problems)
	}

	// Optional fields with defaults
	cfg.SQLitePath = getEnvString("SQLITE_PATH", "data/focusez.db")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.APIBaseURL = strings.TrimRight(getEnvString("API_BASE_URL", "http://localhost:3000"), "/")
	cfg.AuthCallbackURL = getEnvString("AUTH_CALLBACK_URL", "http://localhost:"+cfg.ServerPort+"/auth/callback")
	cfg.APIRateLimit = getEnvFloat("API_RATE_LIMIT", 10)
	cfg.APIBurst = getEnvInt("API_BURST", 10)
	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 15*time.Second)
	cfg.CaptureFetchTimeout = getEnvDuration("CAPTURE_FETCH_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitCapture = getEnvInt("RATE_LIMIT_CAPTURE", 10)
	cfg.CORSAllowedOrigins = splitList(getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"))

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// splitList はカンマ区切りの値を空要素を除いて分割する。
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
