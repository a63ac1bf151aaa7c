package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/focusez/internal/apiclient"
	"github.com/hitoshi/focusez/internal/auth"
	"github.com/hitoshi/focusez/internal/bookmark"
	"github.com/hitoshi/focusez/internal/capture"
	"github.com/hitoshi/focusez/internal/config"
	"github.com/hitoshi/focusez/internal/database"
	"github.com/hitoshi/focusez/internal/handler"
	"github.com/hitoshi/focusez/internal/layout"
	"github.com/hitoshi/focusez/internal/logger"
	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/motivation"
	"github.com/hitoshi/focusez/internal/repository"
	"github.com/hitoshi/focusez/internal/security"
	"github.com/hitoshi/focusez/internal/timer"
	"github.com/hitoshi/focusez/internal/todo"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込んでログレベルを反映する。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// Dashboard はワイヤリング済みのコンポーネント一式。
type Dashboard struct {
	Router http.Handler

	Layout      *layout.Manager
	Timer       *timer.Timer
	RateLimiter *middleware.RateLimiter

	stores *Stores
	logger *slog.Logger
}

// NewDashboard はストアの上に全コンポーネントを組み立てる。
// regにはメトリクスを登録し、/metrics で公開する。
func NewDashboard(cfg *config.Config, stores *Stores, reg *prometheus.Registry, m metrics.MetricsCollector, log *slog.Logger) (*Dashboard, error) {
	// 1. 認証
	gate := auth.NewGate(stores.Sync, log)
	flow := auth.NewWebFlow(gate, cfg.APIBaseURL, cfg.AuthCallbackURL, log)

	// 2. ドメインサービス
	todoService := todo.NewService(repository.NewTodoRepository(stores.Local), gate, m)
	bookmarkService := bookmark.NewService(repository.NewBookmarkRepository(stores.Local), gate, m)
	layoutManager := layout.NewManager(stores.Local, log)
	focusTimer := timer.New(stores.Local, timer.NewLogNotifier(log, m), log)
	selector := motivation.NewSelector(stores.Local, cfg.Location, log)

	// 3. キャプチャ（SAVE_BOOKMARK はブックマーク作成に届ける）
	bus := capture.NewBus()
	if err := bus.Register(func(ctx context.Context, input model.CreateBookmarkInput) error {
		_, err := bookmarkService.Create(ctx, input)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to register capture handler: %w", err)
	}
	toaster := capture.NewToaster()
	capturer := capture.NewCapturer(bus, toaster, security.NewFetchGuard(), cfg.CaptureFetchTimeout, log, m)

	// 4. 外部REST API
	apiClient := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurst,
	}, gate, log, m)

	// 5. ルーター（configのレート制限はreq/min単位なのでreq/secに変換する）
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitCapture > 0 {
		rlCfg.CaptureRate = rate.Limit(float64(cfg.RateLimitCapture) / 60.0)
		rlCfg.CaptureBurst = cfg.RateLimitCapture
	}
	rateLimiter := middleware.NewRateLimiter(rlCfg, log)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:         log,
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    rateLimiter,
		Pingers:        stores.Pingers,
		ChangeSources:  []handler.ChangeSubscriber{stores.Local, stores.Sync},

		AuthGate: gate,
		AuthFlow: flow,

		TodoService:     todoService,
		BookmarkService: bookmarkService,
		Layout:          layoutManager,
		Timer:           focusTimer,
		Motivation:      selector,

		Messenger: bus,
		Capturer:  capturer,
		Toasts:    toaster,

		RemoteAPI: apiClient,
	})

	return &Dashboard{
		Router:      router,
		Layout:      layoutManager,
		Timer:       focusTimer,
		RateLimiter: rateLimiter,
		stores:      stores,
		logger:      log,
	}, nil
}

// Start は保存済みの状態を読み込み、バックグラウンド処理を起動する。
// 起動した処理はctxのキャンセルで終了する。
func (d *Dashboard) Start(ctx context.Context) error {
	if _, err := d.Layout.Load(ctx); err != nil {
		return fmt.Errorf("failed to load layout: %w", err)
	}
	session, err := d.Timer.Restore(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore timer: %w", err)
	}
	if session != nil {
		d.logger.Info("timer restored",
			slog.String("task", session.TaskName),
			slog.Int("remaining_seconds", session.RemainingSeconds),
		)
	}

	d.stores.Listen(ctx, d.logger)
	go d.Layout.Watch(ctx)
	go d.Timer.Run(ctx)
	return nil
}

// Stop はバックグラウンドのリソースを解放する。
func (d *Dashboard) Stop() {
	d.RateLimiter.Stop()
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	log := slog.Default()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 1. ストア
	stores, err := OpenStores(ctx, cfg, log, collector)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer stores.Close()

	// 2. コンポーネント
	dashboard, err := NewDashboard(cfg, stores, reg, collector, log)
	if err != nil {
		return err
	}
	defer dashboard.Stop()

	bgCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()
	if err := dashboard.Start(bgCtx); err != nil {
		return err
	}

	// 3. HTTPサーバー（/api/events の長時間接続があるためWriteTimeoutは設定しない）
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           dashboard.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")
	cancelBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runMigrate はストアのスキーマを作成・更新する。
// memoryドライバーでは何もしない。
func runMigrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		slog.Info("running database migrations",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case config.StoreDriverSQLite:
		slog.Info("running sqlite migrations", slog.String("path", cfg.SQLitePath))
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer db.Close()
		if err := database.MigrateSQLite(ctx, db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	default:
		slog.Info("nothing to migrate", slog.String("store_driver", cfg.StoreDriver))
		return nil
	}

	slog.Info("migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
