package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/store"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics metrics.MetricsCollector
	// MetricsHandler が nil の場合 /metrics は登録しない
	MetricsHandler http.Handler

	// ミドルウェア依存
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter

	// ヘルスチェック・変更通知
	Pingers       []store.Pinger
	ChangeSources []ChangeSubscriber

	// 認証
	AuthGate AuthGateInterface
	AuthFlow AuthFlowInterface

	// ダッシュボード
	TodoService     TodoServiceInterface
	BookmarkService BookmarkServiceInterface
	Layout          LayoutManagerInterface
	Timer           TimerInterface
	Motivation      MotivationSelectorInterface

	// キャプチャ
	Messenger MessengerInterface
	Capturer  CapturerInterface
	Toasts    ToastListerInterface

	// 外部REST APIへの中継。nilの場合 /api/remote/* は登録しない
	RemoteAPI RemoteAPIInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → SecurityHeaders → CORS → OriginGuard → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))
	r.Use(middleware.NewOriginGuardMiddleware(deps.AllowedOrigins, deps.Logger))

	healthHandler := NewHealthHandler(deps.Pingers, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthGate, deps.AuthFlow, deps.Logger)
	todoHandler := NewTodoHandler(deps.TodoService, deps.Logger)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService, deps.Logger)
	layoutHandler := NewLayoutHandler(deps.Layout, deps.Logger)
	timerHandler := NewTimerHandler(deps.Timer, deps.Logger)
	motivationHandler := NewMotivationHandler(deps.Motivation, deps.Logger)
	captureHandler := NewCaptureHandler(deps.Messenger, deps.Capturer, deps.Toasts, deps.Logger)
	eventsHandler := NewEventsHandler(deps.ChangeSources, deps.AllowedOrigins, deps.Logger)

	// --- レート制限の対象外 ---
	r.Get("/health", healthHandler.Check)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 認証
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.StartLogin)
			r.Post("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
			r.Post("/logout", authHandler.Logout)
			r.Get("/status", authHandler.Status)
		})

		r.Route("/api", func(r chi.Router) {
			// Todo
			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.List)
				r.Post("/", todoHandler.Create)
				r.Get("/display", todoHandler.Display)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", todoHandler.Update)
					r.Delete("/", todoHandler.Delete)
					r.Post("/toggle", todoHandler.Toggle)
				})
			})

			// ブックマーク
			r.Route("/bookmarks", func(r chi.Router) {
				r.Get("/", bookmarkHandler.List)
				r.Post("/", bookmarkHandler.Create)
				r.Get("/display", bookmarkHandler.Display)
				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", bookmarkHandler.Update)
					r.Delete("/", bookmarkHandler.Delete)
				})
			})

			// レイアウト
			r.Route("/layout", func(r chi.Router) {
				r.Get("/", layoutHandler.Get)
				r.Post("/reorder", layoutHandler.Reorder)
				r.Post("/reset", layoutHandler.Reset)
				r.Post("/{id}/toggle", layoutHandler.ToggleVisible)
			})

			// フォーカスタイマー
			r.Route("/timer", func(r chi.Router) {
				r.Get("/", timerHandler.Get)
				r.Post("/start", timerHandler.Start)
				r.Post("/pause", timerHandler.Pause)
				r.Post("/resume", timerHandler.Resume)
				r.Post("/stop", timerHandler.Stop)
			})

			// モチベーション
			r.Get("/motivation", motivationHandler.Today)
			r.Post("/motivation/refresh", motivationHandler.Refresh)

			// キャプチャ（ページ取得を伴うため専用のレート制限を追加）
			r.Post("/messages", captureHandler.SendMessage)
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.CaptureMiddleware()).Post("/capture", captureHandler.Capture)
			} else {
				r.Post("/capture", captureHandler.Capture)
			}
			r.Get("/toasts", captureHandler.Toasts)

			// 変更通知
			r.Get("/events", eventsHandler.Stream)

			// 外部REST APIへの中継
			if deps.RemoteAPI != nil {
				r.HandleFunc("/remote/*", NewRemoteHandler(deps.RemoteAPI, deps.Logger).Forward)
			}
		})
	})

	return r
}
