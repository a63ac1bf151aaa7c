package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/focusez/internal/capture"
	"github.com/hitoshi/focusez/internal/model"
)

// --- モック定義 ---

type mockTodoService struct {
	listFn    func(ctx context.Context) ([]model.Todo, error)
	displayFn func(ctx context.Context) ([]model.Todo, error)
	createFn  func(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error)
	updateFn  func(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error)
	deleteFn  func(ctx context.Context, id string) error
	toggleFn  func(ctx context.Context, id string) (*model.Todo, error)
}

func (m *mockTodoService) List(ctx context.Context) ([]model.Todo, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockTodoService) Display(ctx context.Context) ([]model.Todo, error) {
	if m.displayFn != nil {
		return m.displayFn(ctx)
	}
	return nil, nil
}

func (m *mockTodoService) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return &model.Todo{}, nil
}

func (m *mockTodoService) Update(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Todo{ID: id}, nil
}

func (m *mockTodoService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTodoService) ToggleCompleted(ctx context.Context, id string) (*model.Todo, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, id)
	}
	return &model.Todo{ID: id}, nil
}

type mockBookmarkService struct {
	listFn    func(ctx context.Context) ([]model.Bookmark, error)
	displayFn func(ctx context.Context) ([]model.Bookmark, error)
	createFn  func(ctx context.Context, input model.CreateBookmarkInput) (*model.Bookmark, error)
	updateFn  func(ctx context.Context, id string, patch model.BookmarkPatch) (*model.Bookmark, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockBookmarkService) List(ctx context.Context) ([]model.Bookmark, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockBookmarkService) Display(ctx context.Context) ([]model.Bookmark, error) {
	if m.displayFn != nil {
		return m.displayFn(ctx)
	}
	return nil, nil
}

func (m *mockBookmarkService) Create(ctx context.Context, input model.CreateBookmarkInput) (*model.Bookmark, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return &model.Bookmark{}, nil
}

func (m *mockBookmarkService) Update(ctx context.Context, id string, patch model.BookmarkPatch) (*model.Bookmark, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Bookmark{ID: id}, nil
}

func (m *mockBookmarkService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockLayout struct {
	widgets   []model.WidgetDescriptor
	reorderFn func(ctx context.Context, id model.WidgetID, pos int) ([]model.WidgetDescriptor, error)
	toggleFn  func(ctx context.Context, id model.WidgetID) ([]model.WidgetDescriptor, error)
	resetFn   func(ctx context.Context) ([]model.WidgetDescriptor, error)
}

func (m *mockLayout) Widgets() []model.WidgetDescriptor { return m.widgets }

func (m *mockLayout) Reorder(ctx context.Context, id model.WidgetID, pos int) ([]model.WidgetDescriptor, error) {
	if m.reorderFn != nil {
		return m.reorderFn(ctx, id, pos)
	}
	return m.widgets, nil
}

func (m *mockLayout) ToggleVisible(ctx context.Context, id model.WidgetID) ([]model.WidgetDescriptor, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, id)
	}
	return m.widgets, nil
}

func (m *mockLayout) Reset(ctx context.Context) ([]model.WidgetDescriptor, error) {
	if m.resetFn != nil {
		return m.resetFn(ctx)
	}
	return m.widgets, nil
}

type mockTimer struct {
	session  *model.TimerSession
	startFn  func(ctx context.Context, task string, minutes int) (bool, error)
	pauseErr error
	calls    []string
}

func (m *mockTimer) Session() *model.TimerSession { return m.session }

func (m *mockTimer) Start(ctx context.Context, task string, minutes int) (bool, error) {
	m.calls = append(m.calls, "start")
	if m.startFn != nil {
		return m.startFn(ctx, task, minutes)
	}
	return false, nil
}

func (m *mockTimer) Pause(ctx context.Context) error {
	m.calls = append(m.calls, "pause")
	return m.pauseErr
}

func (m *mockTimer) Resume(ctx context.Context) error {
	m.calls = append(m.calls, "resume")
	return nil
}

func (m *mockTimer) Stop(ctx context.Context) error {
	m.calls = append(m.calls, "stop")
	m.session = nil
	return nil
}

type mockMotivation struct {
	todayFn   func(ctx context.Context) (*model.MotivationState, error)
	refreshFn func(ctx context.Context) (*model.MotivationState, error)
}

func (m *mockMotivation) Today(ctx context.Context) (*model.MotivationState, error) {
	if m.todayFn != nil {
		return m.todayFn(ctx)
	}
	return &model.MotivationState{}, nil
}

func (m *mockMotivation) Refresh(ctx context.Context) (*model.MotivationState, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return &model.MotivationState{}, nil
}

type mockMessenger struct {
	sendFn func(ctx context.Context, msg capture.Message) (capture.Ack, error)
}

func (m *mockMessenger) Send(ctx context.Context, msg capture.Message) (capture.Ack, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return capture.Ack{Success: true}, nil
}

type mockCapturer struct {
	captureFn    func(ctx context.Context, event capture.KeyEvent, page capture.Page) (*capture.Result, error)
	captureURLFn func(ctx context.Context, rawURL string) (*capture.Result, error)
}

func (m *mockCapturer) Capture(ctx context.Context, event capture.KeyEvent, page capture.Page) (*capture.Result, error) {
	if m.captureFn != nil {
		return m.captureFn(ctx, event, page)
	}
	return &capture.Result{}, nil
}

func (m *mockCapturer) CaptureURL(ctx context.Context, rawURL string) (*capture.Result, error) {
	if m.captureURLFn != nil {
		return m.captureURLFn(ctx, rawURL)
	}
	return &capture.Result{}, nil
}

type mockToasts struct {
	toasts []capture.Toast
}

func (m *mockToasts) Active() []capture.Toast { return m.toasts }

type mockGate struct {
	token     string
	ownerID   string
	loginErr  error
	logoutErr error
}

func (m *mockGate) IsAuthenticated(ctx context.Context) (bool, error) { return m.token != "", nil }

func (m *mockGate) Login(ctx context.Context, token string) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	if token == "" {
		return model.NewValidationError("token", "required")
	}
	m.token = token
	return nil
}

func (m *mockGate) Logout(ctx context.Context) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.token = ""
	return nil
}

func (m *mockGate) OwnerID(ctx context.Context) (string, error) {
	if m.ownerID != "" {
		return m.ownerID, nil
	}
	return "local-user", nil
}

type mockFlow struct {
	loginURL    string
	completeErr error
	gate        *mockGate
}

func (m *mockFlow) LoginURL() string { return m.loginURL }

func (m *mockFlow) CompleteQuery(ctx context.Context, query url.Values) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	if query.Get("error") != "" || query.Get("token") == "" {
		return &model.AuthFlowError{Reason: "no token in callback"}
	}
	return m.gate.Login(ctx, query.Get("token"))
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

// --- ヘルパー ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDeps は全依存にモックを詰めたRouterDepsを返す。
func newTestDeps() *RouterDeps {
	gate := &mockGate{}
	return &RouterDeps{
		Logger:          testLogger(),
		AllowedOrigins:  []string{"chrome-extension://focusez"},
		AuthGate:        gate,
		AuthFlow:        &mockFlow{loginURL: "http://localhost:3000/auth/google", gate: gate},
		TodoService:     &mockTodoService{},
		BookmarkService: &mockBookmarkService{},
		Layout:          &mockLayout{},
		Timer:           &mockTimer{},
		Motivation:      &mockMotivation{},
		Messenger:       &mockMessenger{},
		Capturer:        &mockCapturer{},
		Toasts:          &mockToasts{},
	}
}

// serve はルーター経由でリクエストを処理したレスポンスを返す。
func serve(t *testing.T, deps *RouterDeps, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter(deps).ServeHTTP(w, req)
	return w
}
