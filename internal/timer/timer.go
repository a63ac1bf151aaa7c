// Package timer はフォーカスタイマーの状態機械を提供する。
//
// 状態は Idle → Running ⇄ Paused → Idle の3つ。カウントダウンが0に達すると
// 完了通知を発行し、セッションをストアから削除してIdleに戻る。
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/store"
)

// TickInterval はカウントダウンの間隔。
const TickInterval = time.Second

// Notifier はセッション完了時の副作用（音や通知の表示）を担う。
type Notifier interface {
	Completed(ctx context.Context, session model.TimerSession)
}

// LogNotifier は完了をログとメトリクスに記録するNotifier。
type LogNotifier struct {
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewLogNotifier はLogNotifierを生成する。
func NewLogNotifier(logger *slog.Logger, m metrics.MetricsCollector) *LogNotifier {
	if m == nil {
		m = metrics.Nop{}
	}
	return &LogNotifier{logger: logger, metrics: m}
}

// Completed は完了をログに出力し、完了数を加算する。
func (n *LogNotifier) Completed(ctx context.Context, session model.TimerSession) {
	n.logger.InfoContext(ctx, "focus session completed",
		slog.String("task", session.TaskName),
		slog.Int("total_seconds", session.TotalSeconds),
	)
	n.metrics.RecordTimerCompleted()
}

// Timer はフォーカスセッションを管理する。セッションは高々1つ。
// 状態を変更するたびにセッション全体をストアへ書き込み、書き込みに成功した後で
// 手元の状態を更新する。
type Timer struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	session *model.TimerSession
}

// New はIdle状態のTimerを生成する。
func New(s store.Store, notifier Notifier, logger *slog.Logger) *Timer {
	return &Timer{
		store:    s,
		notifier: notifier,
		logger:   logger,
		interval: TickInterval,
	}
}

// Session は現在のセッションのコピーを返す。Idleの場合はnilを返す。
func (t *Timer) Session() *model.TimerSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copySession(t.session)
}

// MaxMinutes は1セッションに設定できる最大の分数（24時間）。
const MaxMinutes = 24 * 60

// Start はセッションを開始する。タスク名が空白のみ、またはminutesが1..MaxMinutesの
// 範囲外の場合は何もせずfalseを返す。既存のセッションは置き換える。
func (t *Timer) Start(ctx context.Context, taskName string, minutes int) (bool, error) {
	name := strings.TrimSpace(taskName)
	if name == "" || minutes <= 0 || minutes > MaxMinutes {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	total := minutes * 60
	next := &model.TimerSession{
		TaskName:         name,
		TotalSeconds:     total,
		RemainingSeconds: total,
		IsRunning:        true,
		IsPaused:         false,
	}
	if err := t.save(ctx, next); err != nil {
		return false, err
	}
	t.session = next
	t.logger.InfoContext(ctx, "focus session started",
		slog.String("task", name),
		slog.Int("minutes", minutes),
	)
	return true, nil
}

// Pause はカウントダウンを一時停止する。セッションが無い場合は何もしない。
func (t *Timer) Pause(ctx context.Context) error {
	return t.setPaused(ctx, true)
}

// Resume は一時停止を解除する。セッションが無い場合は何もしない。
func (t *Timer) Resume(ctx context.Context) error {
	return t.setPaused(ctx, false)
}

func (t *Timer) setPaused(ctx context.Context, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil || t.session.IsPaused == paused {
		return nil
	}
	next := copySession(t.session)
	next.IsPaused = paused
	if err := t.save(ctx, next); err != nil {
		return err
	}
	t.session = next
	return nil
}

// Stop はセッションを破棄してIdleに戻る。以降のTickは何もしない。
func (t *Timer) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := store.Remove(ctx, t.store, store.KeyFocusTimer); err != nil {
		return fmt.Errorf("タイマーの削除に失敗しました: %w", err)
	}
	t.session = nil
	return nil
}

// Tick は1秒分カウントダウンする。実行中かつ一時停止していない場合のみ作用する。
// 残り時間が0以下になった場合は完了通知を発行し、セッションを削除してtrueを返す。
func (t *Timer) Tick(ctx context.Context) (completed bool, err error) {
	finished, err := t.advance(ctx)
	if err != nil || finished == nil {
		return false, err
	}
	// 通知はロックの外で行い、Notifierからの再入を許す
	t.notifier.Completed(ctx, *finished)
	return true, nil
}

// advance はカウントダウンを1つ進め、完了した場合はそのセッションを返す。
func (t *Timer) advance(ctx context.Context) (*model.TimerSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Ticking() {
		return nil, nil
	}

	next := copySession(t.session)
	next.RemainingSeconds--
	if next.RemainingSeconds > 0 {
		if err := t.save(ctx, next); err != nil {
			return nil, err
		}
		t.session = next
		return nil, nil
	}

	next.RemainingSeconds = 0
	if err := store.Remove(ctx, t.store, store.KeyFocusTimer); err != nil {
		return nil, fmt.Errorf("タイマーの削除に失敗しました: %w", err)
	}
	t.session = nil
	return next, nil
}

// Restore はストアに保存されたセッションを読み込む。
// 保存内容が不正な場合はストアから削除してIdleのままにする。
func (t *Timer) Restore(ctx context.Context) (*model.TimerSession, error) {
	var stored model.TimerSession
	found, err := store.GetJSON(ctx, t.store, store.KeyFocusTimer, &stored)
	if err != nil {
		return nil, fmt.Errorf("タイマーの読み込みに失敗しました: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !found {
		t.session = nil
		return nil, nil
	}
	if !validSession(stored) {
		t.logger.WarnContext(ctx, "discarding invalid stored timer session",
			slog.Int("total_seconds", stored.TotalSeconds),
			slog.Int("remaining_seconds", stored.RemainingSeconds),
		)
		if err := store.Remove(ctx, t.store, store.KeyFocusTimer); err != nil {
			return nil, fmt.Errorf("タイマーの削除に失敗しました: %w", err)
		}
		t.session = nil
		return nil, nil
	}

	t.session = &stored
	return copySession(t.session), nil
}

// Run は1秒ごとにTickを呼び出す。ctxがキャンセルされるまでブロックする。
// Tickの状態はプロセス内にのみ存在するため、再起動後はRestoreの後にRunを呼び直す。
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// キャンセルとティックが同時に届いた場合はティックしない
			if ctx.Err() != nil {
				return
			}
			if _, err := t.Tick(ctx); err != nil {
				t.logger.Error("timer tick failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (t *Timer) save(ctx context.Context, session *model.TimerSession) error {
	if err := store.SetJSON(ctx, t.store, store.KeyFocusTimer, session); err != nil {
		return fmt.Errorf("タイマーの保存に失敗しました: %w", err)
	}
	return nil
}

func validSession(s model.TimerSession) bool {
	return s.TotalSeconds > 0 &&
		s.TotalSeconds <= MaxMinutes*60 &&
		s.RemainingSeconds > 0 &&
		s.RemainingSeconds <= s.TotalSeconds &&
		s.IsRunning
}

func copySession(s *model.TimerSession) *model.TimerSession {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
