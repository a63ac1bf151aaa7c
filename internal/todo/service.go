// Package todo はタスクリストのドメインロジックを提供する。
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/repository"
)

// DisplayLimit はダッシュボードに表示するタスクの最大件数。
const DisplayLimit = 5

// OwnerSource は作成するレコードの所有者IDを返す。
type OwnerSource interface {
	OwnerID(ctx context.Context) (string, error)
}

// Service はタスクリストのサービス層。
// 作成、更新、削除、完了切り替え、表示用の並べ替えを提供する。
type Service struct {
	repo    repository.TodoRepository
	owner   OwnerSource
	metrics metrics.MetricsCollector

	now   func() time.Time
	newID func() string
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.TodoRepository,
	owner OwnerSource,
	m metrics.MetricsCollector,
) *Service {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		owner:   owner,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// List は保存順の全タスクを返す。
func (s *Service) List(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// Display は表示順に並べ替えた先頭DisplayLimit件を返す。
func (s *Service) Display(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sorted := SortForDisplay(todos)
	if len(sorted) > DisplayLimit {
		sorted = sorted[:DisplayLimit]
	}
	return sorted, nil
}

// Create はタスクを作成して保存する。
// タスク名が空白のみの場合はValidationErrorを返し、ストアは変更しない。
func (s *Service) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	name := strings.TrimSpace(input.TaskName)
	if name == "" {
		return nil, model.NewValidationError("taskName", "required")
	}
	priority, err := model.ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	owner, err := s.owner.OwnerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("所有者の取得に失敗しました: %w", err)
	}

	todo := model.Todo{
		ID:          s.newID(),
		UserID:      owner,
		TaskName:    name,
		Description: input.Description,
		CreatedAt:   s.now().UTC(),
		Deadline:    input.Deadline,
		Priority:    priority,
		Notes:       strings.TrimSpace(input.Notes),
	}

	if err := s.repo.Append(ctx, todo); err != nil {
		return nil, fmt.Errorf("タスクの保存に失敗しました: %w", err)
	}
	s.metrics.RecordRecordCreated("todo")
	return &todo, nil
}

// Update は指定IDのタスクにパッチを適用して保存する。
func (s *Service) Update(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
	updated, err := s.repo.Replace(ctx, id, func(t model.Todo) (model.Todo, error) {
		return s.applyPatch(t, patch)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewNotFoundError("todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return &updated, nil
}

func (s *Service) applyPatch(t model.Todo, patch model.TodoPatch) (model.Todo, error) {
	if patch.TaskName != nil {
		name := strings.TrimSpace(*patch.TaskName)
		if name == "" {
			return t, model.NewValidationError("taskName", "required")
		}
		t.TaskName = name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	switch {
	case patch.ClearDeadline:
		t.Deadline = nil
	case patch.Deadline != nil:
		d := *patch.Deadline
		t.Deadline = &d
	}
	if patch.Priority != nil {
		p, err := model.ParsePriority(*patch.Priority)
		if err != nil {
			return t, err
		}
		t.Priority = p
	}
	if patch.Notes != nil {
		t.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	return t, nil
}

// Delete は指定IDのタスクを削除する。存在しない場合は何もしない。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	return nil
}

// ToggleCompleted は完了状態を反転して保存する。
func (s *Service) ToggleCompleted(ctx context.Context, id string) (*model.Todo, error) {
	updated, err := s.repo.Replace(ctx, id, func(t model.Todo) (model.Todo, error) {
		t.Completed = !t.Completed
		return t, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewNotFoundError("todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return &updated, nil
}
