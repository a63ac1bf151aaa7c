// Package bookmark はブックマークショートカットのドメインロジックを提供する。
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/focusez/internal/metrics"
	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/repository"
)

// DisplayLimit はダッシュボードに表示するブックマークの最大件数。
const DisplayLimit = 25

// schemePattern はURLが明示的なスキームを持つかを判定する。大文字小文字は区別しない。
var schemePattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)

// NormalizeURL はスキームのないURLに https:// を付与する。
// スキームがある場合は大文字小文字を含めてそのまま返す。
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" || schemePattern.MatchString(u) {
		return u
	}
	return "https://" + u
}

// SortForDisplay は作成日時の新しい順に並べ替えたコピーを返す。
func SortForDisplay(bookmarks []model.Bookmark) []model.Bookmark {
	sorted := slices.Clone(bookmarks)
	slices.SortStableFunc(sorted, func(a, b model.Bookmark) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

// OwnerSource は作成するレコードの所有者IDを返す。
type OwnerSource interface {
	OwnerID(ctx context.Context) (string, error)
}

// Service はブックマークのサービス層。
type Service struct {
	repo    repository.BookmarkRepository
	owner   OwnerSource
	metrics metrics.MetricsCollector

	now   func() time.Time
	newID func() string
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.BookmarkRepository,
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

// List は保存順の全ブックマークを返す。
func (s *Service) List(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ブックマーク一覧の取得に失敗しました: %w", err)
	}
	return bookmarks, nil
}

// Display は新しい順の先頭DisplayLimit件を返す。
func (s *Service) Display(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sorted := SortForDisplay(bookmarks)
	if len(sorted) > DisplayLimit {
		sorted = sorted[:DisplayLimit]
	}
	return sorted, nil
}

// Create はブックマークを作成して保存する。
// タイトルまたはURLが空白のみの場合はValidationErrorを返し、ストアは変更しない。
func (s *Service) Create(ctx context.Context, input model.CreateBookmarkInput) (*model.Bookmark, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title", "required")
	}
	url := NormalizeURL(input.URL)
	if url == "" {
		return nil, model.NewValidationError("url", "required")
	}

	owner, err := s.owner.OwnerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("所有者の取得に失敗しました: %w", err)
	}

	bookmark := model.Bookmark{
		ID:        s.newID(),
		UserID:    owner,
		Title:     title,
		URL:       url,
		CreatedAt: s.now().UTC(),
		Favicon:   strings.TrimSpace(input.Favicon),
	}

	if err := s.repo.Append(ctx, bookmark); err != nil {
		return nil, fmt.Errorf("ブックマークの保存に失敗しました: %w", err)
	}
	s.metrics.RecordRecordCreated("bookmark")
	return &bookmark, nil
}

// Update は指定IDのブックマークにパッチを適用して保存する。URLは再度正規化する。
func (s *Service) Update(ctx context.Context, id string, patch model.BookmarkPatch) (*model.Bookmark, error) {
	updated, err := s.repo.Replace(ctx, id, func(b model.Bookmark) (model.Bookmark, error) {
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return b, model.NewValidationError("title", "required")
			}
			b.Title = title
		}
		if patch.URL != nil {
			url := NormalizeURL(*patch.URL)
			if url == "" {
				return b, model.NewValidationError("url", "required")
			}
			b.URL = url
		}
		if patch.Favicon != nil {
			b.Favicon = strings.TrimSpace(*patch.Favicon)
		}
		return b, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewNotFoundError("bookmark", id)
	}
	if err != nil {
		return nil, fmt.Errorf("ブックマークの更新に失敗しました: %w", err)
	}
	return &updated, nil
}

// Delete は指定IDのブックマークを削除する。存在しない場合は何もしない。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("ブックマークの削除に失敗しました: %w", err)
	}
	return nil
}
