package repository

import (
	"context"

	"github.com/hitoshi/focusez/internal/model"
	"github.com/hitoshi/focusez/internal/store"
)

// TodoRepository はタスクリストの永続化インターフェース。
type TodoRepository interface {
	// List は保存順の全タスクを返す。
	List(ctx context.Context) ([]model.Todo, error)
	// Append はタスクを末尾に追加する。
	Append(ctx context.Context, todo model.Todo) error
	// Replace は指定IDのタスクを置き換える。見つからない場合はErrNotFoundを返す。
	Replace(ctx context.Context, id string, fn func(model.Todo) (model.Todo, error)) (model.Todo, error)
	// Remove は指定IDのタスクを削除する。
	Remove(ctx context.Context, id string) (bool, error)
}

// BookmarkRepository はブックマークの永続化インターフェース。
type BookmarkRepository interface {
	List(ctx context.Context) ([]model.Bookmark, error)
	Append(ctx context.Context, bookmark model.Bookmark) error
	Replace(ctx context.Context, id string, fn func(model.Bookmark) (model.Bookmark, error)) (model.Bookmark, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// NewTodoRepository はtodosキーに束縛されたTodoRepositoryを生成する。
func NewTodoRepository(s store.Store) *Collection[model.Todo] {
	return NewCollection[model.Todo](s, store.KeyTodos)
}

// NewBookmarkRepository はbookmarksキーに束縛されたBookmarkRepositoryを生成する。
func NewBookmarkRepository(s store.Store) *Collection[model.Bookmark] {
	return NewCollection[model.Bookmark](s, store.KeyBookmarks)
}

// compile-time interface check
var (
	_ TodoRepository     = (*Collection[model.Todo])(nil)
	_ BookmarkRepository = (*Collection[model.Bookmark])(nil)
)
