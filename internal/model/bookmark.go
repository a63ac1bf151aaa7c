// Package model はドメインモデルを定義する。
package model

import "time"

// Bookmark はブックマークのショートカット1件を表す。
// URLは保存時に必ずスキーム付きに正規化される。
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	Favicon   string    `json:"favicon,omitempty"`
}

// RecordID はコレクション内の識別子を返す。
func (b Bookmark) RecordID() string { return b.ID }

// CreateBookmarkInput はブックマーク作成時の入力。
// SAVE_BOOKMARK メッセージのペイロードとしても使用する。
type CreateBookmarkInput struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
}

// BookmarkPatch はブックマークの部分更新。nilのフィールドは変更しない。
type BookmarkPatch struct {
	Title   *string `json:"title"`
	URL     *string `json:"url"`
	Favicon *string `json:"favicon"`
}
