package model

import (
	"fmt"
	"time"
)

// Priority はタスクの優先度を表す。
type Priority string

const (
	// PriorityLow は低優先度。
	PriorityLow Priority = "low"
	// PriorityMedium は中優先度。作成時に省略された場合のデフォルト。
	PriorityMedium Priority = "medium"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "high"
	// PriorityUrgent は緊急。
	PriorityUrgent Priority = "urgent"
)

// priorityRank は表示順の固定ランク。小さいほど先に表示される。
var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Rank は優先度の表示ランクを返す。未知の値は最後尾に並ぶ。
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Valid は既知の優先度かどうかを返す。
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// ParsePriority は文字列を優先度に変換する。空文字列はPriorityMediumとして扱う。
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", NewValidationError("priority", fmt.Sprintf("unknown priority %q", s))
	}
	return p, nil
}

// Todo はタスクリストの1件を表す。
// ストアにはJSON文書として保存されるため、フィールド名は保存形式に合わせている。
type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	TaskName    string     `json:"taskName"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Deadline    *time.Time `json:"deadline"`
	Priority    Priority   `json:"priority"`
	Notes       string     `json:"notes"`
	Completed   bool       `json:"completed"`
}

// RecordID はコレクション内の識別子を返す。
func (t Todo) RecordID() string { return t.ID }

// CreateTodoInput はタスク作成時の入力。
type CreateTodoInput struct {
	TaskName    string     `json:"taskName"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Priority    string     `json:"priority"`
	Notes       string     `json:"notes"`
}

// TodoPatch はタスクの部分更新。nilのフィールドは変更しない。
// ClearDeadline がtrueの場合は期限を削除し、Deadlineより優先される。
type TodoPatch struct {
	TaskName      *string    `json:"taskName"`
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clearDeadline"`
	Priority      *string    `json:"priority"`
	Notes         *string    `json:"notes"`
	Completed     *bool      `json:"completed"`
}
