// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, store, network, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeTodoNotFound     = "TODO_NOT_FOUND"
	ErrCodeBookmarkNotFound = "BOOKMARK_NOT_FOUND"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeStoreFailed      = "STORE_FAILED"
	ErrCodeNetworkFailed    = "NETWORK_FAILED"
	ErrCodeAuthFlowFailed   = "AUTH_FLOW_FAILED"
	ErrCodeUnknownMessage   = "UNKNOWN_MESSAGE"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeForbiddenOrigin  = "FORBIDDEN_ORIGIN"
)

// ValidationError は必須項目が空などの入力不備を表す。
// 永続化の前に返され、ストアは変更されない。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError はIDに対応するレコードが存在しないことを表す。
type NotFoundError struct {
	Kind string // "todo", "bookmark"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFoundError はNotFoundErrorを生成する。
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StoreError は下位のキーバリューストアの呼び出し失敗を表す。リトライはしない。
type StoreError struct {
	Op  string // get, set, remove
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NetworkError は外部REST APIの非2xx応答または通信失敗を表す。
type NetworkError struct {
	Method     string
	URL        string
	StatusCode int // 通信失敗時は0
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error: %s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("API error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthFlowError は外部認証フローがエラーを返した、またはトークンを取り出せなかったことを表す。
type AuthFlowError struct {
	Reason string
}

func (e *AuthFlowError) Error() string {
	return "auth flow failed: " + e.Reason
}

// ToAPIError はドメインエラーを統一エラーフォーマットに変換する。
// 既知のエラー型でない場合はfalseを返す。
func ToAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return &APIError{
			Code:     ErrCodeValidation,
			Message:  fmt.Sprintf("入力内容が正しくありません: %s (%s)", vErr.Field, vErr.Reason),
			Category: "validation",
			Action:   "必須項目を入力してから再度お試しください。",
		}, true
	}

	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		code := ErrCodeNotFound
		switch nfErr.Kind {
		case "todo":
			code = ErrCodeTodoNotFound
		case "bookmark":
			code = ErrCodeBookmarkNotFound
		}
		return &APIError{
			Code:     code,
			Message:  fmt.Sprintf("指定されたデータが見つかりません: %s", nfErr.ID),
			Category: "validation",
			Action:   "一覧を再読み込みしてIDを確認してください。",
		}, true
	}

	var afErr *AuthFlowError
	if errors.As(err, &afErr) {
		return &APIError{
			Code:     ErrCodeAuthFlowFailed,
			Message:  "ログインを完了できませんでした。",
			Category: "auth",
			Action:   "もう一度ログインしてください。",
		}, true
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return &APIError{
			Code:     ErrCodeNetworkFailed,
			Message:  "外部APIの呼び出しに失敗しました。",
			Category: "network",
			Action:   "しばらく待ってから再度お試しください。",
		}, true
	}

	var stErr *StoreError
	if errors.As(err, &stErr) {
		return &APIError{
			Code:     ErrCodeStoreFailed,
			Message:  "データの保存または読み込みに失敗しました。",
			Category: "store",
			Action:   "しばらく待ってから再度お試しください。",
		}, true
	}

	return nil, false
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewUnknownMessageError は未対応のメッセージ種別エラーを生成する。
func NewUnknownMessageError(msgType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownMessage,
		Message:  fmt.Sprintf("未対応のメッセージ種別です: %s", msgType),
		Category: "validation",
		Action:   "SAVE_BOOKMARK を指定してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
