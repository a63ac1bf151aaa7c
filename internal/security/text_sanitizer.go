package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は取り込んだページのタイトルからマークアップを取り除く。
// ユーザーが入力したテキストには適用しない。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はすべてのタグを除去するStrictPolicyでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean はタグを除去し、エスケープされた文字を元に戻し、前後の空白と連続する空白を詰める。
// script/style要素は中身ごと除去される。
func (s *TextSanitizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	stripped := html.UnescapeString(s.policy.Sanitize(text))
	return strings.Join(strings.Fields(stripped), " ")
}
