// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はタスクの説明やコメント本文などの利用者入力から
// HTMLマークアップを除去し、プレーンテキストとして保存できる形にする。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト入力のサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// Sanitize はマークアップを除去したテキストを返す。
	// script, styleタグは内容ごと除去する。前後の空白は取り除く。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(text string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフのため共有して使用する。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はマークアップを除去したテキストを返す。
// StrictPolicyはテキスト中の&や<をエスケープするため、保存前に元の文字へ戻す。
func (s *textSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
