package security

import "github.com/microcosm-cc/bluemonday"

// CommentSanitizerService はコメント本文のサニタイズ機能のインターフェースを定義する。
// コメントAPIの応答はユーザー生成コンテンツであり、保存前に必ず通過させる。
type CommentSanitizerService interface {
	// Sanitize はコメント本文からすべてのHTMLタグと属性を除去した
	// プレーンテキストを返す。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(text string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// コメントはプレーンテキストとして扱うため、許可リストは空
// （StrictPolicy）でタグをすべて除去する。
func NewCommentSanitizer() *commentSanitizer {
	return &commentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はコメント本文からHTMLタグを除去する。
func (s *commentSanitizer) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}
