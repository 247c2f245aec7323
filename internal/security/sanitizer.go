// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー投稿テキスト（商品説明・コメント・
// メッセージ・プロフィール）をサニタイズし、XSS攻撃などのセキュリティ
// リスクから閲覧者を保護する。bluemondayライブラリを使用した
// 許可リストベースのポリシーで、安全なタグのみを通過させる。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿テキストのサニタイズ機能の
// インターフェースを定義する。保存前に適用され、ストアには常に
// サニタイズ済みの値のみが入る。
type ContentSanitizerService interface {
	// SanitizeRichText は商品説明などの長文フィールドをサニタイズする。
	// 基本的な整形タグ（p, br, ul, ol, li, strong, em, blockquote, pre, code）
	// のみを通過させ、script, iframe, styleタグおよびon*イベント属性を
	// 除去する。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeRichText(raw string) string

	// SanitizePlainText はタイトル・ニックネーム・コメントなどの
	// 短文フィールドから全てのHTMLタグを除去し、前後の空白を取り除く。
	SanitizePlainText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
// ポリシーの内容:
//   - 長文用: p, br, ul, ol, li, blockquote, pre, code, strong, em のみ許可
//   - 短文用: 全タグ除去（StrictPolicy）
//   - script, iframe, style等は許可リストに含めないことで自動的に除去される
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	return &contentSanitizer{
		richPolicy:  rich,
		plainPolicy: bluemonday.StrictPolicy(),
	}
}

// SanitizeRichText は長文フィールドをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeRichText(raw string) string {
	return s.richPolicy.Sanitize(raw)
}

// SanitizePlainText は短文フィールドから全てのHTMLタグを除去する。
func (s *contentSanitizer) SanitizePlainText(raw string) string {
	return strings.TrimSpace(s.plainPolicy.Sanitize(raw))
}
