// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 内部エラーの詳細はログのみに記録し、このメッセージには含めない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（ユーザー向け、中国語）
	Category string // カテゴリ: auth, validation, product, order, interaction, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodePurchaseConflict   = "PURCHASE_CONFLICT"
	ErrCodeSelfPurchase       = "SELF_PURCHASE"
	ErrCodePermissionDenied   = "PERMISSION_DENIED"
	ErrCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	ErrCodeFolderNotFound     = "FOLDER_NOT_FOUND"
	ErrCodeFavoriteNotFound   = "FAVORITE_NOT_FOUND"
	ErrCodeUploadNotFound     = "UPLOAD_NOT_FOUND"
	ErrCodeUnsupportedFile    = "UNSUPPORTED_FILE_TYPE"
	ErrCodeBlockedURL         = "BLOCKED_URL"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// トークンの有効期限切れも区別せずこのエラーで報告する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "登录失效，请重新登录",
		Category: "auth",
		Action:   "请重新登录后再试。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "用户不存在",
		Category: "auth",
		Action:   "请确认用户名是否正确。",
	}
}

// NewUserExistsError はユーザー名重複エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  "用户名已存在",
		Category: "auth",
		Action:   "请更换用户名后重试。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "用户名或密码错误",
		Category: "auth",
		Action:   "请确认用户名和密码后重试。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "请检查输入内容后重试。",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  "商品不存在",
		Category: "product",
		Action:   "请确认商品是否已被删除。",
	}
}

// NewProductUnavailableError は商品が購入可能状態でない場合のエラーを生成する。
// 売却済み・取り下げ済みの商品に対する購入前チェックで使用する。
func NewProductUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeProductUnavailable,
		Message:  "手慢了，商品已售出或下架",
		Category: "order",
		Action:   "请浏览其他在售商品。",
	}
}

// NewPurchaseConflictError は購入競争に敗れた場合のエラーを生成する。
// 条件付きUPDATEの影響行数が0だった場合にのみ使用する。
func NewPurchaseConflictError() *APIError {
	return &APIError{
		Code:     ErrCodePurchaseConflict,
		Message:  "购买失败，商品已被他人抢先购买",
		Category: "order",
		Action:   "请浏览其他在售商品。",
	}
}

// NewSelfPurchaseError は自己購入エラーを生成する。
func NewSelfPurchaseError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfPurchase,
		Message:  "不能购买自己发布的商品",
		Category: "order",
		Action:   "如需下架商品，请使用删除功能。",
	}
}

// NewPermissionDeniedError は権限不足エラーを生成する。
func NewPermissionDeniedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodePermissionDenied,
		Message:  message,
		Category: "validation",
		Action:   "只能操作自己的数据。",
	}
}

// NewCommentNotFoundError はコメント未検出エラーを生成する。
func NewCommentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  "评论不存在",
		Category: "interaction",
		Action:   "请刷新页面后确认。",
	}
}

// NewFolderNotFoundError は収藏夹未検出エラーを生成する。
// 他人の収藏夹へのアクセスも存在しない扱いとし、所有関係を漏らさない。
func NewFolderNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeFolderNotFound,
		Message:  "收藏夹不存在或无权限",
		Category: "interaction",
		Action:   "请确认收藏夹是否存在。",
	}
}

// NewFavoriteNotFoundError は収藏項目未検出エラーを生成する。
func NewFavoriteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  "该商品不在收藏夹中",
		Category: "interaction",
		Action:   "请刷新收藏夹后确认。",
	}
}

// NewUploadNotFoundError はアップロード画像未検出エラーを生成する。
func NewUploadNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUploadNotFound,
		Message:  "文件不存在",
		Category: "validation",
		Action:   "请重新上传文件。",
	}
}

// NewUnsupportedFileError は非対応ファイル形式エラーを生成する。
func NewUnsupportedFileError() *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedFile,
		Message:  "不支持的文件格式 (仅支持 png, jpg, jpeg, gif)",
		Category: "validation",
		Action:   "请上传 png、jpg、jpeg 或 gif 格式的图片。",
	}
}

// NewBlockedURLError はセキュリティポリシーによりブロックされたURLのエラーを生成する。
func NewBlockedURLError() *APIError {
	return &APIError{
		Code:     ErrCodeBlockedURL,
		Message:  "头像地址不可用",
		Category: "validation",
		Action:   "请使用公开可访问的图片地址。内网地址不被允许。",
	}
}
