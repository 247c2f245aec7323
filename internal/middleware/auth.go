// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/fleamart/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userNameContextKey はリクエストコンテキストにユーザー名を格納するためのキー。
var userNameContextKey = contextKey("user_name")

// TokenValidator はトークン検証に必要なインターフェース。
// auth.Authorityの部分集合として定義する。
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証する
// ミドルウェアを返す。
// 認証済みユーザー名をリクエストコンテキストに注入する。
// トークンが提示されていない場合は401、提示されたが無効な場合は403を返す。
// 期限切れと未登録のトークンは区別しない。
func NewAuthMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			userName, err := validator.Validate(r.Context(), token)
			if err != nil {
				slog.Error("failed to validate token",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if userName == "" {
				WriteErrorResponse(w, http.StatusForbidden, model.NewUnauthenticatedError())
				return
			}

			ctx := context.WithValue(r.Context(), userNameContextKey, userName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken はAuthorizationヘッダーからトークンを取り出す。
// "Bearer <token>"形式と生トークンの両方を受け付ける。
func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// UserNameFromContext はリクエストコンテキストからユーザー名を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserNameFromContext(ctx context.Context) (string, error) {
	userName, ok := ctx.Value(userNameContextKey).(string)
	if !ok || userName == "" {
		return "", fmt.Errorf("user name not found in context")
	}
	return userName, nil
}

// ContextWithUserName はコンテキストにユーザー名を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserName(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, userNameContextKey, userName)
}
