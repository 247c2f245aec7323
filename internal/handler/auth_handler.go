package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, userName, password string) error
	Login(ctx context.Context, userName, password string) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

// AuthHandler はユーザー認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

// Register はユーザー登録を処理する。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.Register(r.Context(), req.UserName, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "注册成功",
	})
}

// Login はログインを処理し、ベアラートークンを発行する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	token, err := h.service.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": req.UserName,
		"message":  "登录成功",
	})
}

// Logout はトークンを失効させる。
// POST /api/logout
// トークンが提示されていない、または既に無効な場合は400を返す。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "未提供有效的登录凭证",
		})
		return
	}

	existed, err := h.service.Logout(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !existed {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "登录凭证已失效",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "退出登录成功",
	})
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
