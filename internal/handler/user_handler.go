package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userName string) (*model.User, error)
	UpdateProfile(ctx context.Context, userName string, update user.ProfileUpdate) error
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// profileResponse はプロフィールのAPIレスポンス。パスワードは含まない。
type profileResponse struct {
	UserName  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone"`
	Intro     string `json:"intro"`
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
type updateProfileRequest struct {
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone"`
	Intro     string `json:"intro"`
}

// GetUser は現在のログインユーザーのプロフィールを返す。
// GET /api/user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserName:  profile.UserName,
		Nickname:  profile.Nickname,
		AvatarURL: profile.AvatarURL,
		Phone:     profile.Phone,
		Intro:     profile.Intro,
	})
}

// UpdateUser はプロフィールを更新する。
// POST /api/update_user
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	err = h.service.UpdateProfile(r.Context(), userName, user.ProfileUpdate{
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
		Phone:     req.Phone,
		Intro:     req.Intro,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "修改成功",
	})
}
