package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
)

// InteractionServiceInterface はインタラクションハンドラーが必要とする
// サービスインターフェース。
type InteractionServiceInterface interface {
	AddComment(ctx context.Context, userID, productID string, rating int, content string) (string, error)
	ListComments(ctx context.Context, productID string) ([]repository.CommentWithAuthor, error)
	DeleteComment(ctx context.Context, commentID, userID string) error

	ListFolders(ctx context.Context, userID string) ([]model.FavoriteFolder, error)
	CreateFolder(ctx context.Context, userID, name string) (string, error)
	RenameFolder(ctx context.Context, folderID, userID, name string) error
	DeleteFolder(ctx context.Context, folderID, userID string) error
	AddFavorite(ctx context.Context, folderID, userID, productID string) error
	ListFavorites(ctx context.Context, folderID, userID string) ([]repository.FavoriteItemWithProduct, error)
	RemoveFavorite(ctx context.Context, folderID, userID, productID string) error

	SendMessage(ctx context.Context, senderID, receiverID, content string) (string, error)
	ListMessages(ctx context.Context, userID string) ([]repository.MessageWithSender, error)
}

// InteractionHandler はコメント・収藏夹・メッセージのHTTPハンドラー。
type InteractionHandler struct {
	service InteractionServiceInterface
}

// NewInteractionHandler はInteractionHandlerを生成する。
func NewInteractionHandler(service InteractionServiceInterface) *InteractionHandler {
	return &InteractionHandler{service: service}
}

// publishCommentRequest はコメント投稿リクエストのボディ。
// ratingの省略時は5として扱う。
type publishCommentRequest struct {
	ProductID string `json:"product_id"`
	Rating    *int   `json:"rating"`
	Content   string `json:"content"`
}

// commentResponse はコメント一覧のAPIレスポンス。
type commentResponse struct {
	ID        string `json:"id"`
	UserName  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// PublishComment は商品にコメントを投稿する。
// POST /api/publish_comment
func (h *InteractionHandler) PublishComment(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req publishCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	rating := 5
	if req.Rating != nil {
		rating = *req.Rating
	}

	id, err := h.service.AddComment(r.Context(), userName, req.ProductID, rating, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"comment_id": id,
		"message":    "评论成功",
	})
}

// GetComments は商品のコメント一覧を返す。
// GET /api/get_comments/{productID}
func (h *InteractionHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	comments, err := h.service.ListComments(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentResponse{
			ID:        c.ID,
			UserName:  c.UserID,
			Nickname:  c.Nickname,
			AvatarURL: c.AvatarURL,
			Rating:    c.Rating,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteComment は投稿者本人のコメントを削除する。
// DELETE /api/delete_comment/{id}
func (h *InteractionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteComment(r.Context(), id, userName); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "删除成功",
	})
}

// folderRequest は収藏夹の作成・名前変更リクエストのボディ。
type folderRequest struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
}

// folderResponse は収藏夹一覧のAPIレスポンス。
type folderResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// GetFavoriteFolders はユーザーの収藏夹一覧を返す。
// GET /api/favorite_folders
func (h *InteractionHandler) GetFavoriteFolders(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	folders, err := h.service.ListFolders(r.Context(), userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]folderResponse, 0, len(folders))
	for _, f := range folders {
		resp = append(resp, folderResponse{
			ID:        f.ID,
			Name:      f.Name,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateFavoriteFolder は収藏夹を作成する。
// POST /api/create_favorite_folder
func (h *InteractionHandler) CreateFavoriteFolder(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	id, err := h.service.CreateFolder(r.Context(), userName, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"folder_id": id,
		"message":   "创建成功",
	})
}

// ModifyFavoriteFolder は収藏夹の名前を変更する。
// POST /api/modify_favorite_folder
func (h *InteractionHandler) ModifyFavoriteFolder(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.FolderID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("缺少收藏夹ID"))
		return
	}

	if err := h.service.RenameFolder(r.Context(), req.FolderID, userName, req.Name); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "修改成功",
	})
}

// DeleteFavoriteFolder は収藏夹を収藏項目ごと削除する。
// DELETE /api/delete_favorite_folder/{id}
func (h *InteractionHandler) DeleteFavoriteFolder(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteFolder(r.Context(), id, userName); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "删除成功",
	})
}

// favoriteProductRequest は収藏登録リクエストのボディ。
type favoriteProductRequest struct {
	FolderID  string `json:"folder_id"`
	ProductID string `json:"product_id"`
}

// favoriteItemResponse は収藏夹内の商品のAPIレスポンス。
type favoriteItemResponse struct {
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	CreatedAt    string  `json:"created_at"`
}

// FavoriteProduct は収藏夹に商品を登録する。登録済みの場合も成功を返す。
// POST /api/favorite_product
func (h *InteractionHandler) FavoriteProduct(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req favoriteProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.AddFavorite(r.Context(), req.FolderID, userName, req.ProductID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "收藏成功",
	})
}

// GetFavorites は収藏夹の商品一覧を返す。
// GET /api/get_favorites/{folderID}
func (h *InteractionHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	folderID := chi.URLParam(r, "folderID")
	items, err := h.service.ListFavorites(r.Context(), folderID, userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]favoriteItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, favoriteItemResponse{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Price:        item.Price,
			ImageURL:     item.ImageURL,
			CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteFavorite は収藏夹から商品を削除する。
// DELETE /api/delete_favorite/{folderID}/product/{productID}
func (h *InteractionHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	folderID := chi.URLParam(r, "folderID")
	productID := chi.URLParam(r, "productID")
	if err := h.service.RemoveFavorite(r.Context(), folderID, userName, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "取消收藏成功",
	})
}

// sendMessageRequest はメッセージ送信リクエストのボディ。
type sendMessageRequest struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// messageResponse はメッセージ一覧のAPIレスポンス。
// IsMeは現在のユーザーが送信者であることを示す。
type messageResponse struct {
	ID             string `json:"id"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	SenderNickname string `json:"sender_nickname"`
	SenderAvatar   string `json:"sender_avatar"`
	Content        string `json:"content"`
	IsMe           bool   `json:"is_me"`
	CreatedAt      string `json:"created_at"`
}

// SendMsg はダイレクトメッセージを送信する。
// POST /api/send_msg
func (h *InteractionHandler) SendMsg(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	id, err := h.service.SendMessage(r.Context(), userName, req.Receiver, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message_id": id,
		"message":    "发送成功",
	})
}

// GetMsgs はユーザーの送受信メッセージ一覧を返す。
// GET /api/get_msgs
func (h *InteractionHandler) GetMsgs(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	messages, err := h.service.ListMessages(r.Context(), userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageResponse{
			ID:             m.ID,
			Sender:         m.SenderID,
			Receiver:       m.ReceiverID,
			SenderNickname: m.SenderNickname,
			SenderAvatar:   m.SenderAvatar,
			Content:        m.Content,
			IsMe:           m.SenderID == userName,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
