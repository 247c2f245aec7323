package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
)

// --- モック定義 ---

type mockInteractionService struct {
	addCommentFn     func(ctx context.Context, userID, productID string, rating int, content string) (string, error)
	listCommentsFn   func(ctx context.Context, productID string) ([]repository.CommentWithAuthor, error)
	deleteCommentFn  func(ctx context.Context, commentID, userID string) error
	listFoldersFn    func(ctx context.Context, userID string) ([]model.FavoriteFolder, error)
	createFolderFn   func(ctx context.Context, userID, name string) (string, error)
	renameFolderFn   func(ctx context.Context, folderID, userID, name string) error
	deleteFolderFn   func(ctx context.Context, folderID, userID string) error
	addFavoriteFn    func(ctx context.Context, folderID, userID, productID string) error
	listFavoritesFn  func(ctx context.Context, folderID, userID string) ([]repository.FavoriteItemWithProduct, error)
	removeFavoriteFn func(ctx context.Context, folderID, userID, productID string) error
	sendMessageFn    func(ctx context.Context, senderID, receiverID, content string) (string, error)
	listMessagesFn   func(ctx context.Context, userID string) ([]repository.MessageWithSender, error)
}

func (m *mockInteractionService) AddComment(ctx context.Context, userID, productID string, rating int, content string) (string, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, userID, productID, rating, content)
	}
	return "", nil
}

func (m *mockInteractionService) ListComments(ctx context.Context, productID string) ([]repository.CommentWithAuthor, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockInteractionService) DeleteComment(ctx context.Context, commentID, userID string) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, commentID, userID)
	}
	return nil
}

func (m *mockInteractionService) ListFolders(ctx context.Context, userID string) ([]model.FavoriteFolder, error) {
	if m.listFoldersFn != nil {
		return m.listFoldersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockInteractionService) CreateFolder(ctx context.Context, userID, name string) (string, error) {
	if m.createFolderFn != nil {
		return m.createFolderFn(ctx, userID, name)
	}
	return "", nil
}

func (m *mockInteractionService) RenameFolder(ctx context.Context, folderID, userID, name string) error {
	if m.renameFolderFn != nil {
		return m.renameFolderFn(ctx, folderID, userID, name)
	}
	return nil
}

func (m *mockInteractionService) DeleteFolder(ctx context.Context, folderID, userID string) error {
	if m.deleteFolderFn != nil {
		return m.deleteFolderFn(ctx, folderID, userID)
	}
	return nil
}

func (m *mockInteractionService) AddFavorite(ctx context.Context, folderID, userID, productID string) error {
	if m.addFavoriteFn != nil {
		return m.addFavoriteFn(ctx, folderID, userID, productID)
	}
	return nil
}

func (m *mockInteractionService) ListFavorites(ctx context.Context, folderID, userID string) ([]repository.FavoriteItemWithProduct, error) {
	if m.listFavoritesFn != nil {
		return m.listFavoritesFn(ctx, folderID, userID)
	}
	return nil, nil
}

func (m *mockInteractionService) RemoveFavorite(ctx context.Context, folderID, userID, productID string) error {
	if m.removeFavoriteFn != nil {
		return m.removeFavoriteFn(ctx, folderID, userID, productID)
	}
	return nil
}

func (m *mockInteractionService) SendMessage(ctx context.Context, senderID, receiverID, content string) (string, error) {
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, senderID, receiverID, content)
	}
	return "", nil
}

func (m *mockInteractionService) ListMessages(ctx context.Context, userID string) ([]repository.MessageWithSender, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, userID)
	}
	return nil, nil
}

// --- テスト ---

func TestInteractionHandler_PublishComment_DefaultRating(t *testing.T) {
	var gotRating int
	svc := &mockInteractionService{
		addCommentFn: func(ctx context.Context, userID, productID string, rating int, content string) (string, error) {
			gotRating = rating
			return "comment-1", nil
		},
	}
	h := NewInteractionHandler(svc)

	// ratingを省略した場合は5として扱われること
	body := `{"product_id":"prod-1","content":"很好的商品"}`
	req := httptest.NewRequest(http.MethodPost, "/api/publish_comment", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.PublishComment(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotRating != 5 {
		t.Errorf("rating = %d, want 5", gotRating)
	}
}

func TestInteractionHandler_PublishComment_ExplicitRating(t *testing.T) {
	var gotRating int
	svc := &mockInteractionService{
		addCommentFn: func(ctx context.Context, userID, productID string, rating int, content string) (string, error) {
			gotRating = rating
			return "comment-1", nil
		},
	}
	h := NewInteractionHandler(svc)

	body := `{"product_id":"prod-1","rating":2,"content":"一般"}`
	req := httptest.NewRequest(http.MethodPost, "/api/publish_comment", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.PublishComment(w, req)

	if gotRating != 2 {
		t.Errorf("rating = %d, want 2", gotRating)
	}
}

func TestInteractionHandler_GetComments(t *testing.T) {
	svc := &mockInteractionService{
		listCommentsFn: func(ctx context.Context, productID string) ([]repository.CommentWithAuthor, error) {
			return []repository.CommentWithAuthor{
				{
					Comment: model.Comment{
						ID:        "comment-1",
						UserID:    "alice",
						ProductID: productID,
						Rating:    4,
						Content:   "不错",
						CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
					},
					Nickname:  "小爱",
					AvatarURL: "/api/uploads/avatar-1",
				},
			}, nil
		},
	}
	h := NewInteractionHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/get_comments/prod-1", nil)
	req = withURLParam(req, "productID", "prod-1")
	w := httptest.NewRecorder()

	h.GetComments(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0]["nickname"] != "小爱" {
		t.Errorf("nickname = %v", resp[0]["nickname"])
	}
	if resp[0]["rating"] != float64(4) {
		t.Errorf("rating = %v", resp[0]["rating"])
	}
}

func TestInteractionHandler_DeleteComment_NotAuthor(t *testing.T) {
	svc := &mockInteractionService{
		deleteCommentFn: func(ctx context.Context, commentID, userID string) error {
			return model.NewPermissionDeniedError("只能删除自己的评论")
		},
	}
	h := NewInteractionHandler(svc)

	req := newAuthedRequest(http.MethodDelete, "/api/delete_comment/comment-1", "intruder")
	req = withURLParam(req, "id", "comment-1")
	w := httptest.NewRecorder()

	h.DeleteComment(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestInteractionHandler_CreateFavoriteFolder(t *testing.T) {
	svc := &mockInteractionService{
		createFolderFn: func(ctx context.Context, userID, name string) (string, error) {
			if name != "心愿单" {
				t.Errorf("name = %q", name)
			}
			return "folder-1", nil
		},
	}
	h := NewInteractionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/create_favorite_folder", strings.NewReader(`{"name":"心愿单"}`))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.CreateFavoriteFolder(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	body := decodeBody(t, w)
	if body["folder_id"] != "folder-1" {
		t.Errorf("folder_id = %v", body["folder_id"])
	}
}

func TestInteractionHandler_ModifyFavoriteFolder_MissingID(t *testing.T) {
	called := false
	svc := &mockInteractionService{
		renameFolderFn: func(ctx context.Context, folderID, userID, name string) error {
			called = true
			return nil
		},
	}
	h := NewInteractionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/modify_favorite_folder", strings.NewReader(`{"name":"新名字"}`))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.ModifyFavoriteFolder(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("RenameFolder should not be called without a folder ID")
	}
}

func TestInteractionHandler_FavoriteProduct(t *testing.T) {
	var gotFolder, gotUser, gotProduct string
	svc := &mockInteractionService{
		addFavoriteFn: func(ctx context.Context, folderID, userID, productID string) error {
			gotFolder = folderID
			gotUser = userID
			gotProduct = productID
			return nil
		},
	}
	h := NewInteractionHandler(svc)

	body := `{"folder_id":"folder-1","product_id":"prod-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/favorite_product", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.FavoriteProduct(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFolder != "folder-1" || gotUser != "alice" || gotProduct != "prod-1" {
		t.Errorf("AddFavorite called with (%q, %q, %q)", gotFolder, gotUser, gotProduct)
	}
}

func TestInteractionHandler_FavoriteProduct_FolderNotOwned(t *testing.T) {
	svc := &mockInteractionService{
		addFavoriteFn: func(ctx context.Context, folderID, userID, productID string) error {
			return model.NewFolderNotFoundError()
		},
	}
	h := NewInteractionHandler(svc)

	body := `{"folder_id":"folder-x","product_id":"prod-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/favorite_product", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.FavoriteProduct(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestInteractionHandler_GetFavorites(t *testing.T) {
	svc := &mockInteractionService{
		listFavoritesFn: func(ctx context.Context, folderID, userID string) ([]repository.FavoriteItemWithProduct, error) {
			return []repository.FavoriteItemWithProduct{
				{
					ProductID:    "prod-1",
					ProductTitle: "二手相机",
					Price:        1200,
					ImageURL:     "/api/uploads/img-1",
					CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	h := NewInteractionHandler(svc)

	req := newAuthedRequest(http.MethodGet, "/api/get_favorites/folder-1", "alice")
	req = withURLParam(req, "folderID", "folder-1")
	w := httptest.NewRecorder()

	h.GetFavorites(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0]["product_title"] != "二手相机" {
		t.Errorf("product_title = %v", resp[0]["product_title"])
	}
}

func TestInteractionHandler_DeleteFavorite(t *testing.T) {
	var gotFolder, gotProduct string
	svc := &mockInteractionService{
		removeFavoriteFn: func(ctx context.Context, folderID, userID, productID string) error {
			gotFolder = folderID
			gotProduct = productID
			return nil
		},
	}
	h := NewInteractionHandler(svc)

	req := newAuthedRequest(http.MethodDelete, "/api/delete_favorite/folder-1/product/prod-1", "alice")
	req = withURLParam(req, "folderID", "folder-1")
	req = withURLParam(req, "productID", "prod-1")
	w := httptest.NewRecorder()

	h.DeleteFavorite(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFolder != "folder-1" || gotProduct != "prod-1" {
		t.Errorf("RemoveFavorite called with (%q, %q)", gotFolder, gotProduct)
	}
}

func TestInteractionHandler_SendMsg(t *testing.T) {
	svc := &mockInteractionService{
		sendMessageFn: func(ctx context.Context, senderID, receiverID, content string) (string, error) {
			if senderID != "alice" || receiverID != "bob" {
				t.Errorf("SendMessage called with (%q, %q)", senderID, receiverID)
			}
			return "msg-1", nil
		},
	}
	h := NewInteractionHandler(svc)

	body := `{"receiver":"bob","content":"你好"}`
	req := httptest.NewRequest(http.MethodPost, "/api/send_msg", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "alice"))
	w := httptest.NewRecorder()

	h.SendMsg(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	respBody := decodeBody(t, w)
	if respBody["message_id"] != "msg-1" {
		t.Errorf("message_id = %v", respBody["message_id"])
	}
}

func TestInteractionHandler_GetMsgs_IsMeFlag(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockInteractionService{
		listMessagesFn: func(ctx context.Context, userID string) ([]repository.MessageWithSender, error) {
			return []repository.MessageWithSender{
				{
					Message: model.Message{
						ID:         "msg-1",
						SenderID:   "alice",
						ReceiverID: "bob",
						Content:    "你好",
						CreatedAt:  now,
					},
					SenderNickname: "小爱",
				},
				{
					Message: model.Message{
						ID:         "msg-2",
						SenderID:   "bob",
						ReceiverID: "alice",
						Content:    "你好，在的",
						CreatedAt:  now,
					},
					SenderNickname: "小波",
				},
			}, nil
		},
	}
	h := NewInteractionHandler(svc)

	req := newAuthedRequest(http.MethodGet, "/api/get_msgs", "alice")
	w := httptest.NewRecorder()

	h.GetMsgs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0]["is_me"] != true {
		t.Errorf("is_me[0] = %v, want true", resp[0]["is_me"])
	}
	if resp[1]["is_me"] != false {
		t.Errorf("is_me[1] = %v, want false", resp[1]["is_me"])
	}
}
