package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/model"
)

// UploadServiceInterface はアップロードハンドラーが必要とするサービスインターフェース。
type UploadServiceInterface interface {
	Store(ctx context.Context, userID, fileName string, data []byte) (string, error)
	Get(ctx context.Context, id string) (*model.Upload, error)
}

// UploadHandler は画像のアップロードと配信のHTTPハンドラー。
type UploadHandler struct {
	service UploadServiceInterface
	maxSize int64
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(service UploadServiceInterface, maxSize int64) *UploadHandler {
	return &UploadHandler{
		service: service,
		maxSize: maxSize,
	}
}

// Upload はmultipart形式の画像アップロードを処理する。
// POST /api/upload（フォームフィールド名はfile）
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	// multipartのパース前にリクエストボディ全体のサイズを制限する
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("文件上传失败"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("文件读取失败"))
		return
	}

	path, err := h.service.Store(r.Context(), userName, header.Filename, data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"url":     path,
		"message": "上传成功",
	})
}

// Serve は保存済みの画像を配信する。
// GET /api/uploads/{id}
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	upload, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", upload.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(upload.Data)))
	// 画像はIDで不変なので積極的にキャッシュさせる
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(upload.Data)
}
