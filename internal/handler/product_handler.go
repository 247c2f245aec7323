package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/product"
	"github.com/hitoshi/fleamart/internal/repository"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListProducts(ctx context.Context) ([]repository.ProductWithSeller, error)
	Search(ctx context.Context, keyword string) ([]repository.ProductWithSeller, error)
	GetDetail(ctx context.Context, id string) (*repository.ProductWithSeller, error)
	Create(ctx context.Context, ownerID string, input product.ProductInput) (string, error)
	Update(ctx context.Context, id, ownerID string, input product.ProductInput) error
	Delete(ctx context.Context, id, ownerID string) error
}

// ProductHandler は商品管理のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// productRequest は出品・更新リクエストのボディ。
type productRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
}

// productResponse は商品一覧・詳細のAPIレスポンス。
type productResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	Description  string  `json:"description"`
	CategoryID   string  `json:"category_id,omitempty"`
	Status       string  `json:"status"`
	SellerName   string  `json:"seller_name"`
	SellerAvatar string  `json:"seller_avatar"`
	CreatedAt    string  `json:"created_at"`
}

// categoryResponse はカテゴリのAPIレスポンス。
type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetCategories はカテゴリ一覧を返す。
// GET /api/get_categories
func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProducts は商品一覧を新着順に返す。
// GET /api/get_products
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// SearchProducts は出品中の商品をキーワードで検索する。
// GET /api/search_products?keyword=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	products, err := h.service.Search(r.Context(), keyword)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// GetProduct は商品詳細を返す。
// GET /api/product/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*detail))
}

// CreateProduct は商品を出品する。
// POST /api/create_product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	id, err := h.service.Create(r.Context(), userName, product.ProductInput{
		Title:       req.Title,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"product_id": id,
		"message":    "发布成功",
	})
}

// ModifyProduct は出品者本人の商品を更新する。
// POST /api/modify_product
func (h *ProductHandler) ModifyProduct(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("缺少商品ID"))
		return
	}

	err = h.service.Update(r.Context(), req.ID, userName, product.ProductInput{
		Title:       req.Title,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "修改成功",
	})
}

// DeleteProduct は出品者本人の商品を取り下げる。
// DELETE /api/delete_product/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id, userName); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "删除成功",
	})
}

// --- ヘルパー関数 ---

func toProductResponse(p repository.ProductWithSeller) productResponse {
	resp := productResponse{
		ID:           p.ID,
		Title:        p.Title,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Description:  p.Description,
		Status:       string(p.Status),
		SellerName:   p.SellerName,
		SellerAvatar: p.SellerAvatar,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
	if p.CategoryID != nil {
		resp.CategoryID = *p.CategoryID
	}
	return resp
}

func toProductResponses(products []repository.ProductWithSeller) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp
}
