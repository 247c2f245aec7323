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
	"github.com/hitoshi/fleamart/internal/product"
	"github.com/hitoshi/fleamart/internal/repository"
)

// --- モック定義 ---

type mockProductService struct {
	listCategoriesFn func(ctx context.Context) ([]model.Category, error)
	listProductsFn   func(ctx context.Context) ([]repository.ProductWithSeller, error)
	searchFn         func(ctx context.Context, keyword string) ([]repository.ProductWithSeller, error)
	getDetailFn      func(ctx context.Context, id string) (*repository.ProductWithSeller, error)
	createFn         func(ctx context.Context, ownerID string, input product.ProductInput) (string, error)
	updateFn         func(ctx context.Context, id, ownerID string, input product.ProductInput) error
	deleteFn         func(ctx context.Context, id, ownerID string) error
}

func (m *mockProductService) ListCategories(ctx context.Context) ([]model.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return nil, nil
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]repository.ProductWithSeller, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx)
	}
	return nil, nil
}

func (m *mockProductService) Search(ctx context.Context, keyword string) ([]repository.ProductWithSeller, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, keyword)
	}
	return nil, nil
}

func (m *mockProductService) GetDetail(ctx context.Context, id string) (*repository.ProductWithSeller, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, model.NewProductNotFoundError()
}

func (m *mockProductService) Create(ctx context.Context, ownerID string, input product.ProductInput) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, input)
	}
	return "", nil
}

func (m *mockProductService) Update(ctx context.Context, id, ownerID string, input product.ProductInput) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, ownerID, input)
	}
	return nil
}

func (m *mockProductService) Delete(ctx context.Context, id, ownerID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil
}

func sampleProductWithSeller() repository.ProductWithSeller {
	categoryID := "cat-1"
	return repository.ProductWithSeller{
		Product: model.Product{
			ID:          "prod-1",
			Title:       "二手相机",
			Price:       1200,
			ImageURL:    "/api/uploads/img-1",
			Description: "<p>成色很好</p>",
			CategoryID:  &categoryID,
			Status:      model.ProductStatusActive,
			OwnerID:     "seller",
			CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		SellerName:   "seller",
		SellerAvatar: "/api/uploads/avatar-1",
	}
}

// --- テスト ---

func TestProductHandler_GetCategories(t *testing.T) {
	svc := &mockProductService{
		listCategoriesFn: func(ctx context.Context) ([]model.Category, error) {
			return []model.Category{
				{ID: "cat-1", Name: "数码产品"},
				{ID: "cat-2", Name: "图书"},
			}, nil
		},
	}
	h := NewProductHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/get_categories", nil)
	w := httptest.NewRecorder()

	h.GetCategories(w, req)

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
	if resp[0]["name"] != "数码产品" {
		t.Errorf("name = %v", resp[0]["name"])
	}
}

func TestProductHandler_GetProducts(t *testing.T) {
	svc := &mockProductService{
		listProductsFn: func(ctx context.Context) ([]repository.ProductWithSeller, error) {
			return []repository.ProductWithSeller{sampleProductWithSeller()}, nil
		},
	}
	h := NewProductHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/get_products", nil)
	w := httptest.NewRecorder()

	h.GetProducts(w, req)

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
	if resp[0]["seller_name"] != "seller" {
		t.Errorf("seller_name = %v", resp[0]["seller_name"])
	}
	if resp[0]["status"] != "active" {
		t.Errorf("status = %v", resp[0]["status"])
	}
	if resp[0]["category_id"] != "cat-1" {
		t.Errorf("category_id = %v", resp[0]["category_id"])
	}
}

func TestProductHandler_SearchProducts_PassesKeyword(t *testing.T) {
	var gotKeyword string
	svc := &mockProductService{
		searchFn: func(ctx context.Context, keyword string) ([]repository.ProductWithSeller, error) {
			gotKeyword = keyword
			return nil, nil
		},
	}
	h := NewProductHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/search_products?keyword=%E7%9B%B8%E6%9C%BA", nil)
	w := httptest.NewRecorder()

	h.SearchProducts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotKeyword != "相机" {
		t.Errorf("keyword = %q, want %q", gotKeyword, "相机")
	}
}

func TestProductHandler_GetProduct_NotFound(t *testing.T) {
	h := NewProductHandler(&mockProductService{})

	req := httptest.NewRequest(http.MethodGet, "/api/product/missing", nil)
	req = withURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.GetProduct(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestProductHandler_CreateProduct(t *testing.T) {
	var gotOwner string
	var gotInput product.ProductInput
	svc := &mockProductService{
		createFn: func(ctx context.Context, ownerID string, input product.ProductInput) (string, error) {
			gotOwner = ownerID
			gotInput = input
			return "prod-new", nil
		},
	}
	h := NewProductHandler(svc)

	body := `{"title":"旧书","price":15.5,"description":"九成新","category_id":"cat-2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/create_product", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "seller"))
	w := httptest.NewRecorder()

	h.CreateProduct(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotOwner != "seller" {
		t.Errorf("ownerID = %q", gotOwner)
	}
	if gotInput.Title != "旧书" || gotInput.Price != 15.5 || gotInput.CategoryID != "cat-2" {
		t.Errorf("input = %+v", gotInput)
	}

	respBody := decodeBody(t, w)
	if respBody["product_id"] != "prod-new" {
		t.Errorf("product_id = %v", respBody["product_id"])
	}
}

func TestProductHandler_CreateProduct_ValidationError(t *testing.T) {
	svc := &mockProductService{
		createFn: func(ctx context.Context, ownerID string, input product.ProductInput) (string, error) {
			return "", model.NewValidationError("商品标题不能为空")
		},
	}
	h := NewProductHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/create_product", strings.NewReader(`{"title":""}`))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "seller"))
	w := httptest.NewRecorder()

	h.CreateProduct(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProductHandler_ModifyProduct_MissingID(t *testing.T) {
	called := false
	svc := &mockProductService{
		updateFn: func(ctx context.Context, id, ownerID string, input product.ProductInput) error {
			called = true
			return nil
		},
	}
	h := NewProductHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/modify_product", strings.NewReader(`{"title":"新标题"}`))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "seller"))
	w := httptest.NewRecorder()

	h.ModifyProduct(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("Update should not be called without a product ID")
	}
}

func TestProductHandler_ModifyProduct_NotOwner(t *testing.T) {
	svc := &mockProductService{
		updateFn: func(ctx context.Context, id, ownerID string, input product.ProductInput) error {
			return model.NewPermissionDeniedError("只能修改自己发布的商品")
		},
	}
	h := NewProductHandler(svc)

	body := `{"id":"prod-1","title":"新标题","price":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/modify_product", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserName(req.Context(), "intruder"))
	w := httptest.NewRecorder()

	h.ModifyProduct(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	var gotID, gotOwner string
	svc := &mockProductService{
		deleteFn: func(ctx context.Context, id, ownerID string) error {
			gotID = id
			gotOwner = ownerID
			return nil
		},
	}
	h := NewProductHandler(svc)

	req := newAuthedRequest(http.MethodDelete, "/api/delete_product/prod-1", "seller")
	req = withURLParam(req, "id", "prod-1")
	w := httptest.NewRecorder()

	h.DeleteProduct(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotID != "prod-1" || gotOwner != "seller" {
		t.Errorf("Delete called with (%q, %q)", gotID, gotOwner)
	}
}
