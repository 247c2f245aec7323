package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fleamart/internal/middleware"
	"github.com/hitoshi/fleamart/internal/repository"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	Buy(ctx context.Context, productID, buyerID string) (string, error)
	ListOrders(ctx context.Context, buyerID string) ([]repository.OrderWithProduct, error)
}

// OrderHandler は購入と注文照会のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// orderResponse は注文一覧のAPIレスポンス。
type orderResponse struct {
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	ImageURL     string  `json:"image_url"`
	Price        float64 `json:"price"`
	CreatedAt    string  `json:"created_at"`
}

// BuyProduct は購入操作を処理する。
// POST /api/buy_product/{id}
//
// 競合する購入者のうち勝者は1人だけであり、敗者には409が返る。
// 購入成立時のレスポンスは {"order_id": ..., "message": "购买成功"}。
func (h *OrderHandler) BuyProduct(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "id")

	orderID, err := h.service.Buy(r.Context(), productID, userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"order_id": orderID,
		"message":  "购买成功",
	})
}

// GetOrders は購入者の注文一覧を商品情報付きで返す。
// GET /api/get_orders
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userName, err := middleware.UserNameFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderResponse{
			OrderID:      o.ID,
			Status:       o.Status,
			ProductID:    o.ProductID,
			ProductTitle: o.ProductTitle,
			ImageURL:     o.ImageURL,
			Price:        o.Price,
			CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
