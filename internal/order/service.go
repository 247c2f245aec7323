// Package order は購入トランザクションと注文照会のドメインロジックを提供する。
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
)

// MetricsRecorder は購入処理の結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordPurchaseSuccess()
	RecordPurchaseConflict()
}

// Service は購入コーディネータ。
// プロセス内のロックは一切使わず、正しさはストレージ層の
// トランザクション分離と条件付きUPDATEの述語にのみ依存する。
// これによりサービス自体はステートレスであり、同一ストアに対して
// 複数インスタンスを安全に並走させられる。
type Service struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	metrics     MetricsRecorder
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, metrics MetricsRecorder) *Service {
	return &Service{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		metrics:     metrics,
	}
}

// Buy は購入操作を実行し、成立した注文IDを返す。
//
// 事前条件チェック（副作用なし）:
//  1. 商品が存在すること
//  2. 購入者が出品者本人でないこと（商品の状態に関わらず拒否する）
//  3. 商品がactiveであること
//
// その後の状態遷移と注文作成はOrderRepositoryが単一トランザクションで
// 実行する。事前条件チェックとトランザクションの間に他の購入者が
// 割り込んだ場合、条件付きUPDATEの影響行数0として検出され、
// Conflictとして呼び出し元に報告される。自動リトライはしない。
func (s *Service) Buy(ctx context.Context, productID, buyerID string) (string, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return "", model.NewProductNotFoundError()
	}

	if product.OwnerID == buyerID {
		return "", model.NewSelfPurchaseError()
	}

	if product.Status != model.ProductStatusActive {
		return "", model.NewProductUnavailableError()
	}

	order := &model.Order{
		ID:        uuid.New().String(),
		Status:    model.OrderStatusCompleted,
		BuyerID:   buyerID,
		SellerID:  product.OwnerID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}

	if err := s.orderRepo.CreateForActiveProduct(ctx, order); err != nil {
		if errors.Is(err, repository.ErrProductUnavailable) {
			// 並行する購入者に敗れた。注文は作成されておらず、部分的な
			// 状態も残っていない。
			if s.metrics != nil {
				s.metrics.RecordPurchaseConflict()
			}
			slog.Info("purchase lost race",
				slog.String("product_id", productID),
				slog.String("buyer_id", buyerID),
			)
			return "", model.NewPurchaseConflictError()
		}
		return "", fmt.Errorf("purchase transaction failed: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPurchaseSuccess()
	}
	slog.Info("purchase completed",
		slog.String("order_id", order.ID),
		slog.String("product_id", productID),
		slog.String("buyer_id", buyerID),
		slog.String("seller_id", order.SellerID),
	)

	return order.ID, nil
}

// ListOrders は購入者の注文一覧を商品情報付きで返す。
func (s *Service) ListOrders(ctx context.Context, buyerID string) ([]repository.OrderWithProduct, error) {
	orders, err := s.orderRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
