// Package product は商品の出品・照会・変更のドメインロジックを提供する。
package product

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
	"github.com/hitoshi/fleamart/internal/security"
)

// ProductInput は出品・更新の入力を表す。
type ProductInput struct {
	Title       string
	Price       float64
	ImageURL    string
	Description string
	CategoryID  string
}

// Service は商品操作を提供する。
// 商品の削除は物理削除ではなくdeleted状態への遷移であり、
// 既存の注文から商品情報を参照し続けられる。
type Service struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
	}
}

// ListCategories は全カテゴリを返す。
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListProducts は全商品を出品者情報付きで新着順に返す。
func (s *Service) ListProducts(ctx context.Context) ([]repository.ProductWithSeller, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Search は出品中の商品をキーワードで検索する。
// 空のキーワードは全件検索として扱う。
func (s *Service) Search(ctx context.Context, keyword string) ([]repository.ProductWithSeller, error) {
	keyword = strings.TrimSpace(keyword)
	products, err := s.productRepo.SearchActive(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetDetail は商品を出品者情報付きで返す。
func (s *Service) GetDetail(ctx context.Context, id string) (*repository.ProductWithSeller, error) {
	product, err := s.productRepo.FindByIDWithSeller(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError()
	}
	return product, nil
}

// Create は商品を出品する。作成された商品IDを返す。
func (s *Service) Create(ctx context.Context, ownerID string, input ProductInput) (string, error) {
	title := s.sanitizer.SanitizePlainText(input.Title)
	if title == "" {
		return "", model.NewValidationError("商品标题不能为空")
	}
	if input.Price <= 0 {
		return "", model.NewValidationError("价格必须大于0")
	}

	product := &model.Product{
		ID:          uuid.New().String(),
		Title:       title,
		Price:       input.Price,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Description: s.sanitizer.SanitizeRichText(input.Description),
		OwnerID:     ownerID,
		Status:      model.ProductStatusActive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		product.CategoryID = &categoryID
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product listed",
		slog.String("product_id", product.ID),
		slog.String("owner_id", ownerID),
	)
	return product.ID, nil
}

// Update は出品者本人の商品を更新する。
// 存在しない商品はNotFound、他人の商品はPermissionDeniedとして報告する。
func (s *Service) Update(ctx context.Context, id, ownerID string, input ProductInput) error {
	title := s.sanitizer.SanitizePlainText(input.Title)
	if title == "" {
		return model.NewValidationError("商品标题不能为空")
	}
	if input.Price <= 0 {
		return model.NewValidationError("价格必须大于0")
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if existing == nil {
		return model.NewProductNotFoundError()
	}
	if existing.OwnerID != ownerID {
		return model.NewPermissionDeniedError("只能修改自己发布的商品")
	}

	product := &model.Product{
		ID:          id,
		Title:       title,
		Price:       input.Price,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Description: s.sanitizer.SanitizeRichText(input.Description),
		OwnerID:     ownerID,
		UpdatedAt:   time.Now(),
	}
	if categoryID := strings.TrimSpace(input.CategoryID); categoryID != "" {
		product.CategoryID = &categoryID
	}

	updated, err := s.productRepo.UpdateOwned(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		// 事前チェックとの間に削除された場合
		return model.NewProductNotFoundError()
	}
	return nil
}

// Delete は出品者本人の商品をdeleted状態に遷移させる。
// 存在しない商品はNotFound、他人の商品はPermissionDeniedとして報告する。
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if existing == nil {
		return model.NewProductNotFoundError()
	}
	if existing.OwnerID != ownerID {
		return model.NewPermissionDeniedError("只能删除自己发布的商品")
	}

	deleted, err := s.productRepo.SoftDeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.NewProductNotFoundError()
	}

	slog.Info("product withdrawn",
		slog.String("product_id", id),
		slog.String("owner_id", ownerID),
	)
	return nil
}
