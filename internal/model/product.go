// Package model はドメインモデルを定義する。
package model

import "time"

// Product は出品された商品を表す。
type Product struct {
	ID          string
	Title       string
	Price       float64
	ImageURL    string
	Description string
	CategoryID  *string
	OwnerID     string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductStatus は商品のライフサイクル状態を表す。
// 販売フローにおける遷移は単調であり、一度soldまたはdeletedになった商品が
// activeに戻ることはない。
type ProductStatus string

const (
	// ProductStatusActive は購入可能な出品中状態。
	ProductStatusActive ProductStatus = "active"
	// ProductStatusSold は売却済みの終端状態。
	ProductStatusSold ProductStatus = "sold"
	// ProductStatusDeleted は出品者により取り下げられた終端状態。
	ProductStatusDeleted ProductStatus = "deleted"
)

// Category は商品カテゴリを表す。
type Category struct {
	ID   string
	Name string
}
