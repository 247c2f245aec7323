// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/fleamart/internal/model"
)

// ErrProductUnavailable は購入トランザクションの条件付きUPDATEが1行も
// 更新しなかったことを表す。並行する購入者に先を越されたか、商品が
// 既に終端状態にあることを意味する。
var ErrProductUnavailable = errors.New("product is not available for purchase")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUserName は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUserName(ctx context.Context, userName string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はプロフィール項目を一括更新する。
	// 対象ユーザーが存在しない場合はfalseを返す。
	UpdateProfile(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error)
}

// CategoryRepository は商品カテゴリの永続化インターフェース。
type CategoryRepository interface {
	// List は全カテゴリを返す。
	List(ctx context.Context) ([]model.Category, error)
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// FindByIDWithSeller は商品を出品者情報付きで取得する。見つからない場合はnilを返す。
	FindByIDWithSeller(ctx context.Context, id string) (*ProductWithSeller, error)

	// ListAll は全商品を出品者情報付きで新着順に返す。
	ListAll(ctx context.Context) ([]ProductWithSeller, error)

	// SearchActive は出品中の商品をタイトル・説明文の部分一致で検索する。
	SearchActive(ctx context.Context, keyword string) ([]ProductWithSeller, error)

	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// UpdateOwned は出品者本人の商品のみを更新する。
	// WHERE句にowner_idを含め、影響行数0の場合はfalseを返す。
	UpdateOwned(ctx context.Context, product *model.Product) (bool, error)

	// SoftDeleteOwned は出品者本人の商品をdeleted状態に遷移させる。
	// 影響行数0の場合はfalseを返す。
	SoftDeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
}

// OrderRepository は注文データの永続化インターフェース。
type OrderRepository interface {
	// CreateForActiveProduct は購入トランザクションを実行する。
	// 単一のDBトランザクション内で
	//   1. UPDATE products SET status='sold'
	//      WHERE product_id=$1 AND status='active'
	//   2. 影響行数が1の場合のみ注文レコードをINSERT
	// を行い、両方の効果をコミットする。影響行数が0の場合は
	// ErrProductUnavailableを返してロールバックする。
	// INSERTが失敗した場合もステータス変更ごとロールバックされ、
	// 商品はactiveのまま観測される。
	CreateForActiveProduct(ctx context.Context, order *model.Order) error

	// ListByBuyer は購入者の注文一覧を商品情報付きで新着順に返す。
	ListByBuyer(ctx context.Context, buyerID string) ([]OrderWithProduct, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// ListByProduct は商品のコメント一覧を投稿者情報付きで新着順に返す。
	ListByProduct(ctx context.Context, productID string) ([]CommentWithAuthor, error)

	// Delete は指定IDのコメントを削除する。
	Delete(ctx context.Context, id string) error
}

// FavoriteRepository は収藏夹データの永続化インターフェース。
type FavoriteRepository interface {
	// ListFolders はユーザーの収藏夹一覧を新着順に返す。
	ListFolders(ctx context.Context, userID string) ([]model.FavoriteFolder, error)

	// FindFolder はユーザー本人の収藏夹を取得する。
	// 他人の収藏夹・存在しない収藏夹はnilを返す。
	FindFolder(ctx context.Context, folderID, userID string) (*model.FavoriteFolder, error)

	// CreateFolder は収藏夹を作成する。
	CreateFolder(ctx context.Context, folder *model.FavoriteFolder) error

	// RenameFolder はユーザー本人の収藏夹の名前を変更する。
	// 影響行数0の場合はfalseを返す。
	RenameFolder(ctx context.Context, folderID, userID, name string) (bool, error)

	// DeleteFolder は収藏夹を削除する。収藏項目はCASCADE削除される。
	DeleteFolder(ctx context.Context, folderID string) error

	// HasItem は収藏夹に商品が登録済みかを返す。
	HasItem(ctx context.Context, folderID, productID string) (bool, error)

	// AddItem は収藏項目を登録する。
	AddItem(ctx context.Context, item *model.FavoriteItem) error

	// ListItems は収藏夹の商品一覧を商品情報付きで新着順に返す。
	ListItems(ctx context.Context, folderID string) ([]FavoriteItemWithProduct, error)

	// RemoveItem は収藏項目を削除する。影響行数0の場合はfalseを返す。
	RemoveItem(ctx context.Context, folderID, productID string) (bool, error)
}

// MessageRepository はダイレクトメッセージの永続化インターフェース。
type MessageRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error

	// ListByUser は送信・受信の両方向のメッセージを送信者情報付きで新着順に返す。
	ListByUser(ctx context.Context, userName string) ([]MessageWithSender, error)
}

// UploadRepository はアップロード画像の永続化インターフェース。
type UploadRepository interface {
	// Create はアップロード画像を保存する。
	Create(ctx context.Context, upload *model.Upload) error

	// FindByID は指定IDのアップロード画像を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Upload, error)
}

// ProductWithSeller は商品と出品者の表示用情報を結合した構造体。
type ProductWithSeller struct {
	model.Product
	SellerName   string
	SellerAvatar string
}

// OrderWithProduct は注文と商品の表示用情報を結合した構造体。
type OrderWithProduct struct {
	model.Order
	ProductTitle string
	ImageURL     string
	Price        float64
}

// CommentWithAuthor はコメントと投稿者の表示用情報を結合した構造体。
type CommentWithAuthor struct {
	model.Comment
	Nickname  string
	AvatarURL string
}

// FavoriteItemWithProduct は収藏項目と商品の表示用情報を結合した構造体。
type FavoriteItemWithProduct struct {
	ProductID    string
	ProductTitle string
	Price        float64
	ImageURL     string
	CreatedAt    time.Time
}

// MessageWithSender はメッセージと送信者の表示用情報を結合した構造体。
type MessageWithSender struct {
	model.Message
	SenderNickname string
	SenderAvatar   string
}
