// Package model はドメインモデルを定義する。
package model

import "time"

// Comment は商品に対するコメント（評価付き）を表す。
type Comment struct {
	ID        string
	UserID    string
	ProductID string
	Rating    int
	Content   string
	CreatedAt time.Time
}

// FavoriteFolder はユーザーの収藏夹（お気に入りフォルダ）を表す。
type FavoriteFolder struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// FavoriteItem は収藏夹に登録された商品を表す。
type FavoriteItem struct {
	FolderID  string
	ProductID string
	CreatedAt time.Time
}

// Message はユーザー間のダイレクトメッセージを表す。
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
}
