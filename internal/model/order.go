// Package model はドメインモデルを定義する。
package model

import "time"

// OrderStatusCompleted は注文の唯一のステータス。
// 注文は売買成立の証跡として作成時に完結し、以後変更されない。
const OrderStatusCompleted = "completed"

// Order は成立した売買の記録を表す。
// INSERT後に更新されることはないログエントリであり、可変の集約ではない。
type Order struct {
	ID        string
	Status    string
	BuyerID   string
	SellerID  string
	ProductID string
	CreatedAt time.Time
}
