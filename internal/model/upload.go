// Package model はドメインモデルを定義する。
package model

import "time"

// Upload はアップロードされた画像ファイルを表す。
// 画像バイナリはDBに格納し、/api/uploads/{id} で配信する。
type Upload struct {
	ID          string
	UserID      string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
