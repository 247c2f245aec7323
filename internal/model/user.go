// Package model はドメインモデルを定義する。
package model

import "time"

// User はマーケットプレイスの利用ユーザーを表す。
// UserNameがログインIDであり、他テーブルからの参照キーとなる。
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Nickname     string
	AvatarURL    string
	Phone        string
	Intro        string
	CreatedAt    time.Time
}

// Session はベアラートークンに紐づくログインセッションを表す。
// 永続化されず、プロセスメモリ上にのみ存在する。
// プロセス再起動で全セッションが無効になる（再ログインを強制する仕様）。
type Session struct {
	Token     string
	UserName  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
