package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hitoshi/fleamart/internal/model"
)

// tokenEntropyBytes はトークンの乱数長。hexエンコード後は64文字になる。
const tokenEntropyBytes = 32

// Authority はベアラートークンのライフサイクル（発行・検証・失効）を管理する。
// トークンは不透明なランダム文字列であり、ユーザー識別子と有効期限に
// 対応づけてSessionStoreに記録される。
type Authority struct {
	store  SessionStore
	maxAge time.Duration

	// now はテストで時計を差し替えるためのフック。
	now func() time.Time
}

// NewAuthority はAuthorityを生成する。
// maxAgeは発行するトークンの有効期間を指定する。
func NewAuthority(store SessionStore, maxAge time.Duration) *Authority {
	return &Authority{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue は指定ユーザーに新しいトークンを発行する。
func (a *Authority) Issue(ctx context.Context, userName string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := a.now()
	session := &model.Session{
		Token:     token,
		UserName:  userName,
		ExpiresAt: now.Add(a.maxAge),
		CreatedAt: now,
	}

	if err := a.store.Put(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return token, nil
}

// Validate はトークンを検証し、有効なら紐づくユーザー名を返す。
// 無効（未登録・期限切れ）の場合は空文字列を返す。
// 期限切れエントリは検出時に削除する（遅延削除）。呼び出し側は
// 期限切れと未登録を区別せず、単に未認証として扱う。
func (a *Authority) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	session, err := a.store.Get(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return "", nil
	}

	if !a.now().Before(session.ExpiresAt) {
		// 遅延削除。削除の失敗は無効判定に影響しない。
		if _, err := a.store.Delete(ctx, token); err != nil {
			return "", fmt.Errorf("failed to evict expired session: %w", err)
		}
		return "", nil
	}

	return session.UserName, nil
}

// Revoke はトークンを無条件に失効させ、エントリが存在したかを返す。
// 存在しないトークンの失効は「既に無効」を意味するno-opであり、エラーではない。
func (a *Authority) Revoke(ctx context.Context, token string) (bool, error) {
	existed, err := a.store.Delete(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return existed, nil
}

// generateToken は暗号的に安全な不透明トークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
