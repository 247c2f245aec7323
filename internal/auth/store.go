// Package auth はベアラートークンの発行・検証とログイン処理を提供する。
package auth

import (
	"context"
	"sync"

	"github.com/hitoshi/fleamart/internal/model"
)

// SessionStore はセッションデータの保管インターフェース。
// 単一インスタンス構成ではプロセスメモリ上のMemoryStoreを使用する。
// 複数インスタンス構成では外部の共有KVストア実装に差し替える前提で、
// 能力として注入する設計とし、グローバル変数にはしない。
type SessionStore interface {
	// Put はセッションを保存する。同一トークンの既存エントリは上書きされる。
	Put(ctx context.Context, session *model.Session) error

	// Get は指定トークンのセッションを取得する。見つからない場合はnilを返す。
	// 有効期限の判定は呼び出し側（Authority）の責務とする。
	Get(ctx context.Context, token string) (*model.Session, error)

	// Delete は指定トークンのセッションを削除し、エントリが存在したかを返す。
	// 存在しないトークンの削除はエラーではない（冪等）。
	Delete(ctx context.Context, token string) (bool, error)
}

// MemoryStore はプロセスメモリ上のSessionStore実装。
// 認証済みリクエストごとに読まれる読み取り多数・書き込み少数のパスのため、
// sync.RWMutexで保護する。プロセス再起動で全エントリが消える。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
	}
}

// Put はセッションを保存する。
func (s *MemoryStore) Put(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

// Get は指定トークンのセッションを取得する。見つからない場合はnilを返す。
func (s *MemoryStore) Get(_ context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// Delete は指定トークンのセッションを削除し、エントリが存在したかを返す。
func (s *MemoryStore) Delete(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok, nil
}

// Len は保持中のセッション数を返す。テストと運用時の観測用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// compile-time interface check
var _ SessionStore = (*MemoryStore)(nil)
