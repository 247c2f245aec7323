package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
)

// SessionMetricsRecorder はトークンの発行・失効を記録する。
type SessionMetricsRecorder interface {
	RecordSessionIssued()
	RecordSessionRevoked()
}

// Service はユーザー登録・ログイン・ログアウトのビジネスロジックを提供する。
// トークンのライフサイクル自体はAuthorityに委譲する。
type Service struct {
	userRepo  repository.UserRepository
	authority *Authority
	metrics   SessionMetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(userRepo repository.UserRepository, authority *Authority, metrics SessionMetricsRecorder) *Service {
	return &Service{
		userRepo:  userRepo,
		authority: authority,
		metrics:   metrics,
	}
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, userName, password string) error {
	if userName == "" || password == "" {
		return model.NewValidationError("用户名和密码不能为空")
	}

	existing, err := s.userRepo.FindByUserName(ctx, userName)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return model.NewUserExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		UserName:     userName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_name", userName))
	return nil
}

// Login は認証情報を検証し、成功時にトークンを発行する。
func (s *Service) Login(ctx context.Context, userName, password string) (string, error) {
	if userName == "" || password == "" {
		return "", model.NewValidationError("用户名和密码不能为空")
	}

	user, err := s.userRepo.FindByUserName(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewUserNotFoundError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.authority.Issue(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSessionIssued()
	}
	slog.Info("user logged in", slog.String("user_name", userName))
	return token, nil
}

// Logout はトークンを失効させる。
// トークンが既に無効な場合はfalseを返す（エラーにはしない）。
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	existed, err := s.authority.Revoke(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	if existed {
		if s.metrics != nil {
			s.metrics.RecordSessionRevoked()
		}
		slog.Info("user logged out")
	}
	return existed, nil
}
