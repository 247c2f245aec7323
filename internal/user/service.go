// Package user はユーザープロフィールのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
	"github.com/hitoshi/fleamart/internal/security"
)

// allowedAvatarTypes はリモートアバターとして受理するContent-Type。
var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// ProfileUpdate はプロフィール更新の入力を表す。
type ProfileUpdate struct {
	Nickname  string
	AvatarURL string
	Phone     string
	Intro     string
}

// Service はプロフィールの取得と更新を提供する。
//
// リモートURLのアバターはそのまま保存せず、SSRF防止付きクライアントで
// 取得してアップロードストアに取り込み、ローカルパスに書き換える。
// これにより保存後の参照は常にこのサービス自身が配信する画像になる。
type Service struct {
	userRepo      repository.UserRepository
	uploadRepo    repository.UploadRepository
	sanitizer     security.ContentSanitizerService
	guard         security.ImageURLGuardService
	avatarClient  *http.Client
	maxAvatarSize int64
}

// NewService はServiceを生成する。
// avatarClientにはguard.NewSafeClientで生成したクライアントを渡す。
func NewService(
	userRepo repository.UserRepository,
	uploadRepo repository.UploadRepository,
	sanitizer security.ContentSanitizerService,
	guard security.ImageURLGuardService,
	avatarClient *http.Client,
	maxAvatarSize int64,
) *Service {
	return &Service{
		userRepo:      userRepo,
		uploadRepo:    uploadRepo,
		sanitizer:     sanitizer,
		guard:         guard,
		avatarClient:  avatarClient,
		maxAvatarSize: maxAvatarSize,
	}
}

// GetProfile はユーザーのプロフィールを返す。
// パスワードハッシュは呼び出し元に渡る前に消去される。
func (s *Service) GetProfile(ctx context.Context, userName string) (*model.User, error) {
	user, err := s.userRepo.FindByUserName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile はプロフィールを更新する。
// テキスト項目はサニタイズされ、アバターURLは次の規則で処理される:
//   - 空文字列: アバター未設定として保存
//   - "/"始まりのローカルパス（アップロード済み画像）: そのまま保存
//   - リモートURL: 検証の上で取得し、ローカルパスに書き換えて保存
func (s *Service) UpdateProfile(ctx context.Context, userName string, update ProfileUpdate) error {
	nickname := s.sanitizer.SanitizePlainText(update.Nickname)
	phone := s.sanitizer.SanitizePlainText(update.Phone)
	intro := s.sanitizer.SanitizeRichText(update.Intro)

	avatarURL := strings.TrimSpace(update.AvatarURL)
	if avatarURL != "" && !strings.HasPrefix(avatarURL, "/") {
		localPath, err := s.importRemoteAvatar(ctx, userName, avatarURL)
		if err != nil {
			return err
		}
		avatarURL = localPath
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userName, nickname, avatarURL, phone, intro)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if !updated {
		return model.NewUserNotFoundError()
	}
	return nil
}

// importRemoteAvatar はリモートURLのアバター画像を取得してストアに保存し、
// 配信用のローカルパスを返す。
// URL検証とクライアント側のDialer検証の二段でSSRFを防止する。
func (s *Service) importRemoteAvatar(ctx context.Context, userName, rawURL string) (string, error) {
	if err := s.guard.ValidateURL(rawURL); err != nil {
		slog.Warn("avatar URL rejected",
			slog.String("user_name", userName),
			slog.String("reason", err.Error()),
		)
		return "", model.NewBlockedURLError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", model.NewBlockedURLError()
	}

	resp, err := s.avatarClient.Do(req)
	if err != nil {
		// safeurlのDialer検証で弾かれた場合もここに到達する
		slog.Warn("avatar fetch failed",
			slog.String("user_name", userName),
			slog.String("reason", err.Error()),
		)
		return "", model.NewBlockedURLError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.NewValidationError("头像地址无法访问")
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !allowedAvatarTypes[contentType] {
		return "", model.NewUnsupportedFileError()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxAvatarSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar body: %w", err)
	}
	if int64(len(data)) > s.maxAvatarSize {
		return "", model.NewValidationError("头像图片过大")
	}

	upload := &model.Upload{
		ID:          uuid.New().String(),
		UserID:      userName,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	slog.Info("remote avatar imported",
		slog.String("user_name", userName),
		slog.String("upload_id", upload.ID),
		slog.Int("size", len(data)),
	)
	return "/api/uploads/" + upload.ID, nil
}
