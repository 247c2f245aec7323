// Package upload は画像ファイルの保存と配信のドメインロジックを提供する。
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
)

// allowedExtensions は受理するファイル拡張子とContent-Typeの対応。
// 配信時のContent-Typeはクライアント申告値ではなくこの表から決める。
var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Service は画像アップロードの操作を提供する。
type Service struct {
	uploadRepo repository.UploadRepository
	maxSize    int64
}

// NewService はServiceを生成する。
func NewService(uploadRepo repository.UploadRepository, maxSize int64) *Service {
	return &Service{
		uploadRepo: uploadRepo,
		maxSize:    maxSize,
	}
}

// Store はアップロードされた画像を検証して保存し、配信用のパスを返す。
// 拡張子がpng, jpg, jpeg, gif以外のファイルは拒否される。
func (s *Service) Store(ctx context.Context, userID, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", model.NewUnsupportedFileError()
	}
	if len(data) == 0 {
		return "", model.NewValidationError("文件内容为空")
	}
	if int64(len(data)) > s.maxSize {
		return "", model.NewValidationError("文件过大")
	}

	upload := &model.Upload{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	slog.Info("file uploaded",
		slog.String("upload_id", upload.ID),
		slog.String("user_id", userID),
		slog.Int("size", len(data)),
	)
	return "/api/uploads/" + upload.ID, nil
}

// Get は指定IDの画像を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Upload, error) {
	upload, err := s.uploadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load upload: %w", err)
	}
	if upload == nil {
		return nil, model.NewUploadNotFoundError()
	}
	return upload, nil
}
