package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresUploadRepo はPostgreSQLを使用したアップロード画像リポジトリ。
// 画像バイナリをBYTEA列にそのまま格納する。
type PostgresUploadRepo struct {
	db *sql.DB
}

// NewPostgresUploadRepo はPostgresUploadRepoを生成する。
func NewPostgresUploadRepo(db *sql.DB) *PostgresUploadRepo {
	return &PostgresUploadRepo{db: db}
}

// Create はアップロード画像を保存する。
func (r *PostgresUploadRepo) Create(ctx context.Context, upload *model.Upload) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uploads (upload_id, user_id, content_type, data, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		upload.ID, upload.UserID, upload.ContentType, upload.Data, upload.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// FindByID は指定IDのアップロード画像を取得する。見つからない場合はnilを返す。
func (r *PostgresUploadRepo) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	upload := &model.Upload{}
	err := r.db.QueryRowContext(ctx,
		`SELECT upload_id, user_id, content_type, data, created_at
		 FROM uploads WHERE upload_id = $1`,
		id,
	).Scan(&upload.ID, &upload.UserID, &upload.ContentType,
		&upload.Data, &upload.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find upload by ID: %w", err)
	}

	return upload, nil
}

// compile-time interface check
var _ UploadRepository = (*PostgresUploadRepo)(nil)
