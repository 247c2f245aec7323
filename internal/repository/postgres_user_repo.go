package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByUserName は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, password_hash, nickname, avatar_url, phone, intro, created_at
		 FROM users WHERE user_name = $1`,
		userName,
	).Scan(&user.ID, &user.UserName, &user.PasswordHash, &user.Nickname,
		&user.AvatarURL, &user.Phone, &user.Intro, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by name: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (user_name, password_hash, nickname, avatar_url, phone, intro, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		user.UserName, user.PasswordHash, user.Nickname, user.AvatarURL,
		user.Phone, user.Intro, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile はプロフィール項目を一括更新する。
// 対象ユーザーが存在しない場合はfalseを返す。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userName, nickname, avatarURL, phone, intro string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET nickname = $1, avatar_url = $2, phone = $3, intro = $4
		 WHERE user_name = $5`,
		nickname, avatarURL, phone, intro, userName,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
