package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (comment_id, user_id, product_id, rating, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.UserID, comment.ProductID, comment.Rating,
		comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	comment := &model.Comment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT comment_id, user_id, product_id, rating, content, created_at
		 FROM comments WHERE comment_id = $1`,
		id,
	).Scan(&comment.ID, &comment.UserID, &comment.ProductID,
		&comment.Rating, &comment.Content, &comment.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}

	return comment, nil
}

// ListByProduct は商品のコメント一覧を投稿者情報付きで新着順に返す。
func (r *PostgresCommentRepo) ListByProduct(ctx context.Context, productID string) ([]CommentWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.comment_id, c.user_id, c.product_id, c.rating, c.content, c.created_at,
		        u.nickname, u.avatar_url
		 FROM comments c
		 JOIN users u ON c.user_id = u.user_name
		 WHERE c.product_id = $1
		 ORDER BY c.created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var results []CommentWithAuthor
	for rows.Next() {
		c := CommentWithAuthor{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Rating,
			&c.Content, &c.CreatedAt, &c.Nickname, &c.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}

	return results, nil
}

// Delete は指定IDのコメントを削除する。
func (r *PostgresCommentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE comment_id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
