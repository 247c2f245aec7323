package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, message *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, sender_id, receiver_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.SenderID, message.ReceiverID,
		message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListByUser は送信・受信の両方向のメッセージを送信者情報付きで新着順に返す。
func (r *PostgresMessageRepo) ListByUser(ctx context.Context, userName string) ([]MessageWithSender, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.message_id, m.sender_id, m.receiver_id, m.content, m.created_at,
		        u.nickname, u.avatar_url
		 FROM messages m
		 JOIN users u ON m.sender_id = u.user_name
		 WHERE m.receiver_id = $1 OR m.sender_id = $1
		 ORDER BY m.created_at DESC`,
		userName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var results []MessageWithSender
	for rows.Next() {
		m := MessageWithSender{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content,
			&m.CreatedAt, &m.SenderNickname, &m.SenderAvatar); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
