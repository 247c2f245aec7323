package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// CreateForActiveProduct は購入トランザクションを実行する。
//
// 条件付きUPDATEのWHERE句（product_id AND status='active'）が
// 単一勝者の保証そのものであり、行ロックを明示的に取らずに
// 並行購入の競争を解決する。影響行数0は「他の購入者が先に
// 勝った」ことを意味し、ErrProductUnavailableで通知する。
// ステータス遷移と注文INSERTは同一トランザクションでコミットされ、
// INSERT失敗時はステータス遷移ごとロールバックされる。
func (r *PostgresOrderRepo) CreateForActiveProduct(ctx context.Context, order *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. 条件付きステータス遷移: active → sold
	result, err := tx.ExecContext(ctx,
		`UPDATE products SET status = 'sold', updated_at = now()
		 WHERE product_id = $1 AND status = 'active'`,
		order.ProductID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark product sold: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// 並行する購入者に先を越された。注文は作成しない。
		return ErrProductUnavailable
	}

	// 2. 注文レコードの作成（影響行数が1の場合のみ）
	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (order_id, order_status, buyer_id, seller_id, product_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.Status, order.BuyerID, order.SellerID,
		order.ProductID, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	return nil
}

// ListByBuyer は購入者の注文一覧を商品情報付きで新着順に返す。
func (r *PostgresOrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]OrderWithProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.order_id, o.order_status, o.buyer_id, o.seller_id, o.product_id, o.created_at,
		        p.product_title, p.img_url, p.price
		 FROM orders o
		 JOIN products p ON o.product_id = p.product_id
		 WHERE o.buyer_id = $1
		 ORDER BY o.created_at DESC`,
		buyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var results []OrderWithProduct
	for rows.Next() {
		o := OrderWithProduct{}
		if err := rows.Scan(&o.ID, &o.Status, &o.BuyerID, &o.SellerID,
			&o.ProductID, &o.CreatedAt, &o.ProductTitle, &o.ImageURL,
			&o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
