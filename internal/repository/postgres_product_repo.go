package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// productColumns は商品テーブルのSELECT列。出品者JOINの有無に関わらず共通。
const productColumns = `p.product_id, p.product_title, p.price, p.img_url, p.description,
	p.category_id, p.owner_id, p.status, p.created_at, p.updated_at`

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	product := &model.Product{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.product_id = $1`,
		id,
	).Scan(&product.ID, &product.Title, &product.Price, &product.ImageURL,
		&product.Description, &product.CategoryID, &product.OwnerID,
		&product.Status, &product.CreatedAt, &product.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDWithSeller は商品を出品者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByIDWithSeller(ctx context.Context, id string) (*ProductWithSeller, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+`, u.nickname, u.avatar_url
		 FROM products p
		 LEFT JOIN users u ON p.owner_id = u.user_name
		 WHERE p.product_id = $1`,
		id,
	)

	p := &ProductWithSeller{}
	var sellerName, sellerAvatar sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.ImageURL, &p.Description,
		&p.CategoryID, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&sellerName, &sellerAvatar)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product with seller: %w", err)
	}

	p.SellerName = sellerName.String
	p.SellerAvatar = sellerAvatar.String
	return p, nil
}

// ListAll は全商品を出品者情報付きで新着順に返す。
func (r *PostgresProductRepo) ListAll(ctx context.Context) ([]ProductWithSeller, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`, u.nickname, u.avatar_url
		 FROM products p
		 LEFT JOIN users u ON p.owner_id = u.user_name
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProductsWithSeller(rows)
}

// SearchActive は出品中の商品をタイトル・説明文の部分一致で検索する。
func (r *PostgresProductRepo) SearchActive(ctx context.Context, keyword string) ([]ProductWithSeller, error) {
	pattern := "%" + keyword + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`, u.nickname, u.avatar_url
		 FROM products p
		 LEFT JOIN users u ON p.owner_id = u.user_name
		 WHERE p.status = 'active'
		   AND (p.product_title LIKE $1 OR p.description LIKE $1)
		 ORDER BY p.created_at DESC`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return scanProductsWithSeller(rows)
}

// Create は商品を作成する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products
		 (product_id, product_title, price, img_url, description, category_id, owner_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Title, product.Price, product.ImageURL,
		product.Description, product.CategoryID, product.OwnerID,
		product.Status, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateOwned は出品者本人の商品のみを更新する。
// WHERE句にowner_idを含めることで所有チェックとUPDATEを1文で行う。
func (r *PostgresProductRepo) UpdateOwned(ctx context.Context, product *model.Product) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET product_title = $1, price = $2, img_url = $3, description = $4,
		     category_id = $5, updated_at = now()
		 WHERE product_id = $6 AND owner_id = $7`,
		product.Title, product.Price, product.ImageURL, product.Description,
		product.CategoryID, product.ID, product.OwnerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// SoftDeleteOwned は出品者本人の商品をdeleted状態に遷移させる。
func (r *PostgresProductRepo) SoftDeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET status = 'deleted', updated_at = now()
		 WHERE product_id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanProductsWithSeller は商品＋出品者JOINの行をスキャンする。
// LEFT JOINのため出品者列はNULLになりうる。
func scanProductsWithSeller(rows *sql.Rows) ([]ProductWithSeller, error) {
	var results []ProductWithSeller
	for rows.Next() {
		p := ProductWithSeller{}
		var sellerName, sellerAvatar sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.ImageURL,
			&p.Description, &p.CategoryID, &p.OwnerID, &p.Status,
			&p.CreatedAt, &p.UpdatedAt, &sellerName, &sellerAvatar); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		p.SellerName = sellerName.String
		p.SellerAvatar = sellerAvatar.String
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
