package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fleamart/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用した収藏夹リポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// ListFolders はユーザーの収藏夹一覧を新着順に返す。
func (r *PostgresFavoriteRepo) ListFolders(ctx context.Context, userID string) ([]model.FavoriteFolder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT folder_id, user_id, name, created_at
		 FROM favorite_folders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite folders: %w", err)
	}
	defer rows.Close()

	var results []model.FavoriteFolder
	for rows.Next() {
		f := model.FavoriteFolder{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folder rows: %w", err)
	}

	return results, nil
}

// FindFolder はユーザー本人の収藏夹を取得する。
// 他人の収藏夹・存在しない収藏夹はnilを返す。
func (r *PostgresFavoriteRepo) FindFolder(ctx context.Context, folderID, userID string) (*model.FavoriteFolder, error) {
	folder := &model.FavoriteFolder{}
	err := r.db.QueryRowContext(ctx,
		`SELECT folder_id, user_id, name, created_at
		 FROM favorite_folders
		 WHERE folder_id = $1 AND user_id = $2`,
		folderID, userID,
	).Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find favorite folder: %w", err)
	}

	return folder, nil
}

// CreateFolder は収藏夹を作成する。
func (r *PostgresFavoriteRepo) CreateFolder(ctx context.Context, folder *model.FavoriteFolder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorite_folders (folder_id, user_id, name, created_at)
		 VALUES ($1, $2, $3, $4)`,
		folder.ID, folder.UserID, folder.Name, folder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite folder: %w", err)
	}
	return nil
}

// RenameFolder はユーザー本人の収藏夹の名前を変更する。
func (r *PostgresFavoriteRepo) RenameFolder(ctx context.Context, folderID, userID, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE favorite_folders SET name = $1
		 WHERE folder_id = $2 AND user_id = $3`,
		name, folderID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to rename favorite folder: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteFolder は収藏夹を削除する。収藏項目はCASCADE削除される。
func (r *PostgresFavoriteRepo) DeleteFolder(ctx context.Context, folderID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_folders WHERE folder_id = $1`,
		folderID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete favorite folder: %w", err)
	}
	return nil
}

// HasItem は収藏夹に商品が登録済みかを返す。
func (r *PostgresFavoriteRepo) HasItem(ctx context.Context, folderID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM favorite_items WHERE folder_id = $1 AND product_id = $2
		)`,
		folderID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite item: %w", err)
	}
	return exists, nil
}

// AddItem は収藏項目を登録する。
func (r *PostgresFavoriteRepo) AddItem(ctx context.Context, item *model.FavoriteItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorite_items (folder_id, product_id, created_at)
		 VALUES ($1, $2, $3)`,
		item.FolderID, item.ProductID, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite item: %w", err)
	}
	return nil
}

// ListItems は収藏夹の商品一覧を商品情報付きで新着順に返す。
func (r *PostgresFavoriteRepo) ListItems(ctx context.Context, folderID string) ([]FavoriteItemWithProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fi.product_id, p.product_title, p.price, p.img_url, fi.created_at
		 FROM favorite_items fi
		 JOIN products p ON fi.product_id = p.product_id
		 WHERE fi.folder_id = $1
		 ORDER BY fi.created_at DESC`,
		folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite items: %w", err)
	}
	defer rows.Close()

	var results []FavoriteItemWithProduct
	for rows.Next() {
		item := FavoriteItemWithProduct{}
		if err := rows.Scan(&item.ProductID, &item.ProductTitle, &item.Price,
			&item.ImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite item row: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorite item rows: %w", err)
	}

	return results, nil
}

// RemoveItem は収藏項目を削除する。影響行数0の場合はfalseを返す。
func (r *PostgresFavoriteRepo) RemoveItem(ctx context.Context, folderID, productID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_items WHERE folder_id = $1 AND product_id = $2`,
		folderID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
