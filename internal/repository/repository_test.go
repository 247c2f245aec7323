package repository

import (
	"testing"
)

// 各PostgresリポジトリがインターフェースをNewコンストラクタ込みで満たすことを検証

func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	if NewPostgresUserRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresCategoryRepo_ImplementsInterface(t *testing.T) {
	var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
	if NewPostgresCategoryRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresProductRepo_ImplementsInterface(t *testing.T) {
	var _ ProductRepository = (*PostgresProductRepo)(nil)
	if NewPostgresProductRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresOrderRepo_ImplementsInterface(t *testing.T) {
	var _ OrderRepository = (*PostgresOrderRepo)(nil)
	if NewPostgresOrderRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresCommentRepo_ImplementsInterface(t *testing.T) {
	var _ CommentRepository = (*PostgresCommentRepo)(nil)
	if NewPostgresCommentRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresFavoriteRepo_ImplementsInterface(t *testing.T) {
	var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
	if NewPostgresFavoriteRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresMessageRepo_ImplementsInterface(t *testing.T) {
	var _ MessageRepository = (*PostgresMessageRepo)(nil)
	if NewPostgresMessageRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresUploadRepo_ImplementsInterface(t *testing.T) {
	var _ UploadRepository = (*PostgresUploadRepo)(nil)
	if NewPostgresUploadRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}
