// Package interaction はコメント・収藏夹・ダイレクトメッセージの
// ドメインロジックを提供する。
package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fleamart/internal/model"
	"github.com/hitoshi/fleamart/internal/repository"
	"github.com/hitoshi/fleamart/internal/security"
)

// Service はユーザー間インタラクションの操作を提供する。
type Service struct {
	commentRepo  repository.CommentRepository
	favoriteRepo repository.FavoriteRepository
	messageRepo  repository.MessageRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	favoriteRepo repository.FavoriteRepository,
	messageRepo repository.MessageRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		commentRepo:  commentRepo,
		favoriteRepo: favoriteRepo,
		messageRepo:  messageRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		sanitizer:    sanitizer,
	}
}

// AddComment は商品にコメントを投稿する。作成されたコメントIDを返す。
// 評価は1〜5の範囲に制限される。
func (s *Service) AddComment(ctx context.Context, userID, productID string, rating int, content string) (string, error) {
	content = s.sanitizer.SanitizePlainText(content)
	if content == "" {
		return "", model.NewValidationError("评论内容不能为空")
	}
	if rating < 1 || rating > 5 {
		return "", model.NewValidationError("评分必须在1到5之间")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return "", model.NewProductNotFoundError()
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return "", fmt.Errorf("failed to create comment: %w", err)
	}
	return comment.ID, nil
}

// ListComments は商品のコメント一覧を投稿者情報付きで返す。
func (s *Service) ListComments(ctx context.Context, productID string) ([]repository.CommentWithAuthor, error) {
	comments, err := s.commentRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment は投稿者本人のコメントを削除する。
func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return model.NewCommentNotFoundError()
	}
	if comment.UserID != userID {
		return model.NewPermissionDeniedError("只能删除自己的评论")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// ListFolders はユーザーの収藏夹一覧を返す。
func (s *Service) ListFolders(ctx context.Context, userID string) ([]model.FavoriteFolder, error) {
	folders, err := s.favoriteRepo.ListFolders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// CreateFolder は収藏夹を作成する。作成された収藏夹IDを返す。
func (s *Service) CreateFolder(ctx context.Context, userID, name string) (string, error) {
	name = s.sanitizer.SanitizePlainText(name)
	if name == "" {
		return "", model.NewValidationError("收藏夹名称不能为空")
	}

	folder := &model.FavoriteFolder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.favoriteRepo.CreateFolder(ctx, folder); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return folder.ID, nil
}

// RenameFolder はユーザー本人の収藏夹の名前を変更する。
func (s *Service) RenameFolder(ctx context.Context, folderID, userID, name string) error {
	name = s.sanitizer.SanitizePlainText(name)
	if name == "" {
		return model.NewValidationError("收藏夹名称不能为空")
	}

	renamed, err := s.favoriteRepo.RenameFolder(ctx, folderID, userID, name)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	if !renamed {
		return model.NewFolderNotFoundError()
	}
	return nil
}

// DeleteFolder はユーザー本人の収藏夹を収藏項目ごと削除する。
func (s *Service) DeleteFolder(ctx context.Context, folderID, userID string) error {
	folder, err := s.favoriteRepo.FindFolder(ctx, folderID, userID)
	if err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return model.NewFolderNotFoundError()
	}

	if err := s.favoriteRepo.DeleteFolder(ctx, folderID); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// AddFavorite は収藏夹に商品を登録する。
// 登録済みの商品は重複登録せず、成功として扱う（冪等）。
func (s *Service) AddFavorite(ctx context.Context, folderID, userID, productID string) error {
	folder, err := s.favoriteRepo.FindFolder(ctx, folderID, userID)
	if err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return model.NewFolderNotFoundError()
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return model.NewProductNotFoundError()
	}

	exists, err := s.favoriteRepo.HasItem(ctx, folderID, productID)
	if err != nil {
		return fmt.Errorf("failed to check favorite: %w", err)
	}
	if exists {
		return nil
	}

	item := &model.FavoriteItem{
		FolderID:  folderID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if err := s.favoriteRepo.AddItem(ctx, item); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// ListFavorites はユーザー本人の収藏夹の商品一覧を返す。
func (s *Service) ListFavorites(ctx context.Context, folderID, userID string) ([]repository.FavoriteItemWithProduct, error) {
	folder, err := s.favoriteRepo.FindFolder(ctx, folderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return nil, model.NewFolderNotFoundError()
	}

	items, err := s.favoriteRepo.ListItems(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return items, nil
}

// RemoveFavorite は収藏夹から商品を削除する。
func (s *Service) RemoveFavorite(ctx context.Context, folderID, userID, productID string) error {
	folder, err := s.favoriteRepo.FindFolder(ctx, folderID, userID)
	if err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return model.NewFolderNotFoundError()
	}

	removed, err := s.favoriteRepo.RemoveItem(ctx, folderID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		return model.NewFavoriteNotFoundError()
	}
	return nil
}

// SendMessage はユーザーにダイレクトメッセージを送信する。
// 作成されたメッセージIDを返す。
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID, content string) (string, error) {
	content = s.sanitizer.SanitizePlainText(content)
	if content == "" {
		return "", model.NewValidationError("消息内容不能为空")
	}

	receiver, err := s.userRepo.FindByUserName(ctx, receiverID)
	if err != nil {
		return "", fmt.Errorf("failed to load receiver: %w", err)
	}
	if receiver == nil {
		return "", model.NewUserNotFoundError()
	}

	message := &model.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	slog.Info("message sent",
		slog.String("message_id", message.ID),
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiverID),
	)
	return message.ID, nil
}

// ListMessages はユーザーの送受信メッセージ一覧を返す。
func (s *Service) ListMessages(ctx context.Context, userID string) ([]repository.MessageWithSender, error) {
	messages, err := s.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
