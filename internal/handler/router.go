package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fleamart/internal/metrics"
	"github.com/hitoshi/fleamart/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler

	// 認証
	AuthService AuthServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// 商品
	ProductService ProductServiceInterface

	// 注文
	OrderService OrderServiceInterface

	// コメント・収藏・メッセージ
	InteractionService InteractionServiceInterface

	// アップロード
	UploadService UploadServiceInterface
	UploadMaxSize int64
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認証が必要なルートではさらに Auth → RateLimit(General) が適用され、
// 購入エンドポイントには購入専用のレート制限が追加される。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	productHandler := NewProductHandler(deps.ProductService)
	orderHandler := NewOrderHandler(deps.OrderService)
	interactionHandler := NewInteractionHandler(deps.InteractionService)
	uploadHandler := NewUploadHandler(deps.UploadService, deps.UploadMaxSize)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	// 商品の閲覧は未ログインでも可能
	r.Get("/api/get_categories", productHandler.GetCategories)
	r.Get("/api/get_products", productHandler.GetProducts)
	r.Get("/api/search_products", productHandler.SearchProducts)
	r.Get("/api/product/{id}", productHandler.GetProduct)
	r.Get("/api/get_comments/{productID}", interactionHandler.GetComments)

	// アップロード済み画像の配信
	r.Get("/api/uploads/{id}", uploadHandler.Serve)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/logout", authHandler.Logout)

		// ユーザー
		r.Get("/api/user", userHandler.GetUser)
		r.Post("/api/update_user", userHandler.UpdateUser)

		// 商品管理
		r.Post("/api/create_product", productHandler.CreateProduct)
		r.Post("/api/modify_product", productHandler.ModifyProduct)
		r.Delete("/api/delete_product/{id}", productHandler.DeleteProduct)

		// 購入（購入専用レート制限を追加）
		r.With(deps.RateLimiter.PurchaseMiddleware()).Post("/api/buy_product/{id}", orderHandler.BuyProduct)
		r.Get("/api/get_orders", orderHandler.GetOrders)

		// コメント
		r.Post("/api/publish_comment", interactionHandler.PublishComment)
		r.Delete("/api/delete_comment/{id}", interactionHandler.DeleteComment)

		// 收藏
		r.Get("/api/favorite_folders", interactionHandler.GetFavoriteFolders)
		r.Post("/api/create_favorite_folder", interactionHandler.CreateFavoriteFolder)
		r.Post("/api/modify_favorite_folder", interactionHandler.ModifyFavoriteFolder)
		r.Delete("/api/delete_favorite_folder/{id}", interactionHandler.DeleteFavoriteFolder)
		r.Post("/api/favorite_product", interactionHandler.FavoriteProduct)
		r.Get("/api/get_favorites/{folderID}", interactionHandler.GetFavorites)
		r.Delete("/api/delete_favorite/{folderID}/product/{productID}", interactionHandler.DeleteFavorite)

		// メッセージ
		r.Post("/api/send_msg", interactionHandler.SendMsg)
		r.Get("/api/get_msgs", interactionHandler.GetMsgs)

		// アップロード
		r.Post("/api/upload", uploadHandler.Upload)
	})

	return r
}
