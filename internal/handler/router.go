package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/taskdesk/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger // nilの場合はslog.Default()
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetricsRecorder // nilの場合は記録しない
	MetricsHandler    http.Handler                   // nilの場合は/metricsを公開しない
	Validator         *validator.Validate            // nilの場合はNewValidatorで生成する
	DB                Pinger

	// サービス
	AuthService      AuthServiceInterface
	UserService      UserServiceInterface
	TeamService      TeamServiceInterface
	TaskService      TaskServiceInterface
	CommentService   CommentServiceInterface
	DashboardService DashboardServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Recovery → Metrics → SecurityHeaders → CORS
//	  → /api/auth/register, /api/auth/login（ログインはIP単位のレート制限）
//	  → BearerAuth → RateLimit(General) → 認証が必要なルート
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	v := deps.Validator
	if v == nil {
		v = NewValidator()
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService, v)
	userHandler := NewUserHandler(deps.UserService, v)
	teamHandler := NewTeamHandler(deps.TeamService, v)
	taskHandler := NewTaskHandler(deps.TaskService, v)
	commentHandler := NewCommentHandler(deps.CommentService, v)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/auth/login", authHandler.Login)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: BearerAuth → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewBearerAuthMiddleware(deps.Authenticator))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/auth/me", authHandler.Me)

			// 管理者によるユーザー管理（権限はサービス層で検証）
			r.Route("/admin/users", func(r chi.Router) {
				r.Post("/", userHandler.CreateByAdmin)
				r.Get("/", userHandler.ListAll)
			})

			r.Get("/users", userHandler.ListVisible)

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", teamHandler.Create)
				r.Get("/", teamHandler.List)
				r.Get("/{id}", teamHandler.Get)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)

					r.Get("/comments", commentHandler.ListForTask)
				})
			})

			r.Post("/comments", commentHandler.Create)

			r.Get("/dashboard/stats", dashboardHandler.Stats)
		})
	})

	return r
}
