// Package app はコマンドの解析、依存関係のワイヤリング、各起動モードの実行を行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hitoshi/taskdesk/internal/auth"
	"github.com/hitoshi/taskdesk/internal/comment"
	"github.com/hitoshi/taskdesk/internal/config"
	"github.com/hitoshi/taskdesk/internal/dashboard"
	"github.com/hitoshi/taskdesk/internal/database"
	"github.com/hitoshi/taskdesk/internal/handler"
	"github.com/hitoshi/taskdesk/internal/logger"
	"github.com/hitoshi/taskdesk/internal/metrics"
	"github.com/hitoshi/taskdesk/internal/middleware"
	"github.com/hitoshi/taskdesk/internal/notify"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/security"
	"github.com/hitoshi/taskdesk/internal/task"
	"github.com/hitoshi/taskdesk/internal/team"
	"github.com/hitoshi/taskdesk/internal/user"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数（およびenvFiles）からConfigを読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer, envFiles ...string) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMを受信するとcontextがキャンセルされる。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(w)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// runMode は設定読み込み後に実行される各起動モードの本体。
type runMode func(ctx context.Context, cfg *config.Config) error

// runCommand は設定を読み込み、commandに対応するモードrunを実行する。
func runCommand(cmd *cobra.Command, w io.Writer, command Command, envFiles []string, run runMode) error {
	cfg, err := Init(w, envFiles...)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(command)),
		slog.String("port", cfg.ServerPort),
	)

	return run(cmd.Context(), cfg)
}

// openDatabase はコネクションプールを設定してDBに接続し、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)
	return db, nil
}

// buildRouter は全依存関係をワイヤリングしたHTTPハンドラーを構築する。
// 返されるcleanupはレートリミッターのクリーンアップgoroutineを停止する。
func buildRouter(cfg *config.Config, db *sql.DB, log *slog.Logger, reg *prometheus.Registry) (http.Handler, func()) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	teamRepo := repository.NewPostgresTeamRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)
	commentRepo := repository.NewPostgresCommentRepo(db)

	// 2. メトリクスの初期化
	collector := metrics.NewCollector(reg)

	// 3. 認証の初期化
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewJWTCodec(cfg.JWTSecret, cfg.TokenTTL())
	creator := user.NewCreator(userRepo, teamRepo, hasher)
	authService := auth.NewService(userRepo, creator, hasher, tokens, collector)

	// 4. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	sink := notify.NewLogSink(log)

	userService := user.NewService(creator, userRepo)
	teamService := team.NewService(teamRepo)
	taskService := task.NewService(taskRepo, teamRepo, userRepo, sanitizer, sink, collector)
	commentService := comment.NewService(commentRepo, taskRepo, sanitizer)
	dashboardService := dashboard.NewService(taskRepo)

	// 5. ルーターの構築
	limiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Authenticator:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		HTTPMetrics:       collector,
		MetricsHandler:    metrics.Handler(reg),
		DB:                db,

		AuthService:      authService,
		UserService:      userService,
		TeamService:      teamService,
		TaskService:      taskService,
		CommentService:   commentService,
		DashboardService: dashboardService,
	})

	return router, limiter.Stop
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, cleanup := buildRouter(cfg, db, slog.Default(), reg)
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はactionに従ってスキーマを適用、巻き戻し、または状態表示する。
// stepsはdownで巻き戻す件数。0の場合はすべて巻き戻す。
func runMigrate(cfg *config.Config, action MigrateAction, steps int) error {
	slog.Info("running database migrations",
		slog.String("action", string(action)),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	mg, err := database.NewMigrator(cfg.DatabaseURL, slog.Default())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer mg.Close()

	switch action {
	case MigrateDown:
		err = mg.Down(steps)
	case MigrateStatus:
		var st database.SchemaStatus
		if st, err = mg.Status(); err == nil {
			slog.Info("schema status",
				slog.Uint64("version", uint64(st.Version)),
				slog.Bool("applied", st.Applied),
				slog.Bool("dirty", st.Dirty),
			)
		}
	default:
		err = mg.Up()
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migration command completed", slog.String("action", string(action)))
	return nil
}

// runSeed は管理者ユーザーとサンプルデータを投入する。
func runSeed(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := repository.NewPostgresUserRepo(db)
	teamRepo := repository.NewPostgresTeamRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)
	creator := user.NewCreator(userRepo, teamRepo, auth.NewBcryptHasher(cfg.BcryptCost))

	seeder := NewSeeder(userRepo, teamRepo, taskRepo, creator, slog.Default())
	result, err := seeder.Seed(ctx, SeedConfig{
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed",
		slog.String("admin_id", result.AdminID),
		slog.String("team_id", result.TeamID),
		slog.Int("members", len(result.MemberIDs)),
		slog.Int("tasks_created", result.TasksCreated),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// healthcheckPort はフラグ、SERVER_PORT、既定値の順にポートを決定する。
func healthcheckPort(flag string) string {
	if flag != "" {
		return flag
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// URLとして解釈できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
