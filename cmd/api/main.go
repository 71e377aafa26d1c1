package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"

	"clipscribe/internal/infra/adapter/persistence/postgres"
	"clipscribe/internal/infra/db"
	"clipscribe/internal/infra/media"
	"clipscribe/internal/infra/synthesizer"
	"clipscribe/internal/infra/transcriber"
	"clipscribe/internal/observability/logging"
	"clipscribe/internal/observability/tracing"
	"clipscribe/internal/pkg/config"

	artUC "clipscribe/internal/usecase/article"
	authUC "clipscribe/internal/usecase/auth"
	genUC "clipscribe/internal/usecase/generate"

	hhttp "clipscribe/internal/handler/http"
	hauth "clipscribe/internal/handler/http/auth"
	hblog "clipscribe/internal/handler/http/blog"
	"clipscribe/internal/handler/http/requestid"
	"clipscribe/internal/handler/http/web"

	_ "clipscribe/docs" // swagger docs
)

// @title           ClipScribe API
// @version         1.0
// @description     Turns a YouTube link into a transcribed, AI-written blog article.
// @description     Articles are stored per user and served through a session-authenticated web UI.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// loginAttemptsPerMinute caps login attempts per client IP.
const loginAttemptsPerMinute = 5

func main() {
	// Missing .env is fine; real deployments inject the environment directly.
	_ = godotenv.Load()

	logger := logging.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	version := getVersion()

	shutdownTracing, err := tracing.Setup(context.Background(), "clipscribe", version)
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler, authSvc := setupServer(logger, database, cfg, version)

	runServer(logger, cfg, handler, authSvc, version, shutdownTracing)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires repositories, services and handlers into the root
// handler. The auth service is returned separately so the session purge
// job can reach it.
func setupServer(logger *slog.Logger, database *sql.DB, cfg *config.AppConfig, version string) (http.Handler, *authUC.Service) {
	userRepo := postgres.NewUserRepo(database)
	sessionRepo := postgres.NewSessionRepo(database)
	articleRepo := postgres.NewArticleRepo(database)

	authSvc := authUC.NewService(userRepo, sessionRepo, cfg.Auth)
	artSvc := &artUC.Service{Repo: articleRepo}

	fetcher := media.NewFetcher(cfg.Media, nil, logger)

	trans, err := transcriber.New(cfg.Transcriber)
	if err != nil {
		logger.Error("failed to build transcriber", slog.Any("error", err))
		os.Exit(1)
	}
	synth, err := synthesizer.New(cfg.Synthesizer)
	if err != nil {
		logger.Error("failed to build synthesizer", slog.Any("error", err))
		os.Exit(1)
	}
	genSvc := genUC.NewService(fetcher, trans, synth, articleRepo)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to parse page templates", slog.Any("error", err))
		os.Exit(1)
	}

	secret := []byte(cfg.Auth.SessionSecret)

	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	// Swagger UI（認証不要）
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	authHandlers := hauth.NewHandlers(authSvc, renderer, secret, loginAttemptsPerMinute, logger)
	authHandlers.Register(mux)

	protect := hauth.Protect(authSvc, secret)
	hblog.Register(mux, genSvc, artSvc, renderer, protect, logger)

	return applyMiddleware(logger, mux), authSvc
}

// applyMiddleware wraps the handler with the shared middleware chain.
// Order: Request ID → Tracing → Recovery → Logging → Body Limit → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server, the expired-session purge job, and
// handles graceful shutdown on SIGINT/SIGTERM.
func runServer(
	logger *slog.Logger,
	cfg *config.AppConfig,
	handler http.Handler,
	authSvc *authUC.Service,
	version string,
	shutdownTracing func(context.Context) error,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Auth.PurgeSchedule, func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		deleted, err := authSvc.PurgeExpired(purgeCtx)
		if err != nil {
			logger.Error("session purge failed", slog.Any("error", err))
			return
		}
		logger.Info("expired sessions purged", slog.Int64("deleted", deleted))
	}); err != nil {
		logger.Error("failed to schedule session purge", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.Any("error", err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
