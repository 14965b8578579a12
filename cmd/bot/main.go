package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/sync/errgroup"

	taskearn "github.com/set-night/taskearn"
	"github.com/set-night/taskearn/internal/config"
	"github.com/set-night/taskearn/internal/handler"
	"github.com/set-night/taskearn/internal/httpserver"
	"github.com/set-night/taskearn/internal/logger"
	"github.com/set-night/taskearn/internal/middleware"
	"github.com/set-night/taskearn/internal/repository"
	"github.com/set-night/taskearn/internal/service"
	"github.com/set-night/taskearn/internal/session"
	"github.com/set-night/taskearn/internal/telegram"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "json")
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(taskearn.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.NewStore(pool)
	queries := repository.New(pool)

	g, ctx := errgroup.WithContext(ctx)

	// Conversation sessions and rate limiting
	var (
		sessions session.Store
		limiter  middleware.Limiter = middleware.NewPostgresLimiter(queries)
	)
	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, config.RateLimitWindow)
		if cfg.SessionBackend == config.SessionBackendRedis {
			sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		}
	}
	switch cfg.SessionBackend {
	case config.SessionBackendPostgres:
		pgSessions := session.NewPostgresStore(queries, cfg.SessionTTL)
		g.Go(func() error {
			pgSessions.RunCleanup(ctx, sessionCleanupInterval)
			return nil
		})
		sessions = pgSessions
	case config.SessionBackendMemory:
		sessions = session.NewMemoryStore()
	}
	slog.Info("session store ready", "backend", cfg.SessionBackend)

	// Initialize services
	ledgerService := service.NewLedgerService(store, cfg.ReferralBonus, cfg.WalletPrefix)
	taskService := service.NewTaskService(store)
	withdrawService := service.NewWithdrawService(store, cfg.MinWithdraw)

	// The log chat sender is attached once the bot exists
	tgLogger := telegram.NewTelegramLogger(nil, cfg.LogTelegramChatID)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	b, err := bot.New(cfg.BotToken,
		bot.WithMiddlewares(
			middleware.Recover(tgLogger),
			middleware.Logging(),
			middleware.RateLimit(limiter, cfg.RateLimitPerMinute),
			middleware.UserLoader(ledgerService, tgLogger),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.Dispatch(ctx, b, update)
		}),
	)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	tgLogger.SetSender(b)

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	botUsername := cfg.BotUsername
	if botUsername == "" {
		botUsername = me.Username
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	h = handler.New(handler.Deps{
		Sender:          b,
		Cfg:             cfg,
		LedgerService:   ledgerService,
		TaskService:     taskService,
		WithdrawService: withdrawService,
		Sessions:        sessions,
		TgLogger:        tgLogger,
		BotUsername:     botUsername,
	})
	h.Register(b)

	if cfg.HTTPAddr != "" {
		srv := httpserver.New(cfg.HTTPAddr, store)
		g.Go(func() error { return srv.Run(ctx) })
	}

	g.Go(func() error {
		slog.Info("starting bot", "username", me.Username, "id", me.ID)
		b.Start(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped gracefully")
}
