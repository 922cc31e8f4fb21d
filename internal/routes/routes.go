package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hanzara/quick-hello-wave/internal/config"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/middleware"
	"github.com/hanzara/quick-hello-wave/internal/notification"
	"github.com/hanzara/quick-hello-wave/internal/paystack"
	"github.com/hanzara/quick-hello-wave/internal/profile"
	"github.com/hanzara/quick-hello-wave/internal/recipient"
	"github.com/hanzara/quick-hello-wave/internal/transfer"
	"github.com/hanzara/quick-hello-wave/internal/wallet"
	"github.com/hanzara/quick-hello-wave/internal/webhook"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// DB and Redis may be nil only in dev, where in-memory fallbacks apply.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var ledgerGateway ledger.Gateway
	if d.DB != nil {
		ledgerGateway = ledger.NewPostgres(d.DB)
	} else {
		ledgerGateway = ledger.NewInMemory()
	}

	var profiles profile.Repository
	if d.DB != nil {
		profiles = profile.NewPostgresRepository(d.DB)
	} else {
		profiles = profile.NewMemoryRepository()
	}

	provider := paystack.NewClient(d.Cfg.PaystackSecretKey, d.Cfg.PaystackBaseURL, nil, d.Logger)
	resolver := recipient.NewResolver(provider, d.Cache, d.Logger,
		d.Cfg.ProviderTimeout, d.Cfg.ProviderMaxAttempts, d.Cfg.ProviderRetryDelay)
	notifier := notification.NewLoggerNotifier(d.Logger)

	transferSvc := transfer.NewService(ledgerGateway, profiles, resolver, provider, notifier, d.Logger,
		d.Cfg.ProviderTimeout, d.Cfg.ProviderMaxAttempts, d.Cfg.ProviderRetryDelay)
	transferHandler := transfer.NewHandler(transferSvc)

	walletSvc := wallet.NewService(ledgerGateway, profiles)
	walletHandler := wallet.NewHandler(walletSvc)

	webhookHandler := webhook.NewHandler(provider, d.Cfg.PaystackSecretKey, d.Logger,
		d.Cfg.ProviderTimeout, d.Cfg.ProviderMaxAttempts, d.Cfg.ProviderRetryDelay)

	api := app.Group("/api/v1")

	// Provider callbacks authenticate by signature, not bearer token.
	api.Post("/webhooks/paystack", webhookHandler.Receive)

	protected := api.Group("", middleware.Auth(d.Cfg.JWTSecret))
	RegisterWalletRoutes(protected, walletHandler)

	// Money movement gets the idempotency and rate-limit guards on top of auth.
	money := protected.Group("")
	money.Use(middleware.TransferRateLimit(d.Cache, d.Cfg.TransfersPerMinute))
	if d.Cache != nil {
		money.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterTransferRoutes(money, transferHandler)

	return nil
}
