package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/eventledger/eventledger/internal/config"
	"github.com/eventledger/eventledger/internal/ledger"
	"github.com/eventledger/eventledger/internal/middleware"
	"github.com/eventledger/eventledger/internal/notification"
	"github.com/eventledger/eventledger/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg   config.Config
	Store ledger.Store
	// StorePing reports the health of the store's connections. Nil means the
	// store has none.
	StorePing func(context.Context) error
	Cache     *redis.Client
	Logger    *slog.Logger
	Notifier  notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("event store is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if !isDev(d.Cfg.AppEnv) && d.Cfg.StoreDriver == config.DriverMemory {
		return fmt.Errorf("memory store is not allowed when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	if isDev(d.Cfg.AppEnv) {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}
	registry := wallet.NewRegistry(d.Store, wallet.WithLogger(d.Logger))
	walletSvc := wallet.NewService(registry, notifier)
	walletHandler := wallet.NewHandler(walletSvc, d.Cfg.Currency)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	protected := api.Group("", middleware.BearerToken(d.Cfg.APITokenHash))
	RegisterAccountRoutes(protected, walletHandler, middleware.AccountRateLimit(d.Cache, d.Cfg.WriteRateLimit))

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
