package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/auth"
	"github.com/creditor/creditor_console/internal/config"
	"github.com/creditor/creditor_console/internal/customer"
	"github.com/creditor/creditor_console/internal/dashboard"
	"github.com/creditor/creditor_console/internal/employee"
	"github.com/creditor/creditor_console/internal/loan"
	"github.com/creditor/creditor_console/internal/metrics"
	"github.com/creditor/creditor_console/internal/middleware"
	"github.com/creditor/creditor_console/internal/profile"
	"github.com/creditor/creditor_console/internal/session"
	"github.com/creditor/creditor_console/internal/transaction"
	"github.com/creditor/creditor_console/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *session.Registry
}

// Setup configures middlewares and all console routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Registry == nil {
		return fmt.Errorf("session registry is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app, d.Metrics)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	console := api.Group("",
		middleware.BrowserSession(d.Registry, middleware.SessionOptions{
			Secure: !d.Cfg.IsDev(),
			MaxAge: d.Cfg.SessionIdleTTL,
		}, d.Logger),
		middleware.Audit(d.Logger),
	)
	RegisterAuthRoutes(console, auth.NewHandler(), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit))

	client := func(c *fiber.Ctx) apiclient.Requester { return middleware.Client(c) }
	idempotent := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)

	protected := console.Group("", middleware.RequireAuthenticated())
	protected.Get("/dashboard", dashboard.Handler(client))
	RegisterLoanRoutes(protected, loan.NewHandler(client), idempotent)
	RegisterTransactionRoutes(protected, transaction.NewHandler(client), idempotent)
	RegisterCustomerRoutes(protected, customer.NewHandler(client))
	RegisterEmployeeRoutes(protected, employee.NewHandler(client))
	RegisterUserRoutes(protected, user.NewHandler(client))
	RegisterProfileRoutes(protected, profile.NewHandler(client))

	return nil
}
