package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/config"
	"github.com/creditor/creditor_console/internal/infra"
	"github.com/creditor/creditor_console/internal/metrics"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/routes"
	"github.com/creditor/creditor_console/internal/session"
)

const inboxLimit = 20

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	registry *session.Registry
	logger   *slog.Logger
}

// New instantiates the HTTP server, the browser session registry and
// delegates route wiring to routes.Setup. db and cache may be nil.
func New(ctx context.Context, cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	m := metrics.New()

	stores, err := infra.NewStoreFactory(ctx, cfg, db, cache)
	if err != nil {
		return nil, err
	}
	registry, err := session.NewRegistry(managerFactory(cfg, stores, m, logger), cfg.SessionIdleTTL, logger, m)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	deps := routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Metrics: m, Registry: registry}
	if err := routes.Setup(app, deps); err != nil {
		registry.Close()
		return nil, err
	}

	return &Server{app: app, cfg: cfg, registry: registry, logger: logger}, nil
}

// managerFactory builds the per browser manager: its own API client, store
// and notification inbox.
func managerFactory(cfg config.Config, stores infra.StoreFactory, m *metrics.Metrics, logger *slog.Logger) session.Factory {
	return func(ctx context.Context, id string) (*session.Manager, error) {
		log := logger.With(slog.String("session_id", id))

		store, err := stores(id)
		if err != nil {
			return nil, err
		}
		client, err := apiclient.New(apiclient.Options{
			BaseURL:  cfg.APIURL,
			Timeout:  cfg.APITimeout,
			Observer: m,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		return session.New(session.Options{
			Client:   client,
			Store:    store,
			Notifier: notification.NewInbox(inboxLimit, notification.NewLoggerNotifier(log)),
			Logger:   log,
			Recorder: m,
		})
	}
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server, then releases every browser
// session. Persisted sessions survive for the next start.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.registry.Close()
	return err
}
