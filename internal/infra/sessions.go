package infra

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/creditor/creditor_console/internal/config"
	"github.com/creditor/creditor_console/internal/session"
)

// StoreFactory opens the persistence for one browser session.
type StoreFactory func(id string) (session.Store, error)

// NewStoreFactory selects the session store backend named by
// cfg.SessionStore. The postgres backend creates its table on first use.
func NewStoreFactory(ctx context.Context, cfg config.Config, db *pgxpool.Pool, cache *redis.Client) (StoreFactory, error) {
	switch cfg.SessionStore {
	case config.StoreMemory, "":
		return func(string) (session.Store, error) {
			return session.NewMemoryStore(), nil
		}, nil

	case config.StoreFile:
		dir := filepath.Join(filepath.Dir(cfg.SessionFile), "sessions")
		return func(id string) (session.Store, error) {
			store, err := session.NewFileStore(filepath.Join(dir, id+".json"), cfg.SessionStoreKey)
			if err != nil {
				return nil, err
			}
			return store, nil
		}, nil

	case config.StoreRedis:
		if cache == nil {
			return nil, fmt.Errorf("redis session store needs a redis client")
		}
		return func(id string) (session.Store, error) {
			store, err := session.NewRedisStore(cache, id, cfg.SessionIdleTTL)
			if err != nil {
				return nil, err
			}
			return store, nil
		}, nil

	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres session store needs a database pool")
		}
		if err := session.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		return func(id string) (session.Store, error) {
			store, err := session.NewPostgresStore(db, id)
			if err != nil {
				return nil, err
			}
			return store, nil
		}, nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}
