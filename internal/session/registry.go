package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Factory builds a fresh manager for the browser session id.
type Factory func(ctx context.Context, id string) (*Manager, error)

// Gauge tracks how many managers the registry holds.
type Gauge interface {
	SessionOpened()
	SessionClosed()
}

// Registry binds browser session ids to managers. Entries expire after idleTTL
// without access and are disposed on eviction.
type Registry struct {
	factory Factory
	logger  *slog.Logger
	gauge   Gauge
	idleTTL time.Duration

	mu      sync.Mutex
	entries *cache.Cache
}

// NewRegistry constructs a registry. A non-positive idleTTL keeps managers
// until Remove or Close.
func NewRegistry(factory Factory, idleTTL time.Duration, logger *slog.Logger, gauge Gauge) (*Registry, error) {
	if factory == nil {
		return nil, errors.New("session factory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ttl := idleTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl / 2
	if ttl == cache.NoExpiration || cleanup < time.Second {
		cleanup = time.Minute
	}

	r := &Registry{
		factory: factory,
		logger:  logger,
		gauge:   gauge,
		idleTTL: ttl,
		entries: cache.New(ttl, cleanup),
	}
	r.entries.OnEvicted(func(id string, v any) {
		if m, ok := v.(*Manager); ok {
			m.Dispose()
		}
		if r.gauge != nil {
			r.gauge.SessionClosed()
		}
		r.logger.Debug("browser session evicted", slog.String("session_id", id))
	})
	return r, nil
}

// Get returns the manager for id, creating and initialising it on first use.
// Every access slides the idle deadline.
func (r *Registry) Get(ctx context.Context, id string) (*Manager, error) {
	if id == "" {
		return nil, errors.New("browser session id is required")
	}

	r.mu.Lock()
	m, created, err := r.lookupLocked(ctx, id)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.DebugContext(ctx, "browser session opened", slog.String("session_id", id))
	}

	if err := m.Init(ctx); err != nil {
		r.logger.WarnContext(ctx, "session init failed", slog.String("session_id", id), slog.Any("error", err))
	}
	if !created {
		if err := m.Touch(ctx); err != nil {
			r.logger.WarnContext(ctx, "session touch failed", slog.String("session_id", id), slog.Any("error", err))
		}
	}
	return m, nil
}

func (r *Registry) lookupLocked(ctx context.Context, id string) (*Manager, bool, error) {
	if v, ok := r.entries.Get(id); ok {
		m := v.(*Manager)
		// Set replaces without firing OnEvicted.
		r.entries.Set(id, m, r.idleTTL)
		return m, false, nil
	}
	// An expired entry is still stored until swept; evict it before replacing.
	r.entries.DeleteExpired()
	m, err := r.factory(ctx, id)
	if err != nil {
		return nil, false, err
	}
	r.entries.Set(id, m, r.idleTTL)
	if r.gauge != nil {
		r.gauge.SessionOpened()
	}
	return m, true, nil
}

// Remove disposes and forgets the manager for id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Delete(id)
}

// Len reports how many managers are held, including expired ones not yet swept.
func (r *Registry) Len() int {
	return r.entries.ItemCount()
}

// Close disposes every manager.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.DeleteExpired()
	for id := range r.entries.Items() {
		r.entries.Delete(id)
	}
}
