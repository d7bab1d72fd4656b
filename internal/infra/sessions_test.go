package infra

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/creditor/creditor_console/internal/config"
	"github.com/creditor/creditor_console/internal/session"
)

func TestStoreFactoryMemoryIsPerSession(t *testing.T) {
	ctx := context.Background()
	stores, err := NewStoreFactory(ctx, config.Config{SessionStore: config.StoreMemory}, nil, nil)
	if err != nil {
		t.Fatalf("NewStoreFactory: %v", err)
	}
	a, _ := stores("a")
	b, _ := stores("b")
	_ = a.Set(ctx, session.KeyToken, "tok")
	if _, ok, _ := b.Get(ctx, session.KeyToken); ok {
		t.Fatalf("memory stores must not be shared")
	}
}

func TestStoreFactoryFileUsesOneFilePerSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Config{SessionStore: config.StoreFile, SessionFile: filepath.Join(dir, "session.json")}
	stores, err := NewStoreFactory(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewStoreFactory: %v", err)
	}
	store, err := stores("3f1c2d0e-8b7a-4f4e-9a55-0d6b2f7c1a11")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Set(ctx, session.KeyToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sessions", "3f1c2d0e-8b7a-4f4e-9a55-0d6b2f7c1a11.json")); err != nil {
		t.Fatalf("expected per session file: %v", err)
	}
}

func TestStoreFactoryRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	ctx := context.Background()
	cfg := config.Config{SessionStore: config.StoreRedis, SessionIdleTTL: time.Hour}
	stores, err := NewStoreFactory(ctx, cfg, nil, cache)
	if err != nil {
		t.Fatalf("NewStoreFactory: %v", err)
	}
	store, err := stores("browser-1")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Set(ctx, session.KeyToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.TTL("creditor:session:browser-1:token") != time.Hour {
		t.Fatalf("expected idle ttl on session keys")
	}
}

func TestStoreFactoryNeedsBackends(t *testing.T) {
	ctx := context.Background()
	cases := []config.Config{
		{SessionStore: config.StoreRedis},
		{SessionStore: config.StorePostgres},
		{SessionStore: "etcd"},
	}
	for _, cfg := range cases {
		if _, err := NewStoreFactory(ctx, cfg, nil, nil); err == nil {
			t.Fatalf("expected error for %q without its backend", cfg.SessionStore)
		}
	}
}
