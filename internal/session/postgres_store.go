package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const sessionTable = "console_session_entries"

// Schema creates the table PostgresStore writes to.
const Schema = `CREATE TABLE IF NOT EXISTS console_session_entries (
    namespace   TEXT        NOT NULL,
    entry_key   TEXT        NOT NULL,
    entry_value TEXT        NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (namespace, entry_key)
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnsureSchema creates the session table when it does not exist yet.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create %s: %w", sessionTable, err)
	}
	return nil
}

// PostgresStore keeps one browser's entries in console_session_entries.
type PostgresStore struct {
	db        DB
	namespace string
	now       func() time.Time
}

// NewPostgresStore scopes a store to namespace.
func NewPostgresStore(db DB, namespace string) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if namespace == "" {
		return nil, errors.New("session namespace is required")
	}
	return &PostgresStore{db: db, namespace: namespace, now: time.Now}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("entry_value").
		From(sessionTable).
		Where(sq.Eq{"namespace": s.namespace, "entry_key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var value string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select session entry %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	query, args, err := psql.Insert(sessionTable).
		Columns("namespace", "entry_key", "entry_value", "updated_at").
		Values(s.namespace, key, value, s.now().UTC()).
		Suffix("ON CONFLICT (namespace, entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session entry %s: %w", key, err)
	}
	return nil
}

// Delete removes the keys in one statement.
func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := psql.Delete(sessionTable).
		Where(sq.Eq{"namespace": s.namespace, "entry_key": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session entries: %w", err)
	}
	return nil
}
