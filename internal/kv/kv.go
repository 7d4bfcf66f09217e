// Package kv provides the string key-value stores the history log is kept in.
package kv

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/errors"
)

// Store is a minimal string key-value store.
// Get reports found=false with a nil error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Open returns the Store selected by cfg.HistoryBackend.
// database is only used by the sqlite backend; baseDir only by the file backend.
// The returned close func releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, database *sql.DB, baseDir string) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.HistoryBackend {
	case "", config.BackendSQLite:
		if database == nil {
			return nil, noop, errors.NewStoreUnavailable(config.BackendSQLite, nil)
		}
		return NewSQLite(database), noop, nil

	case config.BackendFile:
		store, err := NewFile(filepath.Join(baseDir, "history"))
		if err != nil {
			return nil, noop, errors.NewStoreUnavailable(config.BackendFile, err)
		}
		return store, noop, nil

	case config.BackendMemory:
		return NewMemory(), noop, nil

	case config.BackendRedis:
		store := NewRedis(RedisOptions{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, noop, errors.NewStoreUnavailable(config.BackendRedis, err)
		}
		return store, store.Close, nil

	default:
		return nil, noop, errors.NewInvalidRequest("unknown history_backend: " + cfg.HistoryBackend)
	}
}
