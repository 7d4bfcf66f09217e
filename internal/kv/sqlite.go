package kv

import (
	"context"
	"database/sql"

	"github.com/hpungsan/quip/internal/db"
)

// SQLite stores keys in the kv table of the quip database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an initialized database (see db.Init).
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	return db.GetValue(ctx, s.db, key)
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return db.PutValue(ctx, s.db, key, value)
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	return db.DeleteValue(ctx, s.db, key)
}
