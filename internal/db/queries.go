package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/quip/internal/errors"
)

// GetValue returns the value stored under key.
// found is false (with a nil error) when the key does not exist.
func GetValue(ctx context.Context, db *sql.DB, key string) (value string, found bool, err error) {
	row := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// PutValue inserts or replaces the value stored under key.
func PutValue(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func DeleteValue(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// CountValues returns the number of stored keys.
func CountValues(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}
