// internal/adapters/out/db/kv_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"milkmaster/internal/adapters/out/kv"
)

// KVRepositoryPG implements kv.Store on Postgres.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS client_storage (
//	  key        TEXT PRIMARY KEY,
//	  value      BYTEA NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type KVRepositoryPG struct {
	DB *sql.DB
}

func NewKVRepositoryPG(db *sql.DB) *KVRepositoryPG {
	return &KVRepositoryPG{DB: db}
}

// ========================
// kv.Store impl
// ========================

func (r *KVRepositoryPG) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("kv_repository_pg: db is nil")
	}
	const q = `SELECT value FROM client_storage WHERE key = $1`

	var value []byte
	if err := r.DB.QueryRowContext(ctx, q, strings.TrimSpace(key)).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *KVRepositoryPG) Set(ctx context.Context, key string, value []byte) error {
	if r == nil || r.DB == nil {
		return errors.New("kv_repository_pg: db is nil")
	}
	const q = `
INSERT INTO client_storage (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	_, err := r.DB.ExecContext(ctx, q, strings.TrimSpace(key), value)
	return err
}

func (r *KVRepositoryPG) Remove(ctx context.Context, key string) error {
	if r == nil || r.DB == nil {
		return errors.New("kv_repository_pg: db is nil")
	}
	const q = `DELETE FROM client_storage WHERE key = $1`

	_, err := r.DB.ExecContext(ctx, q, strings.TrimSpace(key))
	return err
}
