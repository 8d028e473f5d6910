package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresKVStore struct {
	db  *sql.DB
	log *logrus.Logger
}

const createKVTable = `
CREATE TABLE IF NOT EXISTS storefront_kv (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresKVStore creates the backing table if it does not exist.
func NewPostgresKVStore(ctx context.Context, db *sql.DB, logger *logrus.Logger) (KVStore, error) {
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			logger.Errorf("PostgresStore: Failed to create table (code %s): %s", pqErr.Code, pqErr.Message)
		}
		return nil, fmt.Errorf("could not prepare storefront_kv table: %w", err)
	}
	return &postgresKVStore{db: db, log: logger}, nil
}

func (s *postgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM storefront_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Errorf("PostgresStore: Failed to read key %s: %v", key, err)
		return nil, err
	}
	return value, nil
}

func (s *postgresKVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
        INSERT INTO storefront_kv (key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		s.log.Errorf("PostgresStore: Failed to write key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *postgresKVStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM storefront_kv WHERE key = $1`, key)
	return err
}

func (s *postgresKVStore) Close() error {
	return s.db.Close()
}
