package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/sixthworld/internal/game/roster"
)

// BlobStore keeps JSON documents in the kv_blobs table. It satisfies
// roster.BlobStore.
type BlobStore struct {
	db *pgxpool.Pool
}

// NewBlobStore creates a BlobStore backed by db.
//
// Precondition: db must be open and the kv_blobs migration applied.
func NewBlobStore(db *pgxpool.Pool) *BlobStore {
	return &BlobStore{db: db}
}

// Get returns the document stored under key, or roster.ErrBlobNotFound.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roster.ErrBlobNotFound
		}
		return nil, fmt.Errorf("querying blob %q: %w", key, err)
	}
	return value, nil
}

// Put inserts or replaces the document under key.
//
// Precondition: value must be valid JSON.
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("upserting blob %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting blob %q: %w", key, err)
	}
	return nil
}
