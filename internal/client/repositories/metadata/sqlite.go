package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/dbx"
)

const (
	lookupQuery = `SELECT value FROM metadata WHERE key = ?`
	putQuery    = `INSERT INTO metadata (key, value) VALUES (?, ?)
	               ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	removeQuery = `DELETE FROM metadata WHERE key = ?`
)

// SQLiteRepository runs against a *sql.DB or a *sql.Tx, so a caller can
// read and write one key inside a single transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	value := []byte{}
	switch err := r.db.QueryRowContext(ctx, lookupQuery, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("metadata lookup %q: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := r.db.ExecContext(ctx, putQuery, key, value); err != nil {
		return fmt.Errorf("metadata put %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, removeQuery, key); err != nil {
		return fmt.Errorf("metadata remove %q: %w", key, err)
	}
	return nil
}
