// Package entitlements keeps the device-local set of record ids this device
// has paid to unlock. The set lives under one metadata key as a JSON array
// and only ever grows.
package entitlements

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/failvault/internal/dbx"
)

// Key is the metadata key holding the serialized set.
const Key = "myUnlockedIds"

var ErrCorrupt = errors.New("entitlement set is corrupt")

// Set is an immutable snapshot of unlocked ids in insertion order.
type Set struct {
	ids   []string
	index map[string]struct{}
}

func NewSet(ids ...string) Set {
	s := Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Has reports exact membership.
func (s Set) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s Set) Len() int { return len(s.ids) }

type Store struct {
	db   *sql.DB
	repo func(dbx.DBTX) metadata.Repository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		repo: func(tx dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(tx) },
	}
}

// Read returns the current set; a device that never unlocked anything has
// an empty set.
func (s *Store) Read(ctx context.Context) (Set, error) {
	return read(ctx, s.repo(s.db))
}

// AppendIfAbsent adds id and returns the updated set. The read and the
// write happen in one transaction; appending a present id writes nothing.
func (s *Store) AppendIfAbsent(ctx context.Context, id string) (Set, error) {
	var result Set
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)

		current, err := read(ctx, repo)
		if err != nil {
			return err
		}
		if current.Has(id) {
			result = current
			return nil
		}

		next := NewSet(append(current.IDs(), id)...)
		raw, err := json.Marshal(next.ids)
		if err != nil {
			return err
		}
		if err := repo.Put(ctx, Key, raw); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return Set{}, err
	}
	return result, nil
}

func read(ctx context.Context, repo metadata.Repository) (Set, error) {
	raw, found, err := repo.Lookup(ctx, Key)
	if err != nil {
		return Set{}, err
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return NewSet(), nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return Set{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return NewSet(ids...), nil
}
