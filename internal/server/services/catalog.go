// Package services contains server-side business logic: the record catalog,
// admin token issuance and presigned metadata uploads.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/dmitrijs2005/failvault/internal/server/repositories/repomanager"
)

// CatalogService exposes the experiment catalog.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

// List returns all records, newest first.
func (s *CatalogService) List(ctx context.Context) ([]*models.Record, error) {
	return s.repomanager.Records(s.db).List(ctx)
}

// Create stores a new record built from the draft and returns it as stored.
func (s *CatalogService) Create(ctx context.Context, d models.Draft) (*models.Record, error) {
	return s.repomanager.Records(s.db).Create(ctx, d)
}

// Delete removes the record; common.ErrorNotFound when no record matched.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Records(s.db).Delete(ctx, id)
}
