package client

import (
	"context"

	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	ListRecords(ctx context.Context) ([]*models.Record, error)
	CreateRecord(ctx context.Context, d models.Draft) (*models.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	// SignInAdmin exchanges a signed login message for an access token that
	// is attached to subsequent calls.
	SignInAdmin(ctx context.Context, proof pb.AdminProof) error
	SignOutAdmin()
	HasAdminToken() bool
	GetUploadSlot(ctx context.Context) (pb.UploadSlot, error)
}
