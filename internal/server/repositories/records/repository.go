package records

import (
	"context"

	"github.com/dmitrijs2005/failvault/internal/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Record, error)
	Create(ctx context.Context, d models.Draft) (*models.Record, error)
	Delete(ctx context.Context, id string) error
}

// Sealer encrypts findings before they are written and decrypts them on read.
type Sealer interface {
	Seal(plaintext string) (ciphertext, nonce []byte)
	Open(ciphertext, nonce []byte) (string, error)
}

// Options are the repository-boundary settings shared by every repository
// instance the manager vends.
type Options struct {
	// OperatorAddress is the payee for records created without one.
	OperatorAddress string
	Sealer          Sealer
}
