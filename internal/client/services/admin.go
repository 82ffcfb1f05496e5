package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/client"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
)

var ErrNoPendingDelete = errors.New("no delete awaiting confirmation")

// AdminView gates the admin screen on the connected account and runs
// deletes behind a request/confirm pair.
type AdminView struct {
	client    client.Client
	session   *wallet.Session
	adminAddr string
	logger    logging.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending string
}

// NewAdminView builds the view. adminAddr is the single allow-listed
// account; an empty value disables the admin screen.
func NewAdminView(c client.Client, s *wallet.Session, adminAddr string, l logging.Logger) *AdminView {
	return &AdminView{
		client:    c,
		session:   s,
		adminAddr: adminAddr,
		logger:    l.With("module", "admin"),
		now:       time.Now,
	}
}

// IsAdmin compares addr with the allow-listed address ignoring case.
func (v *AdminView) IsAdmin(addr string) bool {
	return v.adminAddr != "" && strings.EqualFold(addr, v.adminAddr)
}

// Active reports whether the connected account is the admin.
func (v *AdminView) Active() bool {
	a := v.session.Current()
	return a.Connected && v.IsAdmin(a.Address.Hex())
}

func (v *AdminView) SignedIn() bool {
	return v.client.HasAdminToken()
}

// SignIn has the wallet sign a login message and trades it for a server
// access token.
func (v *AdminView) SignIn(ctx context.Context) error {
	if !v.Active() {
		return common.ErrorForbidden
	}
	gw := v.session.Gateway()
	if gw == nil {
		return wallet.ErrNoWallet
	}

	addr := v.session.Current().Address
	msg := common.LoginMessage(addr.Hex(), v.now())
	sig, err := gw.SignMessage(ctx, addr, msg)
	if err != nil {
		return err
	}

	if err := v.client.SignInAdmin(ctx, pb.AdminProof{Address: addr.Hex(), Message: msg, Signature: sig}); err != nil {
		return err
	}
	v.logger.Info(ctx, "admin signed in", "address", addr.Hex())
	return nil
}

// Records lists the whole catalog for the admin table.
func (v *AdminView) Records(ctx context.Context) ([]*models.Record, error) {
	if !v.Active() {
		return nil, common.ErrorForbidden
	}
	return v.client.ListRecords(ctx)
}

// RequestDelete marks id for deletion. Nothing is removed until
// ConfirmDelete.
func (v *AdminView) RequestDelete(id string) error {
	if !v.Active() {
		return common.ErrorForbidden
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = id
	return nil
}

func (v *AdminView) Pending() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending, v.pending != ""
}

func (v *AdminView) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = ""
}

// ConfirmDelete deletes the pending record. The request is consumed even
// when the delete fails; an unknown id yields common.ErrorNotFound.
func (v *AdminView) ConfirmDelete(ctx context.Context) (string, error) {
	v.mu.Lock()
	id := v.pending
	v.pending = ""
	v.mu.Unlock()

	if id == "" {
		return "", ErrNoPendingDelete
	}
	if !v.Active() {
		return id, common.ErrorForbidden
	}

	if err := v.client.DeleteRecord(ctx, id); err != nil {
		return id, err
	}
	v.logger.Info(ctx, "record deleted", "id", id)
	return id, nil
}
