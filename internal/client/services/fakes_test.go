package services

import (
	"context"
	"math/big"
	"sync"

	"github.com/dmitrijs2005/failvault/internal/client/entitlements"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// ---- fake catalog client ----

type fakeClient struct {
	mu sync.Mutex

	Records []*models.Record
	ListErr error

	Created   []models.Draft
	CreateErr error

	Deleted   []string
	DeleteErr error

	Proofs    []pb.AdminProof
	SignInErr error
	token     bool

	Slot    pb.UploadSlot
	SlotErr error
}

func (f *fakeClient) Close() error                   { return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) ListRecords(ctx context.Context) ([]*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Records, f.ListErr
}

func (f *fakeClient) CreateRecord(ctx context.Context, d models.Draft) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, d)
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	r, err := d.Resolve("0x9999999999999999999999999999999999999999")
	if err != nil {
		return nil, err
	}
	r.ID = "new-id"
	return r, nil
}

func (f *fakeClient) DeleteRecord(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, r := range f.Records {
		if r.ID == id {
			f.Records = append(f.Records[:i:i], f.Records[i+1:]...)
			f.Deleted = append(f.Deleted, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeClient) SignInAdmin(ctx context.Context, proof pb.AdminProof) error {
	f.Proofs = append(f.Proofs, proof)
	if f.SignInErr != nil {
		return f.SignInErr
	}
	f.token = true
	return nil
}

func (f *fakeClient) SignOutAdmin()       { f.token = false }
func (f *fakeClient) HasAdminToken() bool { return f.token }

func (f *fakeClient) GetUploadSlot(ctx context.Context) (pb.UploadSlot, error) {
	return f.Slot, f.SlotErr
}

// ---- fake wallet ----

type transfer struct {
	To  ethcommon.Address
	Wei *big.Int
}

type contractCall struct {
	To   ethcommon.Address
	Data []byte
	Gas  uint64
}

type fakeGateway struct {
	mu sync.Mutex

	Account   ethcommon.Address
	Connected bool
	AccessErr error

	SubmitErr error
	AwaitErr  error
	// Block makes AwaitConfirmation wait for ctx.
	Block bool

	SignErr error

	Calls     []string
	Transfers []transfer
	Contracts []contractCall
	Signed    []string
}

func (g *fakeGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, name)
}

func (g *fakeGateway) ConnectedAccount(ctx context.Context) (ethcommon.Address, bool, error) {
	g.record("ConnectedAccount")
	return g.Account, g.Connected, nil
}

func (g *fakeGateway) RequestAccountAccess(ctx context.Context) (ethcommon.Address, error) {
	g.record("RequestAccountAccess")
	if g.AccessErr != nil {
		return ethcommon.Address{}, g.AccessErr
	}
	g.Connected = true
	return g.Account, nil
}

func (g *fakeGateway) SubmitTransfer(ctx context.Context, to ethcommon.Address, wei *big.Int) (wallet.PendingTx, error) {
	g.record("SubmitTransfer")
	if g.SubmitErr != nil {
		return wallet.PendingTx{}, g.SubmitErr
	}
	g.Transfers = append(g.Transfers, transfer{To: to, Wei: wei})
	return wallet.PendingTx{Hash: ethcommon.HexToHash("0x01"), From: g.Account, To: to}, nil
}

func (g *fakeGateway) SubmitContractCall(ctx context.Context, to ethcommon.Address, data []byte, gas uint64) (wallet.PendingTx, error) {
	g.record("SubmitContractCall")
	if g.SubmitErr != nil {
		return wallet.PendingTx{}, g.SubmitErr
	}
	g.Contracts = append(g.Contracts, contractCall{To: to, Data: data, Gas: gas})
	return wallet.PendingTx{Hash: ethcommon.HexToHash("0x02"), From: g.Account, To: to}, nil
}

func (g *fakeGateway) AwaitConfirmation(ctx context.Context, tx wallet.PendingTx) error {
	g.record("AwaitConfirmation")
	if g.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return g.AwaitErr
}

func (g *fakeGateway) SignMessage(ctx context.Context, account ethcommon.Address, msg string) (string, error) {
	g.record("SignMessage")
	if g.SignErr != nil {
		return "", g.SignErr
	}
	g.Signed = append(g.Signed, msg)
	return "0xsig", nil
}

// ---- fake entitlement store ----

type fakeStore struct {
	set       entitlements.Set
	appends   []string
	appendErr error
	readErr   error
}

func newFakeStore(ids ...string) *fakeStore {
	return &fakeStore{set: entitlements.NewSet(ids...)}
}

func (s *fakeStore) Read(ctx context.Context) (entitlements.Set, error) {
	return s.set, s.readErr
}

func (s *fakeStore) AppendIfAbsent(ctx context.Context, id string) (entitlements.Set, error) {
	s.appends = append(s.appends, id)
	if s.appendErr != nil {
		return entitlements.Set{}, s.appendErr
	}
	s.set = entitlements.NewSet(append(s.set.IDs(), id)...)
	return s.set, nil
}
