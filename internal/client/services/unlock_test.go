package services

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/entitlements"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

const (
	operatorAddr = "0x9999999999999999999999999999999999999999"
	payeeAddr    = "0x2222222222222222222222222222222222222222"
	userAddr     = "0x1111111111111111111111111111111111111111"
)

func sampleRecord(id string) *models.Record {
	return &models.Record{
		ID:           id,
		Title:        "Palladium interaction",
		Abstract:     "Nothing happened",
		Category:     models.CategoryPhysics,
		Price:        decimal.RequireFromString("0.0001"),
		Findings:     "secret",
		PayeeAddress: payeeAddr,
	}
}

type recorder struct {
	transitions []Transition
}

func (r *recorder) observe(t Transition) { r.transitions = append(r.transitions, t) }

func (r *recorder) states() []State {
	out := make([]State, 0, len(r.transitions))
	for _, t := range r.transitions {
		out = append(out, t.State)
	}
	return out
}

func connectedWallet() *fakeGateway {
	return &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true}
}

func TestUnlock_Success(t *testing.T) {
	gw := connectedWallet()
	store := newFakeStore()
	w := NewUnlockWorkflow(gw, store, operatorAddr, 0, logging.Nop{})
	rec := &recorder{}

	set, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), rec.observe)
	require.NoError(t, err)

	assert.True(t, set.Has("r1"))
	assert.Equal(t, []string{"r1"}, store.appends)
	assert.Equal(t, []State{Locked, AwaitingWalletConfirmation, AwaitingChainConfirmation, Unlocked}, rec.states())

	require.Len(t, gw.Transfers, 1)
	assert.Equal(t, ethcommon.HexToAddress(payeeAddr), gw.Transfers[0].To)
	assert.Equal(t, 0, gw.Transfers[0].Wei.Cmp(big.NewInt(100000000000000)))
	assert.Equal(t, ethcommon.HexToHash("0x01"), rec.transitions[3].Tx)
}

func TestUnlock_NoWalletFailsBeforeAnySideEffect(t *testing.T) {
	store := newFakeStore()
	w := NewUnlockWorkflow(nil, store, operatorAddr, 0, logging.Nop{})
	rec := &recorder{}

	_, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), rec.observe)

	var ue *UnlockError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, FailureEnvironment, ue.Kind)
	assert.ErrorIs(t, err, wallet.ErrNoWallet)
	assert.Empty(t, store.appends)
	assert.Equal(t, []State{Locked, Failed}, rec.states())
}

func TestUnlock_EntryGuard(t *testing.T) {
	gw := connectedWallet()
	store := newFakeStore("r1")
	w := NewUnlockWorkflow(gw, store, operatorAddr, 0, logging.Nop{})
	rec := &recorder{}

	held := entitlements.NewSet("r1")
	set, err := w.Unlock(context.Background(), sampleRecord("r1"), held, rec.observe)

	require.ErrorIs(t, err, ErrAlreadyUnlocked)
	assert.Equal(t, held.IDs(), set.IDs())
	assert.Empty(t, gw.Calls)
	assert.Empty(t, store.appends)
	assert.Empty(t, rec.transitions)
}

func TestUnlock_GuardIsExactMatch(t *testing.T) {
	gw := connectedWallet()
	w := NewUnlockWorkflow(gw, newFakeStore(), operatorAddr, 0, logging.Nop{})

	_, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet("r10", "xr1"), nil)
	require.NoError(t, err)
}

func TestUnlock_PayeeFallsBackToOperator(t *testing.T) {
	gw := connectedWallet()
	w := NewUnlockWorkflow(gw, newFakeStore(), operatorAddr, 0, logging.Nop{})

	r := sampleRecord("r1")
	r.PayeeAddress = ""
	_, err := w.Unlock(context.Background(), r, entitlements.NewSet(), nil)
	require.NoError(t, err)

	require.Len(t, gw.Transfers, 1)
	assert.Equal(t, ethcommon.HexToAddress(operatorAddr), gw.Transfers[0].To)
}

func TestUnlock_RequestsAccessWhenNotConnected(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr)}
	w := NewUnlockWorkflow(gw, newFakeStore(), operatorAddr, 0, logging.Nop{})

	_, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ConnectedAccount", "RequestAccountAccess", "SubmitTransfer", "AwaitConfirmation"}, gw.Calls)
}

func TestUnlock_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gw      *fakeGateway
		kind    FailureKind
		wantErr error
		states  []State
	}{
		{
			name:    "account access declined",
			gw:      &fakeGateway{AccessErr: wallet.ErrRejected},
			kind:    FailureDeclined,
			wantErr: wallet.ErrRejected,
			states:  []State{Locked, AwaitingWalletConfirmation, Failed},
		},
		{
			name:    "transaction declined",
			gw:      &fakeGateway{Connected: true, SubmitErr: wallet.ErrRejected},
			kind:    FailureDeclined,
			wantErr: wallet.ErrRejected,
			states:  []State{Locked, AwaitingWalletConfirmation, Failed},
		},
		{
			name:   "provider error",
			gw:     &fakeGateway{Connected: true, SubmitErr: errors.New("insufficient funds")},
			kind:   FailureBackend,
			states: []State{Locked, AwaitingWalletConfirmation, Failed},
		},
		{
			name:    "reverted",
			gw:      &fakeGateway{Connected: true, AwaitErr: wallet.ErrReverted},
			kind:    FailureConfirmation,
			wantErr: wallet.ErrReverted,
			states:  []State{Locked, AwaitingWalletConfirmation, AwaitingChainConfirmation, Failed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			w := NewUnlockWorkflow(tt.gw, store, operatorAddr, 0, logging.Nop{})
			rec := &recorder{}

			set, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), rec.observe)

			var ue *UnlockError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.kind, ue.Kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, set.Has("r1"))
			assert.Empty(t, store.appends)
			assert.Equal(t, tt.states, rec.states())

			last := rec.transitions[len(rec.transitions)-1]
			assert.Equal(t, tt.kind, last.Failure)
			assert.Error(t, last.Err)
		})
	}
}

func TestUnlock_ConfirmationTimeout(t *testing.T) {
	gw := connectedWallet()
	gw.Block = true
	store := newFakeStore()
	w := NewUnlockWorkflow(gw, store, operatorAddr, 20*time.Millisecond, logging.Nop{})

	_, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), nil)

	var ue *UnlockError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, FailureConfirmation, ue.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, store.appends)
}

func TestUnlock_EntitlementWriteFails(t *testing.T) {
	gw := connectedWallet()
	store := newFakeStore()
	store.appendErr = errors.New("disk full")
	w := NewUnlockWorkflow(gw, store, operatorAddr, 0, logging.Nop{})
	rec := &recorder{}

	_, err := w.Unlock(context.Background(), sampleRecord("r1"), entitlements.NewSet(), rec.observe)

	var ue *UnlockError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, FailureBackend, ue.Kind)
	assert.Equal(t, Failed, rec.states()[len(rec.states())-1])
}

func TestUnlock_SubWeiPriceRejectedBeforePayment(t *testing.T) {
	gw := connectedWallet()
	w := NewUnlockWorkflow(gw, newFakeStore(), operatorAddr, 0, logging.Nop{})

	r := sampleRecord("r1")
	r.Price = decimal.RequireFromString("0.0000000000000000001")
	_, err := w.Unlock(context.Background(), r, entitlements.NewSet(), nil)

	require.Error(t, err)
	assert.Empty(t, gw.Transfers)
}

func TestUnlock_WithSQLiteStore_SecondAttemptIsGuarded(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)

	store := entitlements.NewStore(db)
	gw := connectedWallet()
	w := NewUnlockWorkflow(gw, store, operatorAddr, 0, logging.Nop{})
	ctx := context.Background()

	held, err := store.Read(ctx)
	require.NoError(t, err)

	held, err = w.Unlock(ctx, sampleRecord("r1"), held, nil)
	require.NoError(t, err)

	_, err = w.Unlock(ctx, sampleRecord("r1"), held, nil)
	require.ErrorIs(t, err, ErrAlreadyUnlocked)
	assert.Len(t, gw.Transfers, 1)

	persisted, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, persisted.IDs())
}

func TestStateAndKindStrings(t *testing.T) {
	assert.Equal(t, "awaiting chain confirmation", AwaitingChainConfirmation.String())
	assert.Equal(t, "declined", FailureDeclined.String())
	assert.Equal(t, "State(42)", State(42).String())
}
