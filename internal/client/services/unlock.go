// Package services contains application services for the FailVault client.
// This file defines the unlock workflow: pay a record's price through the
// wallet, wait for the chain, then record the entitlement locally.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/entitlements"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// State is a step of a single unlock attempt.
type State int

const (
	Locked State = iota
	AwaitingWalletConfirmation
	AwaitingChainConfirmation
	Unlocked
	Failed
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case AwaitingWalletConfirmation:
		return "awaiting wallet confirmation"
	case AwaitingChainConfirmation:
		return "awaiting chain confirmation"
	case Unlocked:
		return "unlocked"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// FailureKind classifies why an attempt ended in Failed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureEnvironment: no wallet provider is available.
	FailureEnvironment
	// FailureDeclined: the user rejected account access or the transaction.
	FailureDeclined
	// FailureBackend: the wallet endpoint or local storage failed.
	FailureBackend
	// FailureConfirmation: the transaction did not confirm.
	FailureConfirmation
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureEnvironment:
		return "environment"
	case FailureDeclined:
		return "declined"
	case FailureBackend:
		return "backend"
	case FailureConfirmation:
		return "confirmation"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

var ErrAlreadyUnlocked = errors.New("record already unlocked")

// UnlockError is returned for every attempt that ends in Failed.
type UnlockError struct {
	Kind FailureKind
	Err  error
}

func (e *UnlockError) Error() string {
	return fmt.Sprintf("unlock failed (%s): %v", e.Kind, e.Err)
}

func (e *UnlockError) Unwrap() error { return e.Err }

// Transition is reported to the observer on every state change.
type Transition struct {
	RecordID string
	State    State
	Tx       ethcommon.Hash
	Failure  FailureKind
	Err      error
}

type Observer func(Transition)

// EntitlementStore is the part of entitlements.Store the workflow needs.
type EntitlementStore interface {
	AppendIfAbsent(ctx context.Context, id string) (entitlements.Set, error)
}

// UnlockWorkflow runs unlock attempts. Attempts are independent: nothing
// ties two attempts for the same record together, so paying twice is
// possible when the caller invokes Unlock again before the first attempt
// records its entitlement.
type UnlockWorkflow interface {
	Unlock(ctx context.Context, rec *models.Record, held entitlements.Set, obs Observer) (entitlements.Set, error)
}

type unlockWorkflow struct {
	gw       wallet.Gateway
	store    EntitlementStore
	operator string
	timeout  time.Duration
	logger   logging.Logger
}

// NewUnlockWorkflow builds a workflow. gw may be nil when no wallet is
// installed. A zero timeout waits for confirmation indefinitely.
func NewUnlockWorkflow(gw wallet.Gateway, store EntitlementStore, operator string, timeout time.Duration, l logging.Logger) UnlockWorkflow {
	return &unlockWorkflow{
		gw:       gw,
		store:    store,
		operator: operator,
		timeout:  timeout,
		logger:   l.With("module", "unlock"),
	}
}

type attempt struct {
	rec *models.Record
	obs Observer
	tx  ethcommon.Hash
}

func (a *attempt) report(s State) {
	if a.obs != nil {
		a.obs(Transition{RecordID: a.rec.ID, State: s, Tx: a.tx})
	}
}

func (a *attempt) fail(kind FailureKind, err error) error {
	if a.obs != nil {
		a.obs(Transition{RecordID: a.rec.ID, State: Failed, Tx: a.tx, Failure: kind, Err: err})
	}
	return &UnlockError{Kind: kind, Err: err}
}

// Unlock pays for rec and appends it to the entitlement set. held is the
// caller's current set; a record already in it is rejected with
// ErrAlreadyUnlocked before anything else happens.
func (w *unlockWorkflow) Unlock(ctx context.Context, rec *models.Record, held entitlements.Set, obs Observer) (entitlements.Set, error) {
	if held.Has(rec.ID) {
		return held, ErrAlreadyUnlocked
	}

	a := &attempt{rec: rec, obs: obs}
	a.report(Locked)

	if w.gw == nil {
		return held, a.fail(FailureEnvironment, wallet.ErrNoWallet)
	}

	a.report(AwaitingWalletConfirmation)

	if _, err := w.account(ctx); err != nil {
		return held, a.fail(classify(err), err)
	}

	payee, err := models.ResolvePayee(rec.PayeeAddress, w.operator)
	if err != nil {
		return held, a.fail(FailureBackend, err)
	}
	wei, err := rec.PriceWei()
	if err != nil {
		return held, a.fail(FailureBackend, err)
	}

	tx, err := w.gw.SubmitTransfer(ctx, ethcommon.HexToAddress(payee), wei)
	if err != nil {
		return held, a.fail(classify(err), err)
	}
	a.tx = tx.Hash
	w.logger.Info(ctx, "payment submitted", "record", rec.ID, "tx", tx.Hash.Hex(), "payee", payee)

	a.report(AwaitingChainConfirmation)

	if err := w.await(ctx, tx); err != nil {
		return held, a.fail(FailureConfirmation, err)
	}

	next, err := w.store.AppendIfAbsent(ctx, rec.ID)
	if err != nil {
		return held, a.fail(FailureBackend, fmt.Errorf("save entitlement: %w", err))
	}

	a.report(Unlocked)
	w.logger.Info(ctx, "record unlocked", "record", rec.ID, "tx", tx.Hash.Hex())
	return next, nil
}

// account returns the connected account, asking for access when the wallet
// does not expose one yet.
func (w *unlockWorkflow) account(ctx context.Context) (ethcommon.Address, error) {
	addr, ok, err := w.gw.ConnectedAccount(ctx)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if ok {
		return addr, nil
	}
	return w.gw.RequestAccountAccess(ctx)
}

func (w *unlockWorkflow) await(ctx context.Context, tx wallet.PendingTx) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.gw.AwaitConfirmation(ctx, tx)
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, wallet.ErrNoWallet):
		return FailureEnvironment
	case errors.Is(err, wallet.ErrRejected), errors.Is(err, wallet.ErrNoAccount):
		return FailureDeclined
	}
	return FailureBackend
}
