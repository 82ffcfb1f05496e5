// Package wallet talks to an external wallet provider over JSON-RPC. The
// provider holds the keys; this package only asks it for accounts,
// transactions and signatures, and watches the chain for receipts.
package wallet

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// PendingTx is a transaction accepted by the wallet but not yet confirmed.
type PendingTx struct {
	Hash ethcommon.Hash
	From ethcommon.Address
	To   ethcommon.Address
}

// Gateway is the set of wallet capabilities the client relies on.
type Gateway interface {
	// ConnectedAccount returns the account the wallet already exposes, if
	// any, without prompting the user.
	ConnectedAccount(ctx context.Context) (ethcommon.Address, bool, error)
	// RequestAccountAccess prompts the user to expose an account.
	RequestAccountAccess(ctx context.Context) (ethcommon.Address, error)
	SubmitTransfer(ctx context.Context, to ethcommon.Address, wei *big.Int) (PendingTx, error)
	SubmitContractCall(ctx context.Context, to ethcommon.Address, data []byte, gas uint64) (PendingTx, error)
	// AwaitConfirmation blocks until tx is mined or ctx is done.
	AwaitConfirmation(ctx context.Context, tx PendingTx) error
	SignMessage(ctx context.Context, account ethcommon.Address, msg string) (string, error)
}
