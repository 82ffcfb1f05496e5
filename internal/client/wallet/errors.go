package wallet

import "errors"

var (
	// ErrNoWallet means no wallet provider is configured for this process.
	ErrNoWallet = errors.New("no wallet available")
	// ErrRejected means the user declined the request in the wallet.
	ErrRejected  = errors.New("request rejected by user")
	ErrNoAccount = errors.New("no connected account")
	// ErrReverted means the transaction was mined but did not succeed.
	ErrReverted = errors.New("transaction reverted")
)
