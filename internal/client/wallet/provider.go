package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// userRejectedCode is the EIP-1193 error code for a declined request.
const userRejectedCode = 4001

const defaultPollInterval = 2 * time.Second

// Provider is a Gateway backed by a JSON-RPC wallet endpoint.
type Provider struct {
	rpc    *rpc.Client
	eth    *ethclient.Client
	poll   time.Duration
	logger logging.Logger
}

var _ Gateway = (*Provider)(nil)

// Detect connects to the wallet at url. An empty url means no wallet is
// installed and yields ErrNoWallet without touching the network.
func Detect(ctx context.Context, url string, poll time.Duration, l logging.Logger) (*Provider, error) {
	if url == "" {
		return nil, ErrNoWallet
	}

	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet: %w", err)
	}
	return NewProvider(c, poll, l), nil
}

func NewProvider(c *rpc.Client, poll time.Duration, l logging.Logger) *Provider {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	if l == nil {
		l = logging.Nop{}
	}
	return &Provider{
		rpc:    c,
		eth:    ethclient.NewClient(c),
		poll:   poll,
		logger: l.With("module", "wallet"),
	}
}

func (p *Provider) Close() {
	p.rpc.Close()
}

func (p *Provider) call(ctx context.Context, result any, method string, args ...any) error {
	err := p.rpc.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return fmt.Errorf("%w: %s", ErrRejected, rpcErr.Error())
	}
	return fmt.Errorf("%s: %w", method, err)
}

func (p *Provider) accounts(ctx context.Context, method string) ([]ethcommon.Address, error) {
	var accounts []ethcommon.Address
	if err := p.call(ctx, &accounts, method); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *Provider) ConnectedAccount(ctx context.Context) (ethcommon.Address, bool, error) {
	accounts, err := p.accounts(ctx, "eth_accounts")
	if err != nil {
		return ethcommon.Address{}, false, err
	}
	if len(accounts) == 0 {
		return ethcommon.Address{}, false, nil
	}
	return accounts[0], true, nil
}

func (p *Provider) RequestAccountAccess(ctx context.Context) (ethcommon.Address, error) {
	accounts, err := p.accounts(ctx, "eth_requestAccounts")
	if err != nil {
		return ethcommon.Address{}, err
	}
	if len(accounts) == 0 {
		return ethcommon.Address{}, ErrNoAccount
	}
	return accounts[0], nil
}

type txArgs struct {
	From  ethcommon.Address `json:"from"`
	To    ethcommon.Address `json:"to"`
	Value *hexutil.Big      `json:"value,omitempty"`
	Gas   *hexutil.Uint64   `json:"gas,omitempty"`
	Data  hexutil.Bytes     `json:"data,omitempty"`
}

func (p *Provider) send(ctx context.Context, args txArgs) (PendingTx, error) {
	from, ok, err := p.ConnectedAccount(ctx)
	if err != nil {
		return PendingTx{}, err
	}
	if !ok {
		return PendingTx{}, ErrNoAccount
	}
	args.From = from

	var hash ethcommon.Hash
	if err := p.call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return PendingTx{}, err
	}

	p.logger.Debug(ctx, "transaction submitted", "hash", hash.Hex(), "to", args.To.Hex())
	return PendingTx{Hash: hash, From: from, To: args.To}, nil
}

// SubmitTransfer sends wei from the connected account to to.
func (p *Provider) SubmitTransfer(ctx context.Context, to ethcommon.Address, wei *big.Int) (PendingTx, error) {
	return p.send(ctx, txArgs{To: to, Value: (*hexutil.Big)(wei)})
}

func (p *Provider) SubmitContractCall(ctx context.Context, to ethcommon.Address, data []byte, gas uint64) (PendingTx, error) {
	args := txArgs{To: to, Data: data}
	if gas > 0 {
		g := hexutil.Uint64(gas)
		args.Gas = &g
	}
	return p.send(ctx, args)
}

// AwaitConfirmation polls for the receipt of tx. It has no deadline of its
// own; callers bound it through ctx.
func (p *Provider) AwaitConfirmation(ctx context.Context, tx PendingTx) error {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		receipt, err := p.eth.TransactionReceipt(ctx, tx.Hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s", ErrReverted, tx.Hash.Hex())
			}
			p.logger.Debug(ctx, "transaction confirmed", "hash", tx.Hash.Hex(), "block", receipt.BlockNumber)
			return nil
		case errors.Is(err, ethereum.NotFound):
		default:
			return fmt.Errorf("receipt %s: %w", tx.Hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SignMessage asks the wallet for a personal_sign signature over msg.
func (p *Provider) SignMessage(ctx context.Context, account ethcommon.Address, msg string) (string, error) {
	var sig hexutil.Bytes
	if err := p.call(ctx, &sig, "personal_sign", hexutil.Bytes(msg), account); err != nil {
		return "", err
	}
	return sig.String(), nil
}
