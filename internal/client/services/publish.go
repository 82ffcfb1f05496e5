package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/client"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/dmitrijs2005/failvault/internal/netx"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PublishInput is what the user types into the publish form.
type PublishInput struct {
	Title    string
	Abstract string
	Findings string
	Category models.Category
	Price    decimal.NullDecimal
}

// tokenMetadata is the public document the minted token points to. It
// never contains the findings.
type tokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Author      string `json:"author"`
	Date        string `json:"date"`
}

type Publisher interface {
	Publish(ctx context.Context, in PublishInput, status func(string)) (*models.Record, error)
}

type publisher struct {
	client   client.Client
	session  *wallet.Session
	contract ethcommon.Address
	timeout  time.Duration
	http     *http.Client
	logger   logging.Logger
	now      func() time.Time
}

// NewPublisher builds the publish flow. contract is the address of the
// experiment token contract.
func NewPublisher(c client.Client, s *wallet.Session, contract string, timeout time.Duration, l logging.Logger) Publisher {
	return &publisher{
		client:   c,
		session:  s,
		contract: ethcommon.HexToAddress(contract),
		timeout:  timeout,
		http:     http.DefaultClient,
		logger:   l.With("module", "publish"),
		now:      time.Now,
	}
}

// Publish uploads the public metadata, mints a token for it and stores the
// record. status receives a short line before each step.
func (p *publisher) Publish(ctx context.Context, in PublishInput, status func(string)) (*models.Record, error) {
	if status == nil {
		status = func(string) {}
	}

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Abstract) == "" || strings.TrimSpace(in.Findings) == "" {
		return nil, fmt.Errorf("%w: please fill all fields", common.ErrorValidation)
	}
	category, _, err := models.Draft{
		Title:    in.Title,
		Abstract: in.Abstract,
		Findings: in.Findings,
		Category: in.Category,
		Price:    in.Price,
	}.Validate()
	if err != nil {
		return nil, err
	}
	gw := p.session.Gateway()
	if gw == nil {
		return nil, wallet.ErrNoWallet
	}

	status("Initializing wallet...")
	acct := p.session.Current()
	if !acct.Connected {
		if acct, err = p.session.Connect(ctx); err != nil {
			return nil, err
		}
	}
	account := acct.Address.Hex()
	author := models.ShortAddress(account)
	date := p.now().Format(time.DateOnly)

	status("Uploading metadata...")
	slot, err := p.client.GetUploadSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("get upload slot: %w", err)
	}
	doc, err := json.Marshal(tokenMetadata{
		Name:        in.Title,
		Description: in.Abstract,
		Category:    string(category),
		Author:      author,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}
	if err := netx.UploadToPresignedURL(ctx, p.http, slot.URL, "application/json", doc); err != nil {
		return nil, fmt.Errorf("upload metadata: %w", err)
	}

	data, err := wallet.PackMint(slot.TokenURI)
	if err != nil {
		return nil, err
	}

	status("Confirm transaction in wallet...")
	tx, err := gw.SubmitContractCall(ctx, p.contract, data, wallet.MintGasLimit)
	if err != nil {
		return nil, err
	}

	status("Minting in progress...")
	if err := p.await(ctx, gw, tx); err != nil {
		return nil, fmt.Errorf("mint %s: %w", tx.Hash.Hex(), err)
	}

	status("Saving record...")
	rec, err := p.client.CreateRecord(ctx, models.Draft{
		Title:        in.Title,
		Author:       author,
		Abstract:     in.Abstract,
		Findings:     in.Findings,
		Category:     category,
		Price:        in.Price,
		PayeeAddress: account,
		Date:         date,
		TokenURI:     slot.TokenURI,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "record published", "id", rec.ID, "tx", tx.Hash.Hex(), "token_uri", slot.TokenURI)
	status("Success!")
	return rec, nil
}

func (p *publisher) await(ctx context.Context, gw wallet.Gateway, tx wallet.PendingTx) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return gw.AwaitConfirmation(ctx, tx)
}
