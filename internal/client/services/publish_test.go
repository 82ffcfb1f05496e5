package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
	pb "github.com/dmitrijs2005/failvault/internal/proto"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractAddr = "0x2A5799Cc7E9708b39D14014C143451ABf4938fBd"

type uploadSink struct {
	mu          sync.Mutex
	body        []byte
	contentType string
	status      int
}

func (u *uploadSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.body, _ = io.ReadAll(r.Body)
	u.contentType = r.Header.Get("Content-Type")
	if u.status != 0 {
		w.WriteHeader(u.status)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newPublishFixture(t *testing.T, gw *fakeGateway) (*publisher, *fakeClient, *uploadSink) {
	t.Helper()
	sink := &uploadSink{}
	srv := httptest.NewServer(sink)
	t.Cleanup(srv.Close)

	fc := &fakeClient{Slot: pb.UploadSlot{
		Key:      "metadata/2026/01/02/x.json",
		URL:      srv.URL + "/metadata/2026/01/02/x.json",
		TokenURI: "s3://bucket/metadata/2026/01/02/x.json",
	}}

	var s *wallet.Session
	if gw != nil {
		s = wallet.NewSession(gw)
	} else {
		s = wallet.NewSession(nil)
	}
	p := NewPublisher(fc, s, contractAddr, 0, logging.Nop{}).(*publisher)
	p.now = func() time.Time { return time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC) }
	return p, fc, sink
}

func validInput() PublishInput {
	return PublishInput{Title: "Palladium", Abstract: "No reaction", Findings: "raw data"}
}

func TestPublish_HappyPath(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr)}
	p, fc, sink := newPublishFixture(t, gw)

	var statuses []string
	r, err := p.Publish(context.Background(), validInput(), func(s string) { statuses = append(statuses, s) })
	require.NoError(t, err)

	// defaults applied at the boundary
	assert.Equal(t, models.CategoryPhysics, r.Category)
	assert.Equal(t, "0.0001", r.Price.String())

	require.Len(t, fc.Created, 1)
	d := fc.Created[0]
	account := ethcommon.HexToAddress(userAddr).Hex()
	assert.Equal(t, account, d.PayeeAddress)
	assert.Equal(t, models.ShortAddress(account), d.Author)
	assert.Equal(t, "2026-01-02", d.Date)
	assert.Equal(t, "s3://bucket/metadata/2026/01/02/x.json", d.TokenURI)
	assert.Equal(t, "raw data", d.Findings)
	assert.False(t, d.Price.Valid)

	require.Len(t, gw.Contracts, 1)
	assert.Equal(t, ethcommon.HexToAddress(contractAddr), gw.Contracts[0].To)
	assert.Equal(t, uint64(wallet.MintGasLimit), gw.Contracts[0].Gas)
	wantData, err := wallet.PackMint(d.TokenURI)
	require.NoError(t, err)
	assert.Equal(t, wantData, gw.Contracts[0].Data)

	assert.Equal(t, "application/json", sink.contentType)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(sink.body, &doc))
	assert.Equal(t, "Palladium", doc["name"])
	assert.NotContains(t, string(sink.body), "raw data")

	assert.Equal(t, []string{"RequestAccountAccess", "SubmitContractCall", "AwaitConfirmation"}, gw.Calls)
	assert.Equal(t, "Success!", statuses[len(statuses)-1])
}

func TestPublish_ValidationFailsFirst(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true}
	p, fc, _ := newPublishFixture(t, gw)

	in := validInput()
	in.Findings = "   "
	_, err := p.Publish(context.Background(), in, nil)

	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, gw.Calls)
	assert.Empty(t, fc.Created)
}

func TestPublish_NoWallet(t *testing.T) {
	p, fc, sink := newPublishFixture(t, nil)

	_, err := p.Publish(context.Background(), validInput(), nil)
	require.ErrorIs(t, err, wallet.ErrNoWallet)
	assert.Empty(t, fc.Created)
	assert.Nil(t, sink.body)
}

func TestPublish_MintRejectedCreatesNothing(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true, SubmitErr: wallet.ErrRejected}
	p, fc, _ := newPublishFixture(t, gw)
	_, err := p.session.Refresh(context.Background())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), validInput(), nil)
	require.ErrorIs(t, err, wallet.ErrRejected)
	assert.Empty(t, fc.Created)
}

func TestPublish_ConfirmationFailure(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true, AwaitErr: wallet.ErrReverted}
	p, fc, _ := newPublishFixture(t, gw)

	_, err := p.Publish(context.Background(), validInput(), nil)
	require.ErrorIs(t, err, wallet.ErrReverted)
	assert.Empty(t, fc.Created)
}

func TestPublish_UploadFailure(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true}
	p, fc, sink := newPublishFixture(t, gw)
	sink.status = http.StatusForbidden

	_, err := p.Publish(context.Background(), validInput(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload metadata")
	assert.Empty(t, gw.Contracts)
	assert.Empty(t, fc.Created)
}

func TestPublish_SlotError(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr), Connected: true}
	p, fc, _ := newPublishFixture(t, gw)
	fc.SlotErr = errors.New("s3 down")

	_, err := p.Publish(context.Background(), validInput(), nil)
	require.Error(t, err)
	assert.Empty(t, gw.Contracts)
}

func TestPublish_BadDraftChargesNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PublishInput)
		want   error
	}{
		{"negative price", func(in *PublishInput) {
			in.Price = decimal.NewNullDecimal(decimal.NewFromInt(-1))
		}, common.ErrInvalidPrice},
		{"finer than one wei", func(in *PublishInput) {
			in.Price = decimal.NewNullDecimal(decimal.RequireFromString("0.0000000000000000001"))
		}, common.ErrInvalidPrice},
		{"unknown category", func(in *PublishInput) { in.Category = "Astrology" }, common.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr)}
			p, fc, sink := newPublishFixture(t, gw)

			in := validInput()
			tt.mutate(&in)
			_, err := p.Publish(context.Background(), in, nil)

			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, gw.Calls)
			assert.Empty(t, gw.Contracts)
			assert.Nil(t, sink.body)
			assert.Empty(t, fc.Created)
		})
	}
}

func TestPublish_CategoryCanonicalized(t *testing.T) {
	gw := &fakeGateway{Account: ethcommon.HexToAddress(userAddr)}
	p, fc, sink := newPublishFixture(t, gw)

	in := validInput()
	in.Category = "ai/ml"
	_, err := p.Publish(context.Background(), in, nil)
	require.NoError(t, err)

	require.Len(t, fc.Created, 1)
	assert.Equal(t, models.CategoryAIML, fc.Created[0].Category)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(sink.body, &doc))
	assert.Equal(t, "AI/ML", doc["category"])
}
