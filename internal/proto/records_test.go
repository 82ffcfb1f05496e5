package proto

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRecordStruct_RoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := &models.Record{
		ID: "id-1", Title: "t", Author: "0x1234...abcd", Abstract: "a",
		Category: models.CategoryBiology, Price: decimal.RequireFromString("0.25"),
		Findings: "f", PayeeAddress: "0xabc", Date: "5/1/2024", CreatedAt: created,
	}

	out, err := StructToRecord(RecordToStruct(in))
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Category, out.Category)
	assert.True(t, in.Price.Equal(out.Price))
	assert.True(t, created.Equal(out.CreatedAt))
}

func TestListToRecords_KeepsOrder(t *testing.T) {
	records := []*models.Record{
		{ID: "new", Price: decimal.NewFromInt(1)},
		{ID: "old", Price: decimal.NewFromInt(2)},
	}
	out, err := ListToRecords(RecordsToList(records))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "new", out[0].ID)
	assert.Equal(t, "old", out[1].ID)
}

func TestStructToRecord_BadPrice(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{FieldPrice: structpb.NewStringValue("cheap")}}
	_, err := StructToRecord(s)
	require.ErrorIs(t, err, common.ErrInvalidPrice)
}

func TestDraftToStruct_OmitsUnsetOptionals(t *testing.T) {
	s := DraftToStruct(models.Draft{Title: "t", Abstract: "a", Findings: "f"})

	_, hasCategory := s.Fields[FieldCategory]
	_, hasPrice := s.Fields[FieldPrice]
	assert.False(t, hasCategory)
	assert.False(t, hasPrice)

	d, err := StructToDraft(s)
	require.NoError(t, err)
	assert.False(t, d.Price.Valid)
	assert.Equal(t, models.Category(""), d.Category)
}

func TestDraftToStruct_CarriesPrice(t *testing.T) {
	in := models.Draft{Title: "t", Price: decimal.NewNullDecimal(decimal.RequireFromString("0.003")), Category: models.CategoryAIML}
	d, err := StructToDraft(DraftToStruct(in))
	require.NoError(t, err)
	require.True(t, d.Price.Valid)
	assert.Equal(t, "0.003", d.Price.Decimal.String())
	assert.Equal(t, models.CategoryAIML, d.Category)
}

func TestAdminProofAndUploadSlot(t *testing.T) {
	p := AdminProof{Address: "0xa", Message: "m", Signature: "0xsig"}
	assert.Equal(t, p, StructToAdminProof(p.ToStruct()))

	u := UploadSlot{Key: "k", URL: "http://u", TokenURI: "s3://b/k"}
	assert.Equal(t, u, StructToUploadSlot(u.ToStruct()))
	assert.Equal(t, UploadSlot{}, StructToUploadSlot(nil))
}
