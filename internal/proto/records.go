package proto

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names used on the wire.
const (
	FieldID           = "id"
	FieldTitle        = "title"
	FieldAuthor       = "author"
	FieldAbstract     = "abstract"
	FieldCategory     = "category"
	FieldPrice        = "price"
	FieldFindings     = "findings"
	FieldPayeeAddress = "payee_address"
	FieldDate         = "date"
	FieldTokenURI     = "token_uri"
	FieldCreatedAt    = "created_at"

	FieldAddress   = "address"
	FieldMessage   = "message"
	FieldSignature = "signature"

	FieldKey = "key"
	FieldURL = "url"
)

func str(v string) *structpb.Value { return structpb.NewStringValue(v) }

func getString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// RecordToStruct encodes a stored record. Price travels as a decimal string.
func RecordToStruct(r *models.Record) *structpb.Struct {
	f := map[string]*structpb.Value{
		FieldID:           str(r.ID),
		FieldTitle:        str(r.Title),
		FieldAuthor:       str(r.Author),
		FieldAbstract:     str(r.Abstract),
		FieldCategory:     str(string(r.Category)),
		FieldPrice:        str(r.Price.String()),
		FieldFindings:     str(r.Findings),
		FieldPayeeAddress: str(r.PayeeAddress),
		FieldDate:         str(r.Date),
		FieldTokenURI:     str(r.TokenURI),
	}
	if !r.CreatedAt.IsZero() {
		f[FieldCreatedAt] = str(r.CreatedAt.UTC().Format(time.RFC3339Nano))
	}
	return &structpb.Struct{Fields: f}
}

func StructToRecord(s *structpb.Struct) (*models.Record, error) {
	r := &models.Record{
		ID:           getString(s, FieldID),
		Title:        getString(s, FieldTitle),
		Author:       getString(s, FieldAuthor),
		Abstract:     getString(s, FieldAbstract),
		Category:     models.Category(getString(s, FieldCategory)),
		Findings:     getString(s, FieldFindings),
		PayeeAddress: getString(s, FieldPayeeAddress),
		Date:         getString(s, FieldDate),
		TokenURI:     getString(s, FieldTokenURI),
	}

	price, err := decimal.NewFromString(getString(s, FieldPrice))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPrice, err)
	}
	r.Price = price

	if ts := getString(s, FieldCreatedAt); ts != "" {
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
	}
	return r, nil
}

// RecordsToList encodes records preserving their order.
func RecordsToList(records []*models.Record) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(records))
	for _, r := range records {
		values = append(values, structpb.NewStructValue(RecordToStruct(r)))
	}
	return &structpb.ListValue{Values: values}
}

func ListToRecords(l *structpb.ListValue) ([]*models.Record, error) {
	out := make([]*models.Record, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		r, err := StructToRecord(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// DraftToStruct encodes a publish draft. Optional fields left at their zero
// value are omitted so the server applies the defaults.
func DraftToStruct(d models.Draft) *structpb.Struct {
	f := map[string]*structpb.Value{
		FieldTitle:    str(d.Title),
		FieldAbstract: str(d.Abstract),
		FieldFindings: str(d.Findings),
	}
	optional := map[string]string{
		FieldAuthor:       d.Author,
		FieldCategory:     string(d.Category),
		FieldPayeeAddress: d.PayeeAddress,
		FieldDate:         d.Date,
		FieldTokenURI:     d.TokenURI,
	}
	for k, v := range optional {
		if v != "" {
			f[k] = str(v)
		}
	}
	if d.Price.Valid {
		f[FieldPrice] = str(d.Price.Decimal.String())
	}
	return &structpb.Struct{Fields: f}
}

func StructToDraft(s *structpb.Struct) (models.Draft, error) {
	d := models.Draft{
		Title:        getString(s, FieldTitle),
		Author:       getString(s, FieldAuthor),
		Abstract:     getString(s, FieldAbstract),
		Findings:     getString(s, FieldFindings),
		Category:     models.Category(getString(s, FieldCategory)),
		PayeeAddress: getString(s, FieldPayeeAddress),
		Date:         getString(s, FieldDate),
		TokenURI:     getString(s, FieldTokenURI),
	}
	if p := getString(s, FieldPrice); p != "" {
		price, err := decimal.NewFromString(p)
		if err != nil {
			return models.Draft{}, fmt.Errorf("%w: %q", common.ErrInvalidPrice, p)
		}
		d.Price = decimal.NewNullDecimal(price)
	}
	return d, nil
}

// AdminProof is a signed login message presented to IssueAdminToken.
type AdminProof struct {
	Address   string
	Message   string
	Signature string
}

func (p AdminProof) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldAddress:   str(p.Address),
		FieldMessage:   str(p.Message),
		FieldSignature: str(p.Signature),
	}}
}

func StructToAdminProof(s *structpb.Struct) AdminProof {
	return AdminProof{
		Address:   getString(s, FieldAddress),
		Message:   getString(s, FieldMessage),
		Signature: getString(s, FieldSignature),
	}
}

// UploadSlot is a presigned object storage location. TokenURI is the
// permanent address of the object once uploaded.
type UploadSlot struct {
	Key      string
	URL      string
	TokenURI string
}

func (u UploadSlot) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldKey:      str(u.Key),
		FieldURL:      str(u.URL),
		FieldTokenURI: str(u.TokenURI),
	}}
}

func StructToUploadSlot(s *structpb.Struct) UploadSlot {
	return UploadSlot{
		Key:      getString(s, FieldKey),
		URL:      getString(s, FieldURL),
		TokenURI: getString(s, FieldTokenURI),
	}
}
