// Package models defines the catalog record shared by the server and the
// client, and the rules that turn a publish draft into a stored record.
package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// weiExponent converts ether amounts to wei.
const weiExponent = 18

// Record is one published experiment. All optional attributes are already
// resolved; see Draft.Resolve.
type Record struct {
	ID           string
	Title        string
	Author       string
	Abstract     string
	Category     Category
	Price        decimal.Decimal // ether
	Findings     string
	PayeeAddress string
	Date         string
	TokenURI     string
	CreatedAt    time.Time
}

// Draft carries the fields a publisher supplies. Zero values of the optional
// fields mean "use the default":
//
//	Category      -> DefaultCategory ("Physics")
//	Price         -> common.DefaultPrice ("0.0001")
//	PayeeAddress  -> the operator address
type Draft struct {
	Title        string
	Author       string
	Abstract     string
	Findings     string
	Category     Category
	Price        decimal.NullDecimal
	PayeeAddress string
	Date         string
	TokenURI     string
}

// DefaultPriceValue is common.DefaultPrice as a decimal.
func DefaultPriceValue() decimal.Decimal {
	return decimal.RequireFromString(common.DefaultPrice)
}

// Validate checks the author-supplied fields and returns the category and
// price the record will carry. Prices must be whole wei.
func (d Draft) Validate() (Category, decimal.Decimal, error) {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Abstract) == "" || strings.TrimSpace(d.Findings) == "" {
		return "", decimal.Decimal{}, fmt.Errorf("%w: title, abstract and findings are required", common.ErrorValidation)
	}

	cat := DefaultCategory
	if d.Category != "" {
		c, err := ParseCategory(string(d.Category))
		if err != nil {
			return "", decimal.Decimal{}, err
		}
		cat = c
	}

	price := DefaultPriceValue()
	if d.Price.Valid {
		price = d.Price.Decimal
	}
	if price.IsNegative() || !price.Shift(weiExponent).IsInteger() {
		return "", decimal.Decimal{}, fmt.Errorf("%w: %s", common.ErrInvalidPrice, price)
	}
	return cat, price, nil
}

// Resolve validates the draft and applies defaults, producing a record
// ready to be stored. ID and CreatedAt are left to the repository.
func (d Draft) Resolve(operator string) (*Record, error) {
	cat, price, err := d.Validate()
	if err != nil {
		return nil, err
	}

	payee, err := ResolvePayee(d.PayeeAddress, operator)
	if err != nil {
		return nil, err
	}

	author := d.Author
	if author == "" {
		author = ShortAddress(payee)
	}

	return &Record{
		Title:        d.Title,
		Author:       author,
		Abstract:     d.Abstract,
		Category:     cat,
		Price:        price,
		Findings:     d.Findings,
		PayeeAddress: payee,
		Date:         d.Date,
		TokenURI:     d.TokenURI,
	}, nil
}

// ResolvePayee returns payee, or operator when payee is empty, and checks
// that the result is a hex account address.
func ResolvePayee(payee, operator string) (string, error) {
	if payee == "" {
		payee = operator
	}
	if !ethcommon.IsHexAddress(payee) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidAddress, payee)
	}
	return payee, nil
}

// PriceWei converts the ether price to wei. Prices finer than one wei are
// rejected instead of being rounded.
func (r *Record) PriceWei() (*big.Int, error) {
	wei := r.Price.Shift(weiExponent)
	if !wei.IsInteger() || wei.IsNegative() {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidPrice, r.Price)
	}
	return wei.BigInt(), nil
}

// ShortAddress renders 0x1234...abcd style labels.
func ShortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// Stored holds a row as read back from storage, where columns added after
// the first release may be NULL.
type Stored struct {
	Record
	Category     *string
	Price        *string
	PayeeAddress *string
}

// ResolveStored fills missing stored attributes with the same defaults
// Draft.Resolve applies. An unknown category read back from storage falls
// back to the default instead of failing the whole listing.
func ResolveStored(s Stored, operator string) *Record {
	r := s.Record
	r.Category = DefaultCategory
	if s.Category != nil {
		if c, err := ParseCategory(*s.Category); err == nil {
			r.Category = c
		}
	}
	r.Price = DefaultPriceValue()
	if s.Price != nil {
		if p, err := decimal.NewFromString(*s.Price); err == nil && !p.IsNegative() {
			r.Price = p
		}
	}
	r.PayeeAddress = operator
	if s.PayeeAddress != nil && *s.PayeeAddress != "" {
		r.PayeeAddress = *s.PayeeAddress
	}
	if r.Author == "" {
		r.Author = ShortAddress(r.PayeeAddress)
	}
	return &r
}
