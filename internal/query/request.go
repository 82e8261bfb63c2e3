package query

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchRequest is a partially filled property search. Nil fields are absent.
type SearchRequest struct {
	Name          *string
	Address       *string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	YearMin       *int
	YearMax       *int
	OwnerID       *string
	SortBy        string
	SortDirection string
	Page          *int
	PageSize      *int
}

// Paging is the normalized page window.
type Paging struct {
	Page     int
	PageSize int
	Skip     int64
}

// Paginate applies defaults and rejects out-of-range values. Values are
// never clamped.
func Paginate(page, pageSize *int) (Paging, error) {
	p := DefaultPage
	if page != nil {
		p = *page
	}
	ps := DefaultPageSize
	if pageSize != nil {
		ps = *pageSize
	}

	if p <= 0 {
		return Paging{}, invalid("page", "must be at least 1")
	}
	if ps <= 0 || ps > MaxPageSize {
		return Paging{}, invalid("pageSize", "must be between 1 and 100")
	}
	if int64(p-1) > math.MaxInt64/int64(ps) {
		return Paging{}, invalid("page", "is too large")
	}

	return Paging{
		Page:     p,
		PageSize: ps,
		Skip:     int64(p-1) * int64(ps),
	}, nil
}

// Validate checks range ordering and paging bounds.
func (r SearchRequest) Validate() error {
	if r.PriceMin != nil && r.PriceMax != nil && r.PriceMin.GreaterThan(*r.PriceMax) {
		return invalid("priceMin", "cannot be greater than priceMax")
	}
	if r.PriceMin != nil && !storableDecimal(*r.PriceMin) {
		return invalid("priceMin", "has too many digits or is out of range")
	}
	if r.PriceMax != nil && !storableDecimal(*r.PriceMax) {
		return invalid("priceMax", "has too many digits or is out of range")
	}
	if r.YearMin != nil && r.YearMax != nil && *r.YearMin > *r.YearMax {
		return invalid("yearMin", "cannot be greater than yearMax")
	}
	_, err := Paginate(r.Page, r.PageSize)
	return err
}

// text returns the trimmed value of s and whether it is non-blank.
func text(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	t := strings.TrimSpace(*s)
	return t, t != ""
}

// Bounds of a 128-bit IEEE 754 decimal, the widest number the document
// store compares exactly.
const (
	maxDecimalDigits   = 34
	minDecimalExponent = -6176
	maxDecimalExponent = 6111
)

// storableDecimal reports whether d fits a 128-bit decimal without rounding.
func storableDecimal(d decimal.Decimal) bool {
	coef := new(big.Int).Abs(d.Coefficient())
	exp := int64(d.Exponent())
	if coef.Sign() == 0 {
		return true
	}
	ten := big.NewInt(10)
	q, m := new(big.Int), new(big.Int)
	for {
		q.QuoRem(coef, ten, m)
		if m.Sign() != 0 {
			break
		}
		coef.Set(q)
		exp++
	}
	digits := int64(len(coef.String()))
	return digits <= maxDecimalDigits &&
		exp >= minDecimalExponent &&
		exp-(maxDecimalDigits-digits) <= maxDecimalExponent
}
