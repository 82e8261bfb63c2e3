package query

import (
	"time"

	"github.com/shopspring/decimal"

	"propcatalog/internal/store"
)

// PagedResult is one page of items plus the total count of the filtered set.
type PagedResult[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// PropertyListItem is the search result shape. Decimals marshal as JSON
// strings so no precision is lost.
type PropertyListItem struct {
	IDProperty   string          `json:"idProperty"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	Price        decimal.Decimal `json:"price"`
	IDOwner      *string         `json:"idOwner"`
	OwnerName    *string         `json:"ownerName"`
	MainImageURL *string         `json:"mainImageUrl"`
}

// OwnerSummary identifies the joined owner of a property.
type OwnerSummary struct {
	IDOwner string `json:"idOwner"`
	Name    string `json:"name"`
}

// PropertyDetail is the single-property shape.
type PropertyDetail struct {
	IDProperty     string           `json:"idProperty"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	Price          decimal.Decimal  `json:"price"`
	CodeInternal   string           `json:"codeInternal"`
	Year           int              `json:"year"`
	Owner          *OwnerSummary    `json:"owner"`
	MainImageURL   *string          `json:"mainImageUrl"`
	OtherImageURLs []string         `json:"otherImageUrls"`
	LastSaleDate   *time.Time       `json:"lastSaleDate"`
	LastSaleValue  *decimal.Decimal `json:"lastSaleValue"`
	SalesCount     int              `json:"salesCount"`
}

// ProjectListItem converts a list-mode row.
func ProjectListItem(row store.Row) (PropertyListItem, error) {
	var (
		item PropertyListItem
		err  error
	)
	if item.IDProperty, err = requiredString(row, colIDProperty); err != nil {
		return PropertyListItem{}, err
	}
	if item.Name, err = requiredString(row, colName); err != nil {
		return PropertyListItem{}, err
	}
	if item.Address, err = requiredString(row, colAddress); err != nil {
		return PropertyListItem{}, err
	}
	if item.Price, err = requiredDecimal(row, colPrice); err != nil {
		return PropertyListItem{}, err
	}
	item.IDOwner = optionalString(row, colIDOwner)
	item.OwnerName = optionalString(row, colOwnerName)
	item.MainImageURL = optionalString(row, colMainImageURL)
	return item, nil
}

// ProjectDetail converts a detail-mode row.
func ProjectDetail(row store.Row) (PropertyDetail, error) {
	var (
		d   PropertyDetail
		err error
	)
	if d.IDProperty, err = requiredString(row, colIDProperty); err != nil {
		return PropertyDetail{}, err
	}
	if d.Name, err = requiredString(row, colName); err != nil {
		return PropertyDetail{}, err
	}
	if d.Address, err = requiredString(row, colAddress); err != nil {
		return PropertyDetail{}, err
	}
	if d.Price, err = requiredDecimal(row, colPrice); err != nil {
		return PropertyDetail{}, err
	}
	if d.CodeInternal, err = requiredString(row, colCodeInternal); err != nil {
		return PropertyDetail{}, err
	}
	year := row.Get(colYear)
	if year.Presence != store.Present {
		return PropertyDetail{}, malformed(colYear)
	}
	d.Year = int(year.Int)

	// A joined owner without a name still identifies the owner.
	if ownerID := optionalString(row, colOwnerID); ownerID != nil {
		d.Owner = &OwnerSummary{IDOwner: *ownerID}
		if name := optionalString(row, colOwnerName); name != nil {
			d.Owner.Name = *name
		}
	}

	d.MainImageURL = optionalString(row, colMainImageURL)

	d.OtherImageURLs = []string{}
	if others := row.Get(colOtherImageURLs); others.Presence == store.Present {
		d.OtherImageURLs = append(d.OtherImageURLs, others.List...)
	}

	if v := row.Get(colLastSaleDate); v.Presence == store.Present {
		t := v.Time.UTC()
		d.LastSaleDate = &t
	}
	if v := row.Get(colLastSaleValue); v.Presence == store.Present {
		dec := v.Dec
		d.LastSaleValue = &dec
	}
	if v := row.Get(colSalesCount); v.Presence == store.Present {
		d.SalesCount = int(v.Int)
	}

	return d, nil
}

func requiredString(row store.Row, name string) (string, error) {
	v := row.Get(name)
	if v.Presence != store.Present {
		return "", malformed(name)
	}
	return v.Str, nil
}

func requiredDecimal(row store.Row, name string) (decimal.Decimal, error) {
	v := row.Get(name)
	if v.Presence != store.Present {
		return decimal.Decimal{}, malformed(name)
	}
	return v.Dec, nil
}

// optionalString maps both Absent and Null to nil.
func optionalString(row store.Row, name string) *string {
	v := row.Get(name)
	if v.Presence != store.Present {
		return nil
	}
	s := v.Str
	return &s
}
