package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is a persisted listing. Price is an exact decimal and is stored
// as Decimal128 through the store's codec registry.
type Property struct {
	IDProperty   string          `bson:"_id"`
	Name         string          `bson:"name"`
	Address      string          `bson:"address"`
	Price        decimal.Decimal `bson:"price"`
	CodeInternal string          `bson:"codeInternal"`
	Year         int             `bson:"year"`
	IDOwner      string          `bson:"idOwner,omitempty"`
}

// PropertyImage references an image file. At most one image per property
// is enabled; it is the property's main image.
type PropertyImage struct {
	IDPropertyImage string `bson:"_id"`
	IDProperty      string `bson:"idProperty"`
	File            string `bson:"file"`
	Enabled         bool   `bson:"enabled"`
}

// PropertyTrace records one sale of a property.
type PropertyTrace struct {
	IDPropertyTrace string          `bson:"_id"`
	IDProperty      string          `bson:"idProperty"`
	DateSale        time.Time       `bson:"dateSale"`
	Name            string          `bson:"name"`
	Value           decimal.Decimal `bson:"value"`
	Tax             decimal.Decimal `bson:"tax"`
}
