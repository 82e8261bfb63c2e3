package query

import "propcatalog/internal/store"

// Mode selects which enrichment shape to build.
type Mode int

const (
	ListMode Mode = iota
	DetailMode
)

// Join aliases attached to the property document.
const (
	asOwner       = "owner"
	asMainImage   = "mainImage"
	asOtherImages = "otherImages"
	asLastTrace   = "lastTrace"
	asTraces      = "traces"
)

// Projected row columns.
const (
	colIDProperty     = "idProperty"
	colName           = "name"
	colAddress        = "address"
	colPrice          = "price"
	colCodeInternal   = "codeInternal"
	colYear           = "year"
	colIDOwner        = "idOwner"
	colOwnerID        = "ownerId"
	colOwnerName      = "ownerName"
	colMainImageURL   = "mainImageUrl"
	colOtherImageURLs = "otherImageUrls"
	colLastSaleDate   = "lastSaleDate"
	colLastSaleValue  = "lastSaleValue"
	colSalesCount     = "salesCount"
)

func ownerLookup() store.LookupOne {
	return store.LookupOne{
		From:         store.Owners,
		LocalField:   fieldIDOwner,
		ForeignField: "_id",
		As:           asOwner,
	}
}

// mainImageLookup picks the enabled image. Should the enabled-uniqueness
// index ever be violated, the lowest image _id wins.
func mainImageLookup() store.LookupOne {
	return store.LookupOne{
		From:         store.PropertyImages,
		LocalField:   fieldID,
		ForeignField: "idProperty",
		As:           asMainImage,
		Where:        []store.Predicate{store.Eq{Field: "enabled", Value: true}},
		OrderBy:      []store.SortKey{{Field: "_id"}},
	}
}

// EnrichmentStages returns the join stages for mode. Every join is a left
// join: a missing owner, image or trace leaves its alias absent or empty.
func EnrichmentStages(mode Mode) []store.Stage {
	stages := []store.Stage{ownerLookup(), mainImageLookup()}
	if mode == ListMode {
		return stages
	}

	return append(stages,
		store.LookupMany{
			From:         store.PropertyImages,
			LocalField:   fieldID,
			ForeignField: "idProperty",
			As:           asOtherImages,
			Where:        []store.Predicate{store.Ne{Field: "enabled", Value: true}},
			Fields:       []string{"file"},
		},
		store.LookupOne{
			From:         store.PropertyTraces,
			LocalField:   fieldID,
			ForeignField: "idProperty",
			As:           asLastTrace,
			OrderBy:      []store.SortKey{{Field: "dateSale", Desc: true}, {Field: "_id", Desc: true}},
		},
		store.LookupMany{
			From:         store.PropertyTraces,
			LocalField:   fieldID,
			ForeignField: "idProperty",
			As:           asTraces,
			Fields:       []string{"_id"},
		},
	)
}

// Projection returns the output shape for mode.
func Projection(mode Mode) store.Project {
	fields := []store.Field{
		{Name: colIDProperty, Expr: store.Path(fieldID), Kind: store.KindString},
		{Name: colName, Expr: store.Path(fieldName), Kind: store.KindString},
		{Name: colAddress, Expr: store.Path(fieldAddress), Kind: store.KindString},
		{Name: colPrice, Expr: store.Path(fieldPrice), Kind: store.KindDecimal},
		{Name: colOwnerName, Expr: store.Path(asOwner + ".name"), Kind: store.KindString},
		{Name: colMainImageURL, Expr: store.Path(asMainImage + ".file"), Kind: store.KindString},
	}

	if mode == ListMode {
		return store.Project{Fields: append(fields,
			store.Field{Name: colIDOwner, Expr: store.Path(fieldIDOwner), Kind: store.KindString},
		)}
	}

	return store.Project{Fields: append(fields,
		store.Field{Name: colCodeInternal, Expr: store.Path(fieldCodeInternal), Kind: store.KindString},
		store.Field{Name: colYear, Expr: store.Path(fieldYear), Kind: store.KindInt},
		store.Field{Name: colOwnerID, Expr: store.Path(asOwner + "._id"), Kind: store.KindString},
		store.Field{Name: colOtherImageURLs, Expr: store.Pluck{Path: asOtherImages, Field: "file"}, Kind: store.KindStringList},
		store.Field{Name: colLastSaleDate, Expr: store.Path(asLastTrace + ".dateSale"), Kind: store.KindTime},
		store.Field{Name: colLastSaleValue, Expr: store.Path(asLastTrace + ".value"), Kind: store.KindDecimal},
		store.Field{Name: colSalesCount, Expr: store.Count(asTraces), Kind: store.KindInt},
	)}
}
