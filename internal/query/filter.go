package query

import "propcatalog/internal/store"

// Property document fields.
const (
	fieldID           = "_id"
	fieldName         = "name"
	fieldAddress      = "address"
	fieldPrice        = "price"
	fieldYear         = "year"
	fieldCodeInternal = "codeInternal"
	fieldIDOwner      = "idOwner"
)

// CompileFilter emits one predicate per present field of req, in a fixed
// order. Text fields become literal Contains predicates; ranges are inclusive.
func CompileFilter(req SearchRequest) store.Match {
	var preds []store.Predicate

	if name, ok := text(req.Name); ok {
		preds = append(preds, store.Contains{Field: fieldName, Text: name})
	}
	if addr, ok := text(req.Address); ok {
		preds = append(preds, store.Contains{Field: fieldAddress, Text: addr})
	}
	if req.PriceMin != nil {
		preds = append(preds, store.Gte{Field: fieldPrice, Value: *req.PriceMin})
	}
	if req.PriceMax != nil {
		preds = append(preds, store.Lte{Field: fieldPrice, Value: *req.PriceMax})
	}
	if req.YearMin != nil {
		preds = append(preds, store.Gte{Field: fieldYear, Value: *req.YearMin})
	}
	if req.YearMax != nil {
		preds = append(preds, store.Lte{Field: fieldYear, Value: *req.YearMax})
	}
	if owner, ok := text(req.OwnerID); ok {
		preds = append(preds, store.Eq{Field: fieldIDOwner, Value: owner})
	}

	return store.Match{Predicates: preds}
}
