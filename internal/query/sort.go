package query

import (
	"strings"

	"propcatalog/internal/store"
)

var sortFields = map[string]string{
	"name":  fieldName,
	"price": fieldPrice,
	"year":  fieldYear,
}

// ResolveSort maps a sort key and direction to an ordering. Unknown or empty
// keys fall back to name ascending regardless of direction. Ties are broken
// by _id ascending so identical queries page identically.
func ResolveSort(sortBy, direction string) store.Sort {
	field, ok := sortFields[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return store.Sort{Keys: []store.SortKey{
			{Field: fieldName},
			{Field: fieldID},
		}}
	}

	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")
	return store.Sort{Keys: []store.SortKey{
		{Field: field, Desc: desc},
		{Field: fieldID},
	}}
}
