// Package repository contains the owner write path. Implementations live in
// subpackages next to the store they persist to.
package repository

import (
	"context"
	"time"

	"propcatalog/internal/model"
	"propcatalog/internal/store"
)

// OwnerRepository persists owners. No validation happens here; callers pass
// normalized records.
type OwnerRepository interface {
	// Exists reports whether an owner with name exists. A nil birthday
	// matches on name alone.
	Exists(ctx context.Context, name string, birthday *time.Time) (bool, error)

	// Create inserts owner as given.
	Create(ctx context.Context, owner *model.Owner) error
}

// OwnerMatch is the duplicate check shared by every implementation.
func OwnerMatch(name string, birthday *time.Time) store.Match {
	preds := []store.Predicate{store.Eq{Field: "name", Value: name}}
	if birthday != nil {
		preds = append(preds, store.Eq{Field: "birthday", Value: *birthday})
	}
	return store.Match{Predicates: preds}
}
