package memory

import (
	"context"
	"time"

	"propcatalog/internal/model"
	"propcatalog/internal/repository"
	"propcatalog/internal/store"
	memstore "propcatalog/internal/store/memory"
)

// OwnerMemory keeps owners in an in-process store.
type OwnerMemory struct {
	store *memstore.Store
}

func NewOwnerMemory(s *memstore.Store) *OwnerMemory {
	return &OwnerMemory{store: s}
}

var _ repository.OwnerRepository = (*OwnerMemory)(nil)

func (r *OwnerMemory) Exists(ctx context.Context, name string, birthday *time.Time) (bool, error) {
	n, err := r.store.Count(ctx, store.Owners, repository.OwnerMatch(name, birthday))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OwnerMemory) Create(ctx context.Context, owner *model.Owner) error {
	if err := store.ContextError(ctx); err != nil {
		return err
	}
	doc := memstore.Document{"_id": owner.IDOwner, "name": owner.Name}
	if owner.Address != nil {
		doc["address"] = *owner.Address
	}
	if owner.Photo != nil {
		doc["photo"] = *owner.Photo
	}
	if owner.Birthday != nil {
		doc["birthday"] = *owner.Birthday
	}
	return r.store.InsertUnique(store.Owners, doc)
}
