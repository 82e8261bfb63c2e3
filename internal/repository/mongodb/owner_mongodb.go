package mongodb

import (
	"context"
	"time"

	"propcatalog/internal/model"
	"propcatalog/internal/repository"
	"propcatalog/internal/store"
	mongostore "propcatalog/internal/store/mongodb"
)

// OwnerMongo is a MongoDB implementation of repository.OwnerRepository.
type OwnerMongo struct {
	adapter *mongostore.Adapter
}

// NewOwnerMongo creates a new OwnerMongo repository.
func NewOwnerMongo(adapter *mongostore.Adapter) *OwnerMongo {
	return &OwnerMongo{adapter: adapter}
}

var _ repository.OwnerRepository = (*OwnerMongo)(nil)

func (r *OwnerMongo) Exists(ctx context.Context, name string, birthday *time.Time) (bool, error) {
	n, err := r.adapter.Count(ctx, store.Owners, repository.OwnerMatch(name, birthday))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OwnerMongo) Create(ctx context.Context, owner *model.Owner) error {
	return r.adapter.InsertOne(ctx, store.Owners, owner)
}
