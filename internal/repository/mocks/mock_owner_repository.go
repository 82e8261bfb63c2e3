package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"propcatalog/internal/model"
)

type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) Exists(ctx context.Context, name string, birthday *time.Time) (bool, error) {
	args := m.Called(ctx, name, birthday)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnerRepository) Create(ctx context.Context, owner *model.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}
