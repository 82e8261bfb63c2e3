package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcatalog/internal/model"
	"propcatalog/internal/service"
)

type MockOwnerService struct {
	mock.Mock
}

func (m *MockOwnerService) Create(ctx context.Context, in service.CreateOwnerInput) (*model.Owner, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Owner), args.Error(1)
}
