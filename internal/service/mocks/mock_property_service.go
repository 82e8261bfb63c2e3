package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcatalog/internal/query"
)

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Search(ctx context.Context, req query.SearchRequest) (*query.PagedResult[query.PropertyListItem], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.PagedResult[query.PropertyListItem]), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id string) (*query.PropertyDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.PropertyDetail), args.Error(1)
}
