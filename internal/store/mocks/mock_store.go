package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcatalog/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Aggregate(ctx context.Context, collection string, p store.Pipeline) ([]store.Row, error) {
	args := m.Called(ctx, collection, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Row), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context, collection string, match store.Match) (int64, error) {
	args := m.Called(ctx, collection, match)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
