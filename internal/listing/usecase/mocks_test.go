package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByQuery(ctx context.Context, q discovery.Query) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) FindTop(ctx context.Context, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error) {
	args := m.Called(ctx, p, o, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) IncrementViewCount(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) IncrementInquiryCount(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingCache) SetListing(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockListingCache) DeleteListing(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishListingViewed(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
