package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// ListingRepository executes discovery queries against a store. Implementations
// must apply the ordering exactly as given, including the trailing id term, and
// must apply counter increments atomically in the store.
type ListingRepository interface {
	// FindByQuery returns the window of matching listings and the total match count.
	FindByQuery(ctx context.Context, q discovery.Query) ([]*domain.Listing, int64, error)
	// FindTop returns at most limit matching listings in the given order.
	FindTop(ctx context.Context, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error)
	// FindByID returns domain.ErrListingNotFound when no listing has the id.
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)
	// IncrementViewCount adds one to the view counter. found is false when no listing has the id.
	IncrementViewCount(ctx context.Context, id int64) (found bool, err error)
	IncrementInquiryCount(ctx context.Context, id int64) (found bool, err error)
	// NextID reserves a fresh listing id.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, l *domain.Listing) error
}
