package domain

import (
	"context"
	"time"
)

// ListingCache keeps single-listing lookups close to the service.
// A miss is reported as (nil, nil).
type ListingCache interface {
	GetListing(ctx context.Context, id int64) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id int64) error
}

// EventPublisher emits domain events for other services.
type EventPublisher interface {
	PublishListingViewed(ctx context.Context, id int64, at time.Time) error
}
