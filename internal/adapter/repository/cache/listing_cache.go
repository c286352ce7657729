package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "listing:"
	DefaultTTL = 5 * time.Minute
)

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ListingCache stores single listings as JSON under "listing:<id>".
type ListingCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewListingCache(ctx context.Context, opts Options) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return NewListingCacheWithClient(client, opts.TTL), nil
}

func NewListingCacheWithClient(client redis.UniversalClient, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

func listingKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetListing returns (nil, nil) on a miss.
func (c *ListingCache) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get listing %d: %w", id, err)
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("redis: decode listing %d: %w", id, err)
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("redis: encode listing %d: %w", listing.ID, err)
	}
	return c.client.Set(ctx, listingKey(listing.ID), data, c.ttl).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id int64) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
