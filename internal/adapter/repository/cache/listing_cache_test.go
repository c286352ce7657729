package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingKey(t *testing.T) {
	assert.Equal(t, "listing:42", listingKey(42))
}

func TestNewListingCacheWithClient_DefaultTTL(t *testing.T) {
	c := NewListingCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	defer c.Close()
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestListingCache_UnreachableServerIsAnErrorNotAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewListingCacheWithClient(client, time.Minute)
	defer c.Close()

	l, err := c.GetListing(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, l)

	assert.Error(t, c.SetListing(context.Background(), &domain.Listing{ID: 1}))
}

func TestNewListingCache_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewListingCache(ctx, Options{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
