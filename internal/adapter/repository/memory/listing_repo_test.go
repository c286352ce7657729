package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, r *ListingRepository, n int) {
	t.Helper()
	published := now.Add(-time.Hour)
	for i := 1; i <= n; i++ {
		require.NoError(t, r.Insert(context.Background(), &domain.Listing{
			ID:          int64(i),
			Title:       "item",
			Price:       float64(i % 3),
			Status:      domain.StatusActive,
			PublishedAt: &published,
			CreatedAt:   now.Add(-time.Duration(i) * time.Minute),
		}))
	}
}

func TestListingRepository_FindByQueryWindows(t *testing.T) {
	r := NewListingRepository()
	seed(t, r, 7)

	q := discovery.Query{
		Predicate: discovery.Visible(now),
		Ordering:  discovery.ResolveSort("price", "asc", false),
		Window:    discovery.Paginate(2, 3),
	}
	items, total, err := r.FindByQuery(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, items, 3)
	// ordered: 3,6 (price 0) 1,4,7 (price 1) 2,5 (price 2)
	assert.Equal(t, []int64{4, 7, 2}, []int64{items[0].ID, items[1].ID, items[2].ID})

	q.Window = discovery.Paginate(9999, 3)
	items, total, err = r.FindByQuery(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListingRepository_ReturnsCopies(t *testing.T) {
	r := NewListingRepository()
	seed(t, r, 1)

	l, err := r.FindByID(context.Background(), 1)
	require.NoError(t, err)
	l.Title = "changed"

	again, err := r.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "item", again.Title)
}

func TestListingRepository_FindByIDMissing(t *testing.T) {
	_, err := NewListingRepository().FindByID(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingRepository_FindTop(t *testing.T) {
	r := NewListingRepository()
	seed(t, r, 5)

	items, err := r.FindTop(context.Background(), discovery.Visible(now), discovery.FeaturedOrdering(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)

	items, err = r.FindTop(context.Background(), discovery.Visible(now), discovery.FeaturedOrdering(), 50)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestListingRepository_ConcurrentIncrements(t *testing.T) {
	r := NewListingRepository()
	seed(t, r, 1)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := r.IncrementViewCount(context.Background(), 1)
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()

	l, err := r.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(n), l.ViewCount)

	found, err := r.IncrementInquiryCount(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListingRepository_InsertAndNextID(t *testing.T) {
	r := NewListingRepository()
	require.NoError(t, r.Insert(context.Background(), &domain.Listing{ID: 10}))
	assert.Error(t, r.Insert(context.Background(), &domain.Listing{ID: 10}))
	assert.Error(t, r.Insert(context.Background(), &domain.Listing{}))

	id, err := r.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, 1, r.Len())
}

func TestListingRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewListingRepository().FindByQuery(ctx, discovery.Query{})
	assert.ErrorIs(t, err, context.Canceled)
}
