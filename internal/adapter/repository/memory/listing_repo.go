package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// ListingRepository keeps listings in process memory. It evaluates predicates
// with discovery.Predicate.Matches and is used for local runs and tests.
type ListingRepository struct {
	mu       sync.RWMutex
	listings map[int64]*domain.Listing
	lastID   int64
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{listings: make(map[int64]*domain.Listing)}
}

func (r *ListingRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	if l == nil || l.ID <= 0 {
		return fmt.Errorf("memory: insert listing: invalid id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.listings[l.ID]; exists {
		return fmt.Errorf("memory: insert listing %d: already exists", l.ID)
	}
	r.listings[l.ID] = l.Clone()
	if l.ID > r.lastID {
		r.lastID = l.ID
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return l.Clone(), nil
}

func (r *ListingRepository) FindByQuery(ctx context.Context, q discovery.Query) ([]*domain.Listing, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	matched := r.match(q.Predicate, q.Ordering)
	total := int64(len(matched))

	start := q.Window.Offset
	if start < 0 || start >= len(matched) {
		return []*domain.Listing{}, total, nil
	}
	end := len(matched)
	if q.Window.Limit >= 0 && q.Window.Limit < end-start {
		end = start + q.Window.Limit
	}
	return matched[start:end], total, nil
}

func (r *ListingRepository) FindTop(ctx context.Context, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := r.match(p, o)
	if limit < len(matched) {
		matched = matched[:max(limit, 0)]
	}
	return matched, nil
}

// match returns clones of every listing satisfying p, sorted by o.
func (r *ListingRepository) match(p discovery.Predicate, o discovery.Ordering) []*domain.Listing {
	r.mu.RLock()
	out := make([]*domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if p.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	r.mu.RUnlock()

	// map iteration order is random; the id term in every ordering makes the result deterministic
	sort.SliceStable(out, func(i, j int) bool { return o.Compare(out[i], out[j]) < 0 })
	return out
}

func (r *ListingRepository) IncrementViewCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(id, func(l *domain.Listing) { l.ViewCount++ })
}

func (r *ListingRepository) IncrementInquiryCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(id, func(l *domain.Listing) { l.InquiryCount++ })
}

func (r *ListingRepository) increment(id int64, apply func(*domain.Listing)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return false, nil
	}
	apply(l)
	return true, nil
}

// Len reports how many listings are stored.
func (r *ListingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listings)
}
