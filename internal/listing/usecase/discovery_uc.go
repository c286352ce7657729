package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
)

// DiscoveryUsecase answers browse, search, shortlist and lookup requests.
// Every list path is filtered by the visibility rule evaluated at the current
// time; single-listing lookups are not.
type DiscoveryUsecase struct {
	repo   ListingRepository
	cache  domain.ListingCache   // optional
	events domain.EventPublisher // optional
	logger *logger.Logger
	now    func() time.Time
}

type Option func(*DiscoveryUsecase)

// WithClock replaces time.Now. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(uc *DiscoveryUsecase) { uc.now = now }
}

func WithCache(c domain.ListingCache) Option {
	return func(uc *DiscoveryUsecase) { uc.cache = c }
}

func WithEventPublisher(p domain.EventPublisher) Option {
	return func(uc *DiscoveryUsecase) { uc.events = p }
}

func NewDiscoveryUsecase(repo ListingRepository, log *logger.Logger, opts ...Option) *DiscoveryUsecase {
	uc := &DiscoveryUsecase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Browse returns one page of visible listings matching c.
func (uc *DiscoveryUsecase) Browse(ctx context.Context, c discovery.Criteria) (discovery.ResultPage[*domain.Listing], error) {
	return uc.page(ctx, "Browse", discovery.Compose(c, uc.now()), c)
}

// Search is Browse plus a free-text match. A blank query behaves like Browse.
func (uc *DiscoveryUsecase) Search(ctx context.Context, query string, c discovery.Criteria) (discovery.ResultPage[*domain.Listing], error) {
	return uc.page(ctx, "Search", discovery.ComposeSearch(query, c, uc.now()), c, "query", strings.TrimSpace(query))
}

func (uc *DiscoveryUsecase) page(ctx context.Context, op string, p discovery.Predicate, c discovery.Criteria, extra ...interface{}) (discovery.ResultPage[*domain.Listing], error) {
	q := discovery.Query{
		Predicate: p,
		Ordering:  discovery.ResolveCriteriaSort(c),
		Window:    discovery.Paginate(c.Page, c.PerPage),
	}

	items, total, err := uc.repo.FindByQuery(ctx, q)
	if err != nil {
		uc.logger.Error("DiscoveryUsecase."+op+": store query failed", append(extra, "error", err.Error())...)
		return discovery.ResultPage[*domain.Listing]{}, fmt.Errorf("%s listings: %w", strings.ToLower(op), err)
	}

	uc.logger.Debug("DiscoveryUsecase."+op+": done",
		append(extra, "page", c.Page, "per_page", c.PerPage, "returned", len(items), "total", total)...)
	return discovery.NewResultPage(items, total, c.Page, c.PerPage), nil
}

// Featured returns up to limit visible featured listings, newest first.
func (uc *DiscoveryUsecase) Featured(ctx context.Context, limit int) ([]*domain.Listing, error) {
	if limit <= 0 {
		return []*domain.Listing{}, nil
	}
	p := discovery.Visible(uc.now()).And(discovery.Clause{Field: discovery.FieldFeatured, Op: discovery.OpEq, Value: true})
	return uc.top(ctx, "Featured", p, discovery.FeaturedOrdering(), limit)
}

// Popular returns up to limit visible listings by views, then inquiries.
func (uc *DiscoveryUsecase) Popular(ctx context.Context, limit int) ([]*domain.Listing, error) {
	if limit <= 0 {
		return []*domain.Listing{}, nil
	}
	return uc.top(ctx, "Popular", discovery.Visible(uc.now()), discovery.PopularOrdering(), limit)
}

func (uc *DiscoveryUsecase) top(ctx context.Context, op string, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error) {
	items, err := uc.repo.FindTop(ctx, p, o, limit)
	if err != nil {
		uc.logger.Error("DiscoveryUsecase."+op+": store query failed", "limit", limit, "error", err.Error())
		return nil, fmt.Errorf("%s listings: %w", strings.ToLower(op), err)
	}
	if items == nil {
		items = []*domain.Listing{}
	}
	return items, nil
}

// RecordView counts one view. An unknown id is ignored. The viewed event is
// published after the increment and its failure does not fail the call.
func (uc *DiscoveryUsecase) RecordView(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	found, err := uc.repo.IncrementViewCount(ctx, id)
	if err != nil {
		uc.logger.Error("DiscoveryUsecase.RecordView: increment failed", "listing_id", id, "error", err.Error())
		return fmt.Errorf("record view of listing %d: %w", id, err)
	}
	if !found {
		uc.logger.Debug("DiscoveryUsecase.RecordView: unknown listing ignored", "listing_id", id)
		return nil
	}
	uc.evict(ctx, "RecordView", id)

	if uc.events != nil {
		if err := uc.events.PublishListingViewed(ctx, id, uc.now()); err != nil {
			uc.logger.Warn("DiscoveryUsecase.RecordView: failed to publish viewed event", "listing_id", id, "error", err.Error())
		}
	}
	return nil
}

// RecordInquiry counts one inquiry. An unknown id is ignored.
func (uc *DiscoveryUsecase) RecordInquiry(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	found, err := uc.repo.IncrementInquiryCount(ctx, id)
	if err != nil {
		uc.logger.Error("DiscoveryUsecase.RecordInquiry: increment failed", "listing_id", id, "error", err.Error())
		return fmt.Errorf("record inquiry on listing %d: %w", id, err)
	}
	if !found {
		uc.logger.Debug("DiscoveryUsecase.RecordInquiry: unknown listing ignored", "listing_id", id)
		return nil
	}
	uc.evict(ctx, "RecordInquiry", id)
	return nil
}

// Invalidate drops the cached copy of a listing that changed elsewhere, so the
// next lookup reads its status and counters from the store.
func (uc *DiscoveryUsecase) Invalidate(ctx context.Context, id int64) error {
	if id <= 0 || uc.cache == nil {
		return nil
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Error("DiscoveryUsecase.Invalidate: cache delete failed", "listing_id", id, "error", err.Error())
		return fmt.Errorf("invalidate listing %d: %w", id, err)
	}
	return nil
}

// evict is Invalidate for paths where a cache failure must not fail the call.
func (uc *DiscoveryUsecase) evict(ctx context.Context, op string, id int64) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("DiscoveryUsecase."+op+": cache delete failed", "listing_id", id, "error", err.Error())
	}
}

// GetBySlug resolves the id suffix of slug and loads that listing. The text in
// front of the id is not checked. Visibility is not applied.
func (uc *DiscoveryUsecase) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	id, ok := discovery.ParseSlugID(slug)
	if !ok {
		uc.logger.Debug("DiscoveryUsecase.GetBySlug: malformed slug", "slug", slug)
		return nil, domain.ErrListingNotFound
	}
	return uc.GetByID(ctx, id)
}

// GetByID loads one listing through the cache. Visibility is not applied.
func (uc *DiscoveryUsecase) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	if id <= 0 {
		return nil, domain.ErrListingNotFound
	}

	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("DiscoveryUsecase.GetByID: cache read failed", "listing_id", id, "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	l, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		uc.logger.Error("DiscoveryUsecase.GetByID: store lookup failed", "listing_id", id, "error", err.Error())
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	if l == nil {
		return nil, domain.ErrListingNotFound
	}

	if uc.cache != nil {
		if err := uc.cache.SetListing(ctx, l); err != nil {
			uc.logger.Warn("DiscoveryUsecase.GetByID: cache write failed", "listing_id", id, "error", err.Error())
		}
	}
	return l, nil
}

// Create stores a new listing. A zero id is replaced by a fresh one, the slug
// is derived from the title and id, and timestamps default to now.
func (uc *DiscoveryUsecase) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	if l == nil {
		return nil, errors.New("create listing: nil listing")
	}
	out := l.Clone()

	if out.ID <= 0 {
		id, err := uc.repo.NextID(ctx)
		if err != nil {
			uc.logger.Error("DiscoveryUsecase.Create: failed to reserve id", "error", err.Error())
			return nil, fmt.Errorf("create listing: %w", err)
		}
		out.ID = id
	}
	out.Slug = discovery.Slugify(out.Title, out.ID)
	out.Currency = strings.ToUpper(strings.TrimSpace(out.Currency))
	if out.Status == "" {
		out.Status = domain.StatusDraft
	}
	now := uc.now()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}

	if err := uc.repo.Insert(ctx, out); err != nil {
		uc.logger.Error("DiscoveryUsecase.Create: insert failed", "listing_id", out.ID, "error", err.Error())
		return nil, fmt.Errorf("create listing %d: %w", out.ID, err)
	}
	uc.logger.Info("DiscoveryUsecase.Create: listing created", "listing_id", out.ID, "slug", out.Slug, "owner_id", out.OwnerID)
	return out, nil
}
