package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var tracer = otel.Tracer("catalog-service/grpc-handler")

// DiscoveryService is the part of the discovery usecase the transport uses.
type DiscoveryService interface {
	Browse(ctx context.Context, c discovery.Criteria) (discovery.ResultPage[*domain.Listing], error)
	Search(ctx context.Context, query string, c discovery.Criteria) (discovery.ResultPage[*domain.Listing], error)
	Featured(ctx context.Context, limit int) ([]*domain.Listing, error)
	Popular(ctx context.Context, limit int) ([]*domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Listing, error)
	RecordView(ctx context.Context, id int64) error
}

// ImageResolver turns stored image keys into URLs a client can fetch.
type ImageResolver interface {
	ResolveImages(ctx context.Context, images []string) []string
}

// ShortlistLimits bounds the limit argument of Featured and Popular. The
// engine accepts any limit, so the cap lives here.
type ShortlistLimits struct {
	Default int
	Max     int
}

type Handler struct {
	discovery DiscoveryService
	images    ImageResolver // optional
	metrics   *metrics.MetricsManager
	limits    ShortlistLimits
	adminRole string
	logger    *logger.Logger
	now       func() time.Time
}

var _ DiscoveryServiceServer = (*Handler)(nil)

type HandlerOption func(*Handler)

func WithImageResolver(r ImageResolver) HandlerOption {
	return func(h *Handler) { h.images = r }
}

func WithMetrics(m *metrics.MetricsManager) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

func WithShortlistLimits(l ShortlistLimits) HandlerOption {
	return func(h *Handler) { h.limits = l }
}

// WithAdminRole sets the role claim that may read unpublished listings. An
// empty role disables the admin bypass.
func WithAdminRole(role string) HandlerOption {
	return func(h *Handler) { h.adminRole = role }
}

func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

func NewHandler(svc DiscoveryService, log *logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		discovery: svc,
		limits:    ShortlistLimits{Default: 8, Max: 50},
		adminRole: "admin",
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Browse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler.Browse")
	defer span.End()

	raw, err := structFilters(req)
	if err != nil {
		return nil, h.fail(span, "Browse", err)
	}
	c, err := discovery.NormalizeCriteria(raw)
	if err != nil {
		return nil, h.fail(span, "Browse", err)
	}
	span.SetAttributes(criteriaAttributes(c)...)

	page, err := h.discovery.Browse(ctx, c)
	if err != nil {
		return nil, h.fail(span, "Browse", err)
	}
	return h.pageResponse(ctx, span, "Browse", page)
}

func (h *Handler) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler.Search")
	defer span.End()

	query, err := stringField(req, fieldQuery)
	if err != nil {
		return nil, h.fail(span, "Search", err)
	}
	span.SetAttributes(attribute.String("query", query))

	raw, err := structFilters(req, fieldQuery)
	if err != nil {
		return nil, h.fail(span, "Search", err)
	}
	c, err := discovery.NormalizeCriteria(raw)
	if err != nil {
		return nil, h.fail(span, "Search", err)
	}
	span.SetAttributes(criteriaAttributes(c)...)

	page, err := h.discovery.Search(ctx, query, c)
	if err != nil {
		return nil, h.fail(span, "Search", err)
	}
	return h.pageResponse(ctx, span, "Search", page)
}

func (h *Handler) Featured(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.shortlist(ctx, req, "Featured", h.discovery.Featured)
}

func (h *Handler) Popular(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.shortlist(ctx, req, "Popular", h.discovery.Popular)
}

func (h *Handler) shortlist(ctx context.Context, req *structpb.Struct, op string, fetch func(context.Context, int) ([]*domain.Listing, error)) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler."+op)
	defer span.End()

	limit, err := h.shortlistLimit(req)
	if err != nil {
		return nil, h.fail(span, op, err)
	}
	span.SetAttributes(attribute.Int("limit", limit))

	items, err := fetch(ctx, limit)
	if err != nil {
		return nil, h.fail(span, op, err)
	}
	h.metrics.ObserveResultSize(op, len(items))
	span.SetAttributes(attribute.Int("result_count", len(items)))

	return h.respond(span, op, map[string]interface{}{"items": h.listingValues(ctx, items)})
}

// shortlistLimit applies the default when limit is absent and the cap when it
// is too large. An explicit non-positive limit is passed through and yields
// an empty list.
func (h *Handler) shortlistLimit(req *structpb.Struct) (int, error) {
	n, ok, err := intField(req, fieldLimit)
	if err != nil {
		return 0, errors.Join(domain.ErrInvalidCriteria, err)
	}
	if !ok {
		return h.limits.Default, nil
	}
	if n > int64(h.limits.Max) {
		return h.limits.Max, nil
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}

func (h *Handler) GetListing(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler.GetListing")
	defer span.End()

	id, ok, err := intField(req, fieldID)
	if err != nil {
		return nil, h.fail(span, "GetListing", errors.Join(domain.ErrInvalidCriteria, err))
	}
	if !ok {
		return nil, h.fail(span, "GetListing", errors.Join(domain.ErrInvalidCriteria, errors.New("id is required")))
	}
	span.SetAttributes(attribute.Int64("listing_id", id))

	l, err := h.discovery.GetByID(ctx, id)
	if err != nil {
		return nil, h.fail(span, "GetListing", err)
	}
	return h.listingResponse(ctx, span, "GetListing", l)
}

// GetListingBySlug resolves the id at the end of the slug. The words in front
// of it are not compared with the stored slug, so any prefix reaches the same
// listing.
func (h *Handler) GetListingBySlug(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler.GetListingBySlug")
	defer span.End()

	slug, err := stringField(req, fieldSlug)
	if err != nil {
		return nil, h.fail(span, "GetListingBySlug", err)
	}
	span.SetAttributes(attribute.String("slug", slug))

	l, err := h.discovery.GetBySlug(ctx, slug)
	if err != nil {
		return nil, h.fail(span, "GetListingBySlug", err)
	}
	return h.listingResponse(ctx, span, "GetListingBySlug", l)
}

func (h *Handler) RecordView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := tracer.Start(ctx, "Handler.RecordView")
	defer span.End()

	id, ok, err := intField(req, fieldID)
	if err != nil {
		return nil, h.fail(span, "RecordView", errors.Join(domain.ErrInvalidCriteria, err))
	}
	if !ok {
		return nil, h.fail(span, "RecordView", errors.Join(domain.ErrInvalidCriteria, errors.New("id is required")))
	}
	span.SetAttributes(attribute.Int64("listing_id", id))

	if err := h.discovery.RecordView(ctx, id); err != nil {
		return nil, h.fail(span, "RecordView", err)
	}
	h.metrics.IncViewsRecorded()
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

// listingResponse hides listings that are not currently visible from everyone
// except their owner and admins.
func (h *Handler) listingResponse(ctx context.Context, span oteltrace.Span, op string, l *domain.Listing) (*structpb.Struct, error) {
	span.SetAttributes(attribute.Int64("listing_id", l.ID))
	if !h.canView(ctx, l) {
		h.logger.Debug("Handler."+op+": listing not visible to caller", "listing_id", l.ID, "status", string(l.Status))
		return nil, h.fail(span, op, domain.ErrListingNotFound)
	}
	return h.respond(span, op, h.renderListing(ctx, l))
}

func (h *Handler) canView(ctx context.Context, l *domain.Listing) bool {
	if l.IsVisible(h.now()) {
		return true
	}
	if uid := middleware.UserIDFromContext(ctx); uid != "" && uid == l.OwnerID {
		return true
	}
	return h.adminRole != "" && middleware.RoleFromContext(ctx) == h.adminRole
}

func (h *Handler) pageResponse(ctx context.Context, span oteltrace.Span, op string, page discovery.ResultPage[*domain.Listing]) (*structpb.Struct, error) {
	h.metrics.ObserveResultSize(op, len(page.Items))
	span.SetAttributes(
		attribute.Int("result_count", len(page.Items)),
		attribute.Int64("total", page.Total),
	)
	return h.respond(span, op, pageMap(page, h.listingValues(ctx, page.Items)))
}

func (h *Handler) listingValues(ctx context.Context, items []*domain.Listing) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, l := range items {
		out = append(out, h.renderListing(ctx, l))
	}
	return out
}

func (h *Handler) renderListing(ctx context.Context, l *domain.Listing) map[string]interface{} {
	images := l.Images
	if h.images != nil {
		images = h.images.ResolveImages(ctx, images)
	}
	return listingMap(l, images)
}

func (h *Handler) respond(span oteltrace.Span, op string, m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		h.logger.Error("Handler."+op+": failed to encode response", "error", err.Error())
		return nil, h.fail(span, op, err)
	}
	return out, nil
}

// fail records err on the span and maps it to a gRPC status.
func (h *Handler) fail(span oteltrace.Span, op string, err error) error {
	span.RecordError(err)
	switch {
	case errors.Is(err, domain.ErrInvalidCriteria):
		span.SetStatus(otelcodes.Error, "invalid argument")
		return status.Errorf(codes.InvalidArgument, "%v", err)
	case errors.Is(err, domain.ErrListingNotFound):
		return status.Error(codes.NotFound, domain.ErrListingNotFound.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		span.SetStatus(otelcodes.Error, err.Error())
		h.logger.Error("Handler."+op+": request failed", "error", err.Error())
		return status.Errorf(codes.Internal, "failed to %s: %v", op, err)
	}
}

func criteriaAttributes(c discovery.Criteria) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("has_filters", c.HasFilters()),
		attribute.String("sort_by", c.SortBy),
		attribute.String("sort_direction", c.SortDirection),
		attribute.Int("page", c.Page),
		attribute.Int("per_page", c.PerPage),
	}
}
