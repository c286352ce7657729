package grpc_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	catalogrpc "github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/grpc"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/repository/memory"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	bufSize    = 1024 * 1024
	testSecret = "test-secret"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	client  *catalogrpc.DiscoveryServiceClient
	conn    *grpc.ClientConn
	repo    *memory.ListingRepository
	metrics *metrics.MetricsManager
}

type prefixResolver struct{}

func (prefixResolver) ResolveImages(_ context.Context, images []string) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = "https://cdn.test/" + img
	}
	return out
}

func listing(id int64, title string, mutate ...func(*domain.Listing)) *domain.Listing {
	published := fixedNow.Add(-24 * time.Hour)
	l := &domain.Listing{
		ID:          id,
		Slug:        "listing-" + title,
		OwnerID:     "seller-1",
		Title:       title,
		Status:      domain.StatusActive,
		PublishedAt: &published,
		Featured:    true,
		Currency:    "USD",
		Images:      []string{},
		Tags:        []string{},
		CreatedAt:   fixedNow.Add(-time.Duration(id) * time.Hour),
		UpdatedAt:   fixedNow,
	}
	for _, m := range mutate {
		m(l)
	}
	return l
}

func seed() []*domain.Listing {
	return []*domain.Listing{
		listing(1, "John Deere tractor", func(l *domain.Listing) { l.Images = []string{"photos/1.jpg"}; l.Price = 30000 }),
		listing(2, "Kubota excavator", func(l *domain.Listing) { l.Price = 45000; l.Model = "KX040" }),
		listing(3, "Bobcat loader", func(l *domain.Listing) { l.Price = 20000 }),
		listing(4, "Case backhoe", func(l *domain.Listing) { l.Price = 38000; l.Featured = false }),
		listing(5, "Draft generator", func(l *domain.Listing) { l.Status = domain.StatusDraft }),
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	repo := memory.NewListingRepository()
	for _, l := range seed() {
		require.NoError(t, repo.Insert(ctx, l))
	}

	log := logger.NewNop()
	clock := func() time.Time { return fixedNow }
	uc := usecase.NewDiscoveryUsecase(repo, log, usecase.WithClock(clock))
	m := metrics.NewMetricsManager("catalog_test")
	h := catalogrpc.NewHandler(uc, log,
		catalogrpc.WithMetrics(m),
		catalogrpc.WithHandlerClock(clock),
		catalogrpc.WithImageResolver(prefixResolver{}),
		catalogrpc.WithShortlistLimits(catalogrpc.ShortlistLimits{Default: 2, Max: 3}),
	)

	srv, cleanup := catalogrpc.NewGRPCServer(log, h, m, catalogrpc.ServerConfig{JWTSecret: testSecret})
	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(cleanup)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{client: catalogrpc.NewDiscoveryServiceClient(conn), conn: conn, repo: repo, metrics: m}
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func withToken(t *testing.T, userID, role string) context.Context {
	t.Helper()
	claims := middleware.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func itemIDs(resp *structpb.Struct) []int64 {
	values := resp.GetFields()["items"].GetListValue().GetValues()
	out := make([]int64, 0, len(values))
	for _, v := range values {
		out = append(out, int64(v.GetStructValue().GetFields()["id"].GetNumberValue()))
	}
	return out
}

func TestBrowse_ReturnsVisibleListingsOnly(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Browse(context.Background(), request(t, nil))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4}, itemIDs(resp))
	assert.Equal(t, float64(4), resp.GetFields()["total"].GetNumberValue())
	assert.Equal(t, float64(1), resp.GetFields()["page"].GetNumberValue())
	assert.False(t, resp.GetFields()["has_more"].GetBoolValue())
}

func TestBrowse_NumericAndStringFields(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Browse(context.Background(), request(t, map[string]interface{}{
		"price_min":      25000,
		"sort_by":        "price",
		"sort_direction": "asc",
		"per_page":       "2",
		"page":           1,
	}))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 4}, itemIDs(resp))
	assert.Equal(t, float64(3), resp.GetFields()["total"].GetNumberValue())
	assert.Equal(t, float64(2), resp.GetFields()["last_page"].GetNumberValue())
	assert.True(t, resp.GetFields()["has_more"].GetBoolValue())
}

func TestBrowse_InvalidCriteria(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Browse(context.Background(), request(t, map[string]interface{}{"price_min": "cheap"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.Browse(context.Background(), request(t, map[string]interface{}{
		"city": map[string]interface{}{"$ne": "Austin"},
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBrowse_ResolvesImageURLs(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Browse(context.Background(), request(t, map[string]interface{}{"with_images": true}))
	require.NoError(t, err)

	items := resp.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	images := items[0].GetStructValue().GetFields()["images"].GetListValue().GetValues()
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn.test/photos/1.jpg", images[0].GetStringValue())
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Search(context.Background(), request(t, map[string]interface{}{"q": "EXCAVATOR"}))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, itemIDs(resp))

	resp, err = env.client.Search(context.Background(), request(t, map[string]interface{}{"q": "generator"}))
	require.NoError(t, err)
	assert.Empty(t, itemIDs(resp), "draft listings never appear in search")
}

func TestSearch_NumericQuery(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Search(context.Background(), request(t, map[string]interface{}{"q": 40}))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, itemIDs(resp), "a number is matched as text")

	resp, err = env.client.Search(context.Background(), request(t, map[string]interface{}{"q": 9999}))
	require.NoError(t, err)
	assert.Empty(t, itemIDs(resp))

	_, err = env.client.Search(context.Background(), request(t, map[string]interface{}{"q": []interface{}{"a"}}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFeatured_Limits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.client.Featured(ctx, request(t, nil))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, itemIDs(resp), "default limit")

	resp, err = env.client.Featured(ctx, request(t, map[string]interface{}{"limit": 10}))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, itemIDs(resp), "capped at max")

	resp, err = env.client.Featured(ctx, request(t, map[string]interface{}{"limit": 0}))
	require.NoError(t, err)
	assert.Empty(t, itemIDs(resp))

	_, err = env.client.Featured(ctx, request(t, map[string]interface{}{"limit": "many"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPopular(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.client.RecordView(ctx, request(t, map[string]interface{}{"id": 3}))
		require.NoError(t, err)
	}
	_, err := env.client.RecordView(ctx, request(t, map[string]interface{}{"id": 4}))
	require.NoError(t, err)

	resp, err := env.client.Popular(ctx, request(t, map[string]interface{}{"limit": 2}))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, itemIDs(resp))
}

func TestRecordView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.RecordView(ctx, request(t, map[string]interface{}{"id": "2"}))
	require.NoError(t, err)
	_, err = env.client.RecordView(ctx, request(t, map[string]interface{}{"id": 999}))
	require.NoError(t, err, "unknown ids are ignored")

	l, err := env.repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.ViewCount)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.ViewsRecordedTotal))

	_, err = env.client.RecordView(ctx, request(t, nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.client.GetListing(ctx, request(t, map[string]interface{}{"id": 2}))
	require.NoError(t, err)
	assert.Equal(t, "Kubota excavator", resp.GetFields()["title"].GetStringValue())
	assert.Equal(t, structpb.NullValue_NULL_VALUE, resp.GetFields()["year"].GetNullValue())

	_, err = env.client.GetListing(ctx, request(t, map[string]interface{}{"id": 404}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.client.GetListing(ctx, request(t, nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetListingBySlug_AnyPrefixResolvesByID(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.GetListingBySlug(context.Background(), request(t, map[string]interface{}{"slug": "any-title-words-2"}))
	require.NoError(t, err)
	assert.Equal(t, float64(2), resp.GetFields()["id"].GetNumberValue())

	_, err = env.client.GetListingBySlug(context.Background(), request(t, map[string]interface{}{"slug": "no-id"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetListingBySlug_HiddenListingAccess(t *testing.T) {
	env := newTestEnv(t)
	req := request(t, map[string]interface{}{"slug": "draft-generator-5"})

	tests := []struct {
		name string
		ctx  context.Context
		want codes.Code
	}{
		{"anonymous", context.Background(), codes.NotFound},
		{"another user", withToken(t, "seller-2", ""), codes.NotFound},
		{"owner", withToken(t, "seller-1", ""), codes.OK},
		{"admin", withToken(t, "moderator-7", "admin"), codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.GetListingBySlug(tt.ctx, req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestInvalidTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer not-a-jwt")

	_, err := env.client.Browse(ctx, request(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	var header metadata.MD
	_, err := env.client.Browse(context.Background(), request(t, nil), grpc.Header(&header))
	require.NoError(t, err)
	ids := header.Get("x-request-id")
	require.Len(t, ids, 1)
	assert.False(t, strings.TrimSpace(ids[0]) == "")
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: catalogrpc.ServiceName,
	})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
