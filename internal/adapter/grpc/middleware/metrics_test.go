package middleware

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.NewMetricsManager("catalog_test")
	interceptor := MetricsInterceptor(m)

	ok := func(context.Context, interface{}) (interface{}, error) { return "ok", nil }
	fail := func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "bad filter")
	}

	_, _ = interceptor(context.Background(), nil, info, ok)
	_, _ = interceptor(context.Background(), nil, info, fail)
	_, _ = interceptor(context.Background(), nil, info, fail)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestLatency))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestErrorsTotal.WithLabelValues("GetListingBySlug", "InvalidArgument")))
}
