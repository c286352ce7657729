package middleware

import (
	"context"
	"path"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsInterceptor records latency and error counts per RPC method.
func MetricsInterceptor(m *metrics.MetricsManager) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		method := path.Base(info.FullMethod)
		m.RequestLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if err != nil {
			m.RequestErrorsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
		}
		return resp, err
	}
}
