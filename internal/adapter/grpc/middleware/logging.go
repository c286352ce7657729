package middleware

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by LoggingInterceptor.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingInterceptor tags every call with a request id, taken from the
// x-request-id header when the caller sent one, and logs its outcome.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		requestID := incomingRequestID(ctx)
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Warn("gRPC request failed",
				"method", info.FullMethod, "request_id", requestID, "code", status.Code(err).String(),
				"duration", duration, "error", err.Error())
		} else {
			log.Info("gRPC request completed", "method", info.FullMethod, "request_id", requestID, "duration", duration)
		}
		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(requestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
