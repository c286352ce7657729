package grpc

import (
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type ServerConfig struct {
	JWTSecret  string
	Reflection bool
}

// NewGRPCServer builds the server with the discovery service, the standard
// health service and, when enabled, reflection. The returned cleanup marks the
// service as not serving and stops the server gracefully.
func NewGRPCServer(
	appLogger *logger.Logger,
	handler DiscoveryServiceServer,
	m *metrics.MetricsManager,
	cfg ServerConfig,
) (*grpc.Server, func()) {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		middleware.LoggingInterceptor(appLogger),
	}
	if m != nil {
		unaryInterceptors = append(unaryInterceptors, middleware.MetricsInterceptor(m))
	}
	unaryInterceptors = append(unaryInterceptors, middleware.AuthInterceptor(cfg.JWTSecret, appLogger))

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
	)

	RegisterDiscoveryServiceServer(server, handler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	if cfg.Reflection {
		reflection.Register(server)
	}

	appLogger.Info("gRPC server configured",
		"service", ServiceName, "interceptors", len(unaryInterceptors), "reflection", cfg.Reflection)

	cleanup := func() {
		appLogger.Info("Calling gRPC server's GracefulStop...")
		healthServer.Shutdown()
		server.GracefulStop()
		appLogger.Info("gRPC server GracefulStop completed.")
	}
	return server, cleanup
}
