package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/grpc"
	natsAdapter "github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/repository/memory"
	mongoRepo "github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/repository/mongodb"
	pgRepo "github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/repository/postgres"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/tracer"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	cfg := config.MustLoad()

	appLogger := logger.New(&logger.LoggerConfig{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputFile: cfg.Logger.OutputFile,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	}).Named(cfg.AppName)
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Application stopped with error", "error", err.Error())
		_ = appLogger.Sync()
		os.Exit(1)
	}
	appLogger.Info("Application stopped")
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Application starting...",
		"env", cfg.Env, "store", cfg.Store.Driver, "grpc_port", cfg.GRPC.Port)

	tp, err := tracer.InitTracer(ctx, tracer.Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.Env,
		Enabled:      cfg.Tracing.Enabled,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	}, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", "error", err.Error())
		}
	}()

	repo, closeRepo, err := openRepository(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	opts := []usecase.Option{}

	if cfg.Redis.Enabled {
		listingCache, err := cache.NewListingCache(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = listingCache.Close() }()
		opts = append(opts, usecase.WithCache(listingCache))
		appLogger.Info("Redis listing cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		conn, err := natsAdapter.Connect(cfg.NATS.URL, cfg.AppName, appLogger)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		natsConn = conn
		defer func() { _ = conn.Drain() }()
		opts = append(opts, usecase.WithEventPublisher(natsAdapter.NewPublisher(conn, appLogger)))
	}

	discoveryUC := usecase.NewDiscoveryUsecase(repo, appLogger, opts...)

	if cfg.Store.SeedFile != "" {
		if _, err := seedListings(ctx, cfg.Store.SeedFile, discoveryUC, appLogger); err != nil {
			return err
		}
	}

	if natsConn != nil {
		inquirySubscriber := natsAdapter.NewInquirySubscriber(natsConn, discoveryUC, appLogger)
		if err := inquirySubscriber.Start(); err != nil {
			return fmt.Errorf("subscribe to inquiries: %w", err)
		}
		defer func() { _ = inquirySubscriber.Stop() }()

		changeSubscriber := natsAdapter.NewChangeSubscriber(natsConn, discoveryUC, appLogger)
		if err := changeSubscriber.Start(); err != nil {
			return fmt.Errorf("subscribe to listing changes: %w", err)
		}
		defer func() { _ = changeSubscriber.Stop() }()
	}

	handlerOpts := []grpcAdapter.HandlerOption{
		grpcAdapter.WithShortlistLimits(grpcAdapter.ShortlistLimits{
			Default: cfg.Discovery.ShortlistDefault,
			Max:     cfg.Discovery.ShortlistMax,
		}),
		grpcAdapter.WithAdminRole(cfg.Auth.AdminRole),
	}

	if cfg.MinIO.Enabled {
		resolver, err := s3.NewImageURLResolver(s3.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			Region:    cfg.MinIO.Region,
			UseSSL:    cfg.MinIO.UseSSL,
			URLExpiry: cfg.MinIO.URLExpiry,
		}, appLogger)
		if err != nil {
			return fmt.Errorf("create minio client: %w", err)
		}
		if err := resolver.CheckBucket(ctx); err != nil {
			appLogger.Warn("MinIO bucket check failed, image URLs may not resolve", "bucket", cfg.MinIO.Bucket, "error", err.Error())
		}
		handlerOpts = append(handlerOpts, grpcAdapter.WithImageResolver(resolver))
	}

	var metricsManager *metrics.MetricsManager
	if cfg.Metrics.Enabled {
		metricsManager = metrics.NewMetricsManager("catalog_service")
		handlerOpts = append(handlerOpts, grpcAdapter.WithMetrics(metricsManager))
	}

	handler := grpcAdapter.NewHandler(discoveryUC, appLogger, handlerOpts...)
	grpcServer, cleanup := grpcAdapter.NewGRPCServer(appLogger, handler, metricsManager, grpcAdapter.ServerConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		Reflection: cfg.GRPC.Reflection,
	})

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("listen on grpc port %s: %w", cfg.GRPC.Port, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting gRPC server", "port", cfg.GRPC.Port)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	var metricsServer *metrics.Server
	if metricsManager != nil {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, metricsManager, appLogger)
		g.Go(metricsServer.Start)
	}

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")

		stopped := make(chan struct{})
		go func() {
			cleanup()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(cfg.GRPC.TimeoutGraceful):
			appLogger.Warn("gRPC graceful stop timed out, forcing stop")
			grpcServer.Stop()
		}

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				appLogger.Error("Failed to shutdown metrics server", "error", err.Error())
			}
		}
		return nil
	})

	return g.Wait()
}

// openRepository connects the configured store. The returned func releases it.
func openRepository(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (usecase.ListingRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		closeFn := func() {
			appLogger.Info("Disconnecting from MongoDB...")
			if err := client.Disconnect(context.Background()); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", "error", err.Error())
			}
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ping mongodb: %w", err)
		}
		repo, err := mongoRepo.NewListingRepository(client.Database(cfg.Mongo.Database), appLogger)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		appLogger.Info("Connected to MongoDB", "database", cfg.Mongo.Database)
		return repo, closeFn, nil

	case config.StorePostgres:
		pool, err := pgRepo.NewClient(ctx, pgRepo.Config{
			DatabaseURL: cfg.Postgres.URL,
			MaxConns:    cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := pgRepo.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo, err := pgRepo.NewListingRepository(pool, appLogger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		appLogger.Info("Connected to PostgreSQL")
		return repo, pool.Close, nil

	default:
		appLogger.Warn("Using the in-memory listing store, data is lost on restart")
		return memory.NewListingRepository(), func() {}, nil
	}
}
