package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"order-composer/internal/config"
	"order-composer/internal/delivery/grpc/handler"
	"order-composer/internal/domain/pricing"
	"order-composer/internal/domain/repositories"
	"order-composer/internal/infrastructure/logger"
	"order-composer/internal/infrastructure/memory"
	"order-composer/internal/infrastructure/mongodb"
	"order-composer/internal/infrastructure/nats"
	"order-composer/internal/infrastructure/seed"
	"order-composer/internal/usecase"
)

type App struct {
	cfg    *config.Config
	logger *logger.Logger
}

func New(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		logger: logger.NewLogger(),
	}
}

// store is the pair of repositories the composer runs on.
type store struct {
	catalog repositories.CatalogRepository
	orders  repositories.OrderRepository
	close   func()
}

func (a *App) Run() error {
	a.logger.Info("Starting order-composer",
		"backend", a.cfg.Store.Backend,
		"markup", a.cfg.Pricing.Markup)

	st, err := a.initStore()
	if err != nil {
		return err
	}
	defer st.close()

	publisher := a.initNATS()
	defer publisher.Close()

	composer := usecase.NewOrderComposer(
		st.catalog,
		st.orders,
		publisher,
		pricing.NewEngine(a.cfg.Pricing.Markup),
		a.logger,
	)

	grpcServer, lis, err := a.initGRPCServer(composer)
	if err != nil {
		return err
	}

	return a.runServerWithGracefulShutdown(grpcServer, lis)
}

func (a *App) initStore() (*store, error) {
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		return a.initMemory()
	default:
		return a.initMongoDB()
	}
}

func (a *App) initMongoDB() (*store, error) {
	a.logger.Info("Connecting to MongoDB", "uri", a.cfg.Mongo.URI, "db", a.cfg.Mongo.DB)

	db, err := mongodb.Connect(a.cfg.Mongo.URI, a.cfg.Mongo.DB, a.logger)
	if err != nil {
		a.logger.Error("Failed to connect to MongoDB", "error", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	orderRepo, err := mongodb.NewOrderRepositoryMongo(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare order repository: %w", err)
	}

	a.logger.Info("Connected to MongoDB successfully")
	return &store{
		catalog: mongodb.NewCatalogRepositoryMongo(db),
		orders:  orderRepo,
		close: func() {
			if err := db.Close(); err != nil {
				a.logger.Warn("Failed to close MongoDB connection", "error", err)
			}
		},
	}, nil
}

func (a *App) initMemory() (*store, error) {
	catalog := memory.NewCatalogRepositoryMemory(nil, nil)

	if path := a.cfg.Store.CatalogSeed; path != "" {
		fixture, err := seed.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog seed: %w", err)
		}
		catalog.Replace(fixture.Products, fixture.Categories)
		a.logger.Info("Catalog seeded", "path", path, "products", len(fixture.Products))
	} else {
		a.logger.Warn("CATALOG_SEED not set, in-memory catalog is empty")
	}

	return &store{
		catalog: catalog,
		orders:  memory.NewOrderRepositoryMemory(),
		close:   func() {},
	}, nil
}

func (a *App) initNATS() usecase.EventPublisher {
	if a.cfg.NATS.URL == "" {
		a.logger.Info("NATS URL not set, event publishing disabled")
		return &noopEventPublisher{}
	}

	publisher, err := connectToNATSWithRetry(a.cfg.NATS.URL, a.cfg.NATS.Subject, a.logger, 3, 2*time.Second)
	if err != nil {
		a.logger.Warn("Failed to connect to NATS, continuing without event publishing",
			"error", err,
			"url", a.cfg.NATS.URL)
		return &noopEventPublisher{}
	}

	a.logger.Info("Connected to NATS successfully")
	return publisher
}

func (a *App) initGRPCServer(composer *usecase.OrderComposer) (*grpc.Server, net.Listener, error) {
	composerHandler := handler.NewComposerHandler(composer, a.cfg.GRPC.SubmitTimeout)

	grpcServer := grpc.NewServer(
		grpc.ForceServerCodec(handler.Codec()),
		grpc.UnaryInterceptor(a.loggingInterceptor()),
	)

	handler.RegisterComposerServer(grpcServer, composerHandler)

	lis, err := net.Listen("tcp", ":"+a.cfg.GRPC.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on port %s: %w", a.cfg.GRPC.Port, err)
	}

	return grpcServer, lis, nil
}

func (a *App) runServerWithGracefulShutdown(grpcServer *grpc.Server, lis net.Listener) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("Starting gRPC server", "port", a.cfg.GRPC.Port)
		serverErrors <- grpcServer.Serve(lis)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		a.logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shutdownComplete := make(chan struct{})

		go func() {
			a.logger.Info("Stopping gRPC server gracefully")
			grpcServer.GracefulStop()
			close(shutdownComplete)
		}()

		select {
		case <-shutdownComplete:
			a.logger.Info("Graceful shutdown completed")
		case <-ctx.Done():
			a.logger.Warn("Graceful shutdown timeout, forcing stop")
			grpcServer.Stop()
		}

		return nil
	}
}

func connectToNATSWithRetry(url, subject string, logger *logger.Logger, maxRetries int, delay time.Duration) (usecase.EventPublisher, error) {
	for i := 0; i < maxRetries; i++ {
		publisher, err := nats.NewNatsPublisher(url, subject, logger)
		if err == nil {
			return publisher, nil
		}

		logger.Warn("Failed to connect to NATS, retrying...",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err)

		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to NATS after %d attempts", maxRetries)
}

type noopEventPublisher struct{}

func (n *noopEventPublisher) PublishOrderSubmitted(ctx context.Context, result *usecase.SubmissionResult) error {
	return nil
}

func (n *noopEventPublisher) Close() {
}

func (a *App) loggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		a.logger.Info("gRPC method called", "method", info.FullMethod)
		resp, err := handler(ctx, req)
		if err != nil {
			a.logger.Error("gRPC method failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
		} else {
			a.logger.Info("gRPC method completed", "method", info.FullMethod, "duration", time.Since(start))
		}
		return resp, err
	}
}
