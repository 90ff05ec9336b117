package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-forecast/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-forecast/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-forecast/internal/cache"
	"github.com/simaogato/wealthflow-forecast/internal/config"
	"github.com/simaogato/wealthflow-forecast/internal/log"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/overview"
	"github.com/simaogato/wealthflow-forecast/internal/usecase/planning"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.WithComponent(log.ComponentConfig).Error("invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	taxYears, err := config.LoadTaxYears(cfg.TaxYearsFile)
	if err != nil {
		logger.WithComponent(log.ComponentConfig).Error("failed to load tax years", log.FieldError, err.Error())
		os.Exit(1)
	}

	// 2. Setup Database, retrying while Postgres starts up
	storageLogger := logger.WithComponent(log.ComponentStorage)
	db, err := connect(cfg.DBConnStr, storageLogger)
	if err != nil {
		storageLogger.Error("failed to connect to database", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(db); err != nil {
			storageLogger.Error("failed to run migrations", log.FieldOperation, log.OpMigrate, log.FieldError, err.Error())
			os.Exit(1)
		}
		storageLogger.Info("migrations applied", log.FieldOperation, log.OpMigrate)
	}

	// 3. Initialize Repositories (Postgres)
	netWorthRepo := postgres.NewNetWorthRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	fundRepo := postgres.NewFundRepository(db)
	costRepo := postgres.NewCostRepository(db)
	planningRepo := postgres.NewPlanningRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// 4. Initialize Services (Use Cases)
	var projections cache.Cache[*overview.Projection] = cache.Noop[*overview.Projection]{}
	if cfg.CacheSize > 0 {
		projections = cache.NewLRUCache[*overview.Projection](cfg.CacheSize, cfg.CacheTTL)
	}

	overviewService := overview.NewOverviewService(netWorthRepo, categoryRepo, fundRepo, costRepo, userRepo, projections, logger)
	planningService := planning.NewPlanningService(planningRepo, netWorthRepo, categoryRepo, taxYears, logger)

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)

	grpcadapter.RegisterForecastServiceServer(grpcServer, grpcadapter.NewServer(overviewService, planningService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.GRPCAddr, log.FieldError, err.Error())
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("gRPC server listening", log.FieldOperation, log.OpStartup, "addr", cfg.GRPCAddr,
			"tax_years", len(taxYears), "cache_size", cfg.CacheSize)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("failed to serve gRPC server", log.FieldError, err.Error())
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, logger)
}

// connect opens the database, retrying for a few seconds so the server can start alongside Postgres
func connect(connStr string, logger *log.Logger) (*postgres.DB, error) {
	const attempts = 5

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := postgres.NewDB(ctx, connStr)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database not ready", "attempt", attempt, log.FieldError, err.Error())
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, logger *log.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down gracefully", log.FieldOperation, log.OpShutdown, "signal", sig.String())

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped", log.FieldOperation, log.OpShutdown)
}
