package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/inventory-sales/internal/adapter/handler"
	"github.com/rl1809/inventory-sales/internal/adapter/storage"
	"github.com/rl1809/inventory-sales/internal/config"
	"github.com/rl1809/inventory-sales/internal/core/domain"
	"github.com/rl1809/inventory-sales/internal/core/service"
	"github.com/rl1809/inventory-sales/internal/middleware"
	"github.com/rl1809/inventory-sales/internal/observability"
	"github.com/rl1809/inventory-sales/internal/port"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// Initialize store
	dialect, err := storage.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	db, err := storage.Open(startCtx, dialect, cfg.Database.DSN, storage.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database", "driver", dialect)

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(startCtx, db, dialect); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	store := storage.NewSQLAdapter(db, dialect)

	// Initialize stock cache
	var stockCache port.StockCache
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer rdb.Close()

		if err := rdb.Ping(startCtx).Err(); err != nil {
			return err
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		stockCache = storage.NewRedisAdapter(rdb)
	}

	// Initialize services
	weekStart, _ := cfg.Report.WeekStartDay()
	loc, _ := cfg.Report.Location()
	bucketer := domain.Bucketer{WeekStart: weekStart, Location: loc}

	inventoryService := service.NewInventoryService(store, stockCache, port.SystemClock{}, logger)
	revenueService := service.NewRevenueService(store, bucketer, port.SystemClock{})

	// Sync stock to cache
	if stockCache != nil {
		n, err := inventoryService.SyncStockCache(startCtx)
		if err != nil {
			return err
		}
		logger.Info("synced stock cache", "products", n)
	}

	// HTTP server
	mux := http.NewServeMux()
	handler.NewHTTPHandler(inventoryService, revenueService, store, loc, logger).Register(mux)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit), logger),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      chain(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// gRPC server
	grpcHandler := handler.NewGRPCHandler(store, logger)
	grpcServer := grpcHandler.NewServer()
	grpcHandler.Refresh(startCtx)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		grpcHandler.Shutdown()
		err := httpServer.Shutdown(shutdownCtx)
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return err
	})

	return g.Wait()
}
