package handler

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ReportingService is the service name reported by the health endpoint.
const ReportingService = "inventory.reporting"

type GRPCHandler struct {
	health *health.Server
	db     Pinger
	logger *slog.Logger
}

func NewGRPCHandler(db Pinger, logger *slog.Logger) *GRPCHandler {
	return &GRPCHandler{
		health: health.NewServer(),
		db:     db,
		logger: logger,
	}
}

// NewServer returns a gRPC server exposing health checks and reflection.
// Every service starts as NOT_SERVING until Refresh sees a healthy store.
func (h *GRPCHandler) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(h.logUnary))
	healthpb.RegisterHealthServer(srv, h.health)
	reflection.Register(srv)

	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.health.SetServingStatus(ReportingService, healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

// Refresh pings the store and publishes the result.
func (h *GRPCHandler) Refresh(ctx context.Context) bool {
	serving := healthpb.HealthCheckResponse_SERVING
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("store unreachable", "error", err)
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.health.SetServingStatus("", serving)
	h.health.SetServingStatus(ReportingService, serving)
	return serving == healthpb.HealthCheckResponse_SERVING
}

// Shutdown marks every service NOT_SERVING and rejects later updates.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}

func (h *GRPCHandler) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)

	h.logger.Debug("grpc call completed",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
