package server

import (
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"appdash/internal/grpc/interceptors"
	"appdash/internal/logging"
	"appdash/internal/logging/types"
)

// ServiceName is the health service name of the dashboard API
const ServiceName = "appdash.Dashboard"

// Server hosts the standard gRPC health service next to the HTTP API
type Server struct {
	logger  types.Logger
	grpc    *grpc.Server
	health  *health.Server
	metrics *interceptors.MetricsCollector
}

// NewServer creates a gRPC server whose health starts as NOT_SERVING
func NewServer() *Server {
	metrics := interceptors.NewMetricsCollector()

	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(),
			interceptors.LoggingInterceptor(),
			interceptors.MetricsInterceptor(metrics),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(),
			interceptors.StreamLoggingInterceptor(),
			interceptors.StreamMetricsInterceptor(metrics),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Enable reflection for debugging
	reflection.Register(grpcServer)

	return &Server{
		logger:  logging.GetGlobalLogger(),
		grpc:    grpcServer,
		health:  healthServer,
		metrics: metrics,
	}
}

// Metrics returns the per-method call metrics of this server
func (s *Server) Metrics() *interceptors.MetricsCollector {
	return s.metrics
}

// Start serves on lis until Stop is called
func (s *Server) Start(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", map[string]interface{}{
		"address": lis.Addr().String(),
	})
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls
func (s *Server) Stop() {
	s.logger.Info("Shutting down gRPC server")
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
