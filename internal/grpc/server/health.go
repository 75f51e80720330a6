package server

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadinessFunc reports whether the service can serve dashboard requests
type ReadinessFunc func(ctx context.Context) error

// SetServing flips the overall and dashboard health status
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// WatchReadiness runs ready now and then every interval until ctx is done,
// publishing the result as the health status.
func (s *Server) WatchReadiness(ctx context.Context, interval time.Duration, ready ReadinessFunc) {
	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		err := ready(checkCtx)
		if err != nil {
			s.logger.Warn("gRPC readiness check failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s.SetServing(err == nil)
	}

	check()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
