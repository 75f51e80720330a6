package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"appdash/internal/logging"
	"appdash/pkg/utils"
)

// requestIDFrom reuses the caller's x-request-id metadata when present
func requestIDFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return utils.GenerateRequestID()
}

func statusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// LoggingInterceptor returns a gRPC unary interceptor that logs each call
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := map[string]interface{}{
			"request_id":      requestIDFrom(ctx),
			"method":          info.FullMethod,
			"processing_time": utils.FormatDuration(time.Since(start)),
			"status_code":     statusCode(err).String(),
		}

		logger := logging.GetGlobalLogger()
		if err != nil {
			fields["error"] = err.Error()
			logger.Error("gRPC request failed", fields)
		} else {
			logger.Debug("gRPC request completed", fields)
		}
		return resp, err
	}
}

// StreamLoggingInterceptor returns a gRPC streaming interceptor that logs
// each stream when it ends. Health watches are long-lived streams.
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)

		fields := map[string]interface{}{
			"request_id":      requestIDFrom(ss.Context()),
			"method":          info.FullMethod,
			"processing_time": utils.FormatDuration(time.Since(start)),
			"status_code":     statusCode(err).String(),
		}

		logger := logging.GetGlobalLogger()
		if err != nil && statusCode(err) != codes.Canceled {
			fields["error"] = err.Error()
			logger.Error("gRPC stream failed", fields)
		} else {
			logger.Debug("gRPC stream completed", fields)
		}
		return err
	}
}
