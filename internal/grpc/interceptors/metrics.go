package interceptors

import (
	"context"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"appdash/internal/logging"
	"appdash/pkg/utils"
)

// MethodMetrics holds call counters for one gRPC method
type MethodMetrics struct {
	Method          string        `json:"method"`
	RequestCount    int64         `json:"request_count"`
	SuccessCount    int64         `json:"success_count"`
	ErrorCount      int64         `json:"error_count"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	LastUpdated     time.Time     `json:"last_updated"`
}

// SuccessRate returns the share of successful calls as a percentage
func (m MethodMetrics) SuccessRate() float64 {
	if m.RequestCount == 0 {
		return 0
	}
	return float64(m.SuccessCount) / float64(m.RequestCount) * 100
}

// MetricsCollector aggregates per-method call metrics for one server
type MetricsCollector struct {
	mu      sync.RWMutex
	methods map[string]*MethodMetrics
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{methods: make(map[string]*MethodMetrics)}
}

// RecordMetrics records one finished call. A cancelled call counts as a
// success since the client ended it.
func (c *MetricsCollector) RecordMetrics(method string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, exists := c.methods[method]
	if !exists {
		m = &MethodMetrics{Method: method}
		c.methods[method] = m
	}

	m.RequestCount++
	m.TotalDuration += duration
	m.AverageDuration = m.TotalDuration / time.Duration(m.RequestCount)
	m.LastUpdated = time.Now()

	if code := statusCode(err); code != codes.OK && code != codes.Canceled {
		m.ErrorCount++
	} else {
		m.SuccessCount++
	}
}

// GetMethodMetrics returns a copy of the metrics for method, or nil
func (c *MetricsCollector) GetMethodMetrics(method string) *MethodMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, exists := c.methods[method]; exists {
		cp := *m
		return &cp
	}
	return nil
}

// GetAllMetrics returns copies of every method's metrics sorted by method
func (c *MetricsCollector) GetAllMetrics() []MethodMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]MethodMetrics, 0, len(c.methods))
	for _, m := range c.methods {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Method < result[j].Method })
	return result
}

// Totals returns request and error counts summed over all methods
func (c *MetricsCollector) Totals() (requests, errors int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.methods {
		requests += m.RequestCount
		errors += m.ErrorCount
	}
	return requests, errors
}

// Reset clears all metrics
func (c *MetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.methods = make(map[string]*MethodMetrics)
}

// MetricsInterceptor returns a gRPC unary interceptor that records each call
// in collector
func MetricsInterceptor(collector *MetricsCollector) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		duration := time.Since(start)
		collector.RecordMetrics(info.FullMethod, duration, err)

		logging.GetGlobalLogger().Debug("gRPC method metrics recorded", map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": duration.Milliseconds(),
			"status_code": statusCode(err).String(),
			"type":        "grpc_metrics",
		})
		return resp, err
	}
}

// StreamMetricsInterceptor returns a gRPC streaming interceptor that records
// each stream in collector when it ends
func StreamMetricsInterceptor(collector *MetricsCollector) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)

		duration := time.Since(start)
		collector.RecordMetrics(info.FullMethod, duration, err)

		logging.GetGlobalLogger().Debug("gRPC stream metrics recorded", map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": duration.Milliseconds(),
			"status_code": statusCode(err).String(),
			"type":        "grpc_stream_metrics",
		})
		return err
	}
}

// LogMetricsSummary logs one line per method
func LogMetricsSummary(collector *MetricsCollector) {
	logger := logging.GetGlobalLogger()
	for _, m := range collector.GetAllMetrics() {
		logger.Info("gRPC method metrics summary", map[string]interface{}{
			"method":           m.Method,
			"request_count":    m.RequestCount,
			"success_count":    m.SuccessCount,
			"error_count":      m.ErrorCount,
			"success_rate":     m.SuccessRate(),
			"average_duration": utils.FormatDuration(m.AverageDuration),
			"type":             "grpc_metrics_summary",
		})
	}
}

// StartMetricsReporting logs a summary every interval until ctx is done
func StartMetricsReporting(ctx context.Context, collector *MetricsCollector, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				LogMetricsSummary(collector)
			case <-ctx.Done():
				return
			}
		}
	}()
}
