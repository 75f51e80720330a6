package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"appdash/internal/logging/types"
)

// BetterstackAdapter ships log entries to Better Stack in batches
type BetterstackAdapter struct {
	name       string
	config     BetterstackConfig
	httpClient *http.Client

	mu            sync.Mutex
	buffer        []BetterstackLogEntry
	healthy       bool
	lastError     error
	lastErrorTime time.Time
	sent          int64
	dropped       int64

	// serializes HTTP sends so batches arrive in order
	sendMu sync.Mutex

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// BetterstackConfig represents configuration for the Betterstack adapter
type BetterstackConfig struct {
	SourceToken   string            `yaml:"source_token"`   // Betterstack source token
	Endpoint      string            `yaml:"endpoint"`       // Betterstack API endpoint
	BatchSize     int               `yaml:"batch_size"`     // entries per request
	FlushInterval time.Duration     `yaml:"flush_interval"` // how often a partial batch is sent
	MaxRetries    int               `yaml:"max_retries"`    // max retry attempts
	RetryBackoff  time.Duration     `yaml:"retry_backoff"`  // linear backoff step
	Timeout       time.Duration     `yaml:"timeout"`        // HTTP request timeout
	UserAgent     string            `yaml:"user_agent"`     // HTTP user agent
	Headers       map[string]string `yaml:"headers"`        // Additional HTTP headers
}

// BetterstackLogEntry represents a log entry in Betterstack format
type BetterstackLogEntry struct {
	Timestamp time.Time              `json:"dt"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// NewBetterstackAdapter creates a new Betterstack adapter and starts its
// flush loop
func NewBetterstackAdapter(name string, config BetterstackConfig) (*BetterstackAdapter, error) {
	if config.SourceToken == "" {
		return nil, fmt.Errorf("source_token is required for Betterstack adapter")
	}

	if config.Endpoint == "" {
		config.Endpoint = "https://in.logs.betterstack.com"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "appdash/1.0"
	}

	a := &BetterstackAdapter{
		name:   name,
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		buffer:  make([]BetterstackLogEntry, 0, config.BatchSize),
		healthy: true,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go a.flushLoop()
	return a, nil
}

// Write buffers an entry and sends the batch once it is full
func (a *BetterstackAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	a.buffer = append(a.buffer, BetterstackLogEntry{
		Timestamp: entry.Timestamp,
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Fields:    stringifyErrors(entry.Fields),
	})
	full := len(a.buffer) >= a.config.BatchSize
	a.mu.Unlock()

	if full {
		return a.Flush()
	}
	return nil
}

// Flush sends any buffered entries now
func (a *BetterstackAdapter) Flush() error {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()

	a.mu.Lock()
	batch := a.buffer
	a.buffer = make([]BetterstackLogEntry, 0, a.config.BatchSize)
	a.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := a.send(batch)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.healthy = false
		a.lastError = err
		a.lastErrorTime = time.Now()
		a.dropped += int64(len(batch))
		return fmt.Errorf("failed to send logs to Betterstack: %w", err)
	}
	a.healthy = true
	a.lastError = nil
	a.sent += int64(len(batch))
	return nil
}

// Close stops the flush loop and sends what is left
func (a *BetterstackAdapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.stop)
		<-a.done
		err = a.Flush()
		a.httpClient.CloseIdleConnections()
	})
	return err
}

// Health returns the health status of the adapter
func (a *BetterstackAdapter) Health() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.healthy {
		return fmt.Errorf("adapter unhealthy: %v (last error at %v)", a.lastError, a.lastErrorTime)
	}
	return nil
}

// Name returns the name of the adapter
func (a *BetterstackAdapter) Name() string {
	return a.name
}

// GetStats returns statistics about the adapter
func (a *BetterstackAdapter) GetStats() map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := map[string]interface{}{
		"healthy":        a.healthy,
		"buffered":       len(a.buffer),
		"sent":           a.sent,
		"dropped":        a.dropped,
		"endpoint":       a.config.Endpoint,
		"batch_size":     a.config.BatchSize,
		"flush_interval": a.config.FlushInterval.String(),
	}
	if a.lastError != nil {
		stats["last_error"] = a.lastError.Error()
		stats["last_error_time"] = a.lastErrorTime
	}
	return stats
}

func (a *BetterstackAdapter) flushLoop() {
	defer close(a.done)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			// errors are kept in the adapter's health state
			_ = a.Flush()
		}
	}
}

// send posts one batch, retrying network errors and retryable statuses with
// linear backoff
func (a *BetterstackAdapter) send(batch []BetterstackLogEntry) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal log batch: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * a.config.RetryBackoff)
		}

		req, err := http.NewRequest(http.MethodPost, a.config.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+a.config.SourceToken)
		req.Header.Set("User-Agent", a.config.UserAgent)
		for key, value := range a.config.Headers {
			req.Header.Set(key, value)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		retryable := isRetryableStatus(resp.StatusCode)
		if err := handleBetterstackResponse(resp); err != nil {
			lastErr = err
			if retryable {
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("failed to send logs after %d retries: %w", a.config.MaxRetries, lastErr)
}

func handleBetterstackResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", string(body))
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: invalid source token")
	case http.StatusForbidden:
		return fmt.Errorf("forbidden: access denied")
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limited: %s", string(body))
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// stringifyErrors copies fields, turning error values into their messages
func stringifyErrors(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	return out
}
