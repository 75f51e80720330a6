package adapters

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"appdash/internal/logging/types"
)

type collector struct {
	mu      sync.Mutex
	batches [][]BetterstackLogEntry
	auth    []string
}

func (c *collector) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var batch []BetterstackLogEntry
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.batches = append(c.batches, batch)
		c.auth = append(c.auth, r.Header.Get("Authorization"))
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func entry(msg string) *types.LogEntry {
	return &types.LogEntry{
		Timestamp: time.Now(),
		Level:     types.InfoLevel,
		Message:   msg,
		Fields:    map[string]interface{}{"err": errors.New("boom"), "n": 1},
	}
}

func TestBetterstackAdapterSendsFullBatch(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(c.handler(http.StatusAccepted))
	defer srv.Close()

	a, err := NewBetterstackAdapter("bs", BetterstackConfig{
		SourceToken:   "tok",
		Endpoint:      srv.URL,
		BatchSize:     2,
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Write(entry("one")); err != nil {
		t.Fatal(err)
	}
	if err := a.Write(entry("two")); err != nil {
		t.Fatal(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) != 1 || len(c.batches[0]) != 2 {
		t.Fatalf("batches = %+v", c.batches)
	}
	if c.auth[0] != "Bearer tok" {
		t.Errorf("Authorization = %q", c.auth[0])
	}
	got := c.batches[0][0]
	if got.Message != "one" || got.Level != "info" || got.Fields["err"] != "boom" {
		t.Errorf("entry = %+v", got)
	}
	if stats := a.GetStats(); stats["sent"] != int64(2) {
		t.Errorf("stats = %v", stats)
	}
}

func TestBetterstackAdapterCloseFlushesPartialBatch(t *testing.T) {
	c := &collector{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	a, err := NewBetterstackAdapter("bs", BetterstackConfig{
		SourceToken:   "tok",
		Endpoint:      srv.URL,
		BatchSize:     10,
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Write(entry("pending")); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) != 1 || c.batches[0][0].Message != "pending" {
		t.Errorf("batches = %+v", c.batches)
	}
}

func TestBetterstackAdapterUnauthorizedIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a, err := NewBetterstackAdapter("bs", BetterstackConfig{
		SourceToken:   "bad",
		Endpoint:      srv.URL,
		BatchSize:     1,
		FlushInterval: time.Hour,
		MaxRetries:    3,
		RetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Write(entry("x")); err == nil {
		t.Fatal("expected send error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	if a.Health() == nil {
		t.Error("expected unhealthy adapter")
	}
	if stats := a.GetStats(); stats["dropped"] != int64(1) {
		t.Errorf("stats = %v", stats)
	}
}

func TestBetterstackAdapterRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	a, err := NewBetterstackAdapter("bs", BetterstackConfig{
		SourceToken:   "tok",
		Endpoint:      srv.URL,
		BatchSize:     1,
		FlushInterval: time.Hour,
		MaxRetries:    3,
		RetryBackoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Write(entry("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
	if err := a.Health(); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestNewBetterstackAdapterRequiresToken(t *testing.T) {
	if _, err := NewBetterstackAdapter("bs", BetterstackConfig{}); err == nil {
		t.Error("expected error without source token")
	}
}
