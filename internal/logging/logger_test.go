package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"appdash/internal/config"
	"appdash/internal/logging/adapters"
)

func TestMultiLoggerWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMultiLogger()
	if err := logger.AddAdapter(adapters.NewWriterAdapter("buf", adapters.StdoutConfig{Format: "json"}, &buf)); err != nil {
		t.Fatal(err)
	}

	logger.WithField("session_id", "sess_1").Info("Dataset loaded", map[string]interface{}{
		"records": 23,
		"error":   errors.New("boom"),
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["message"] != "Dataset loaded" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["session_id"] != "sess_1" || entry["records"] != float64(23) || entry["error"] != "boom" {
		t.Errorf("fields not merged: %v", entry)
	}
}

func TestMultiLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMultiLogger()
	logger.AddAdapter(adapters.NewWriterAdapter("buf", adapters.StdoutConfig{Format: "text"}, &buf))
	logger.SetLevel(WarnLevel)

	child := logger.WithField("k", "v")
	child.Info("hidden")
	child.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown k=v") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestAddAdapterRejectsDuplicates(t *testing.T) {
	logger := NewMultiLogger()
	a := adapters.NewWriterAdapter("dup", adapters.StdoutConfig{}, &bytes.Buffer{})
	if err := logger.AddAdapter(a); err != nil {
		t.Fatal(err)
	}
	if err := logger.AddAdapter(a); err == nil {
		t.Error("expected duplicate adapter error")
	}
}

func TestManagerInitializeFileAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "appdash.log")
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Adapters = []config.LoggingAdapter{
		{Name: "file", Type: "file", Enabled: true, Options: map[string]interface{}{"file_path": path}},
		{Name: "off", Type: "stdout", Enabled: false},
	}

	m := NewManager()
	if err := m.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if m.GetLogger().GetLevel() != DebugLevel {
		t.Errorf("level = %v, want debug", m.GetLogger().GetLevel())
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestManagerInitializeBetterstackAdapter(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Logging.Adapters = []config.LoggingAdapter{
		{Name: "betterstack", Type: "betterstack", Enabled: true, Options: map[string]interface{}{
			"source_token":   "tok",
			"endpoint":       srv.URL,
			"batch_size":     50,
			"flush_interval": "1h",
		}},
	}

	m := NewManager()
	if err := m.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	m.GetLogger().Info("dataset loaded", map[string]interface{}{"records": 3})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := atomic.LoadInt32(&received); n != 1 {
		t.Errorf("requests = %d, want 1 flush on close", n)
	}
}

func TestFactoryRejectsBetterstackWithoutToken(t *testing.T) {
	_, err := NewAdapterFactory().CreateAdapter(AdapterConfig{
		Name:    "betterstack",
		Type:    "betterstack",
		Options: map[string]interface{}{"source_token": ""},
	})
	if err == nil || !strings.Contains(err.Error(), "source_token") {
		t.Errorf("err = %v", err)
	}
}

func TestGetDurationOption(t *testing.T) {
	opts := map[string]interface{}{"a": "250ms", "b": 2, "c": "bogus", "d": 1.5}
	if got := getDurationOption(opts, "a", 0); got != 250*time.Millisecond {
		t.Errorf("a = %v", got)
	}
	if got := getDurationOption(opts, "b", 0); got != 2*time.Second {
		t.Errorf("b = %v", got)
	}
	if got := getDurationOption(opts, "c", time.Minute); got != time.Minute {
		t.Errorf("c = %v", got)
	}
	if got := getDurationOption(opts, "d", 0); got != 1500*time.Millisecond {
		t.Errorf("d = %v", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{"DEBUG": DebugLevel, "warning": WarnLevel, "error": ErrorLevel, "bogus": InfoLevel}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
