package logging

import (
	"fmt"
	"time"

	"appdash/internal/logging/adapters"
	"appdash/internal/logging/types"
)

// AdapterFactory creates logging adapters based on configuration
type AdapterFactory struct{}

// NewAdapterFactory creates a new adapter factory
func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{}
}

// CreateAdapter creates a logging adapter based on the provided configuration
func (f *AdapterFactory) CreateAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	switch adapterConfig.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(adapterConfig.Name, adapters.StdoutConfig{
			Format:    getStringOption(adapterConfig.Options, "format", "json"),
			Colorized: getBoolOption(adapterConfig.Options, "colorized", false),
		}), nil
	case "file":
		config := adapters.FileConfig{
			FilePath:   getStringOption(adapterConfig.Options, "file_path", ""),
			Format:     getStringOption(adapterConfig.Options, "format", "json"),
			MaxSize:    int64(getIntOption(adapterConfig.Options, "max_size", 0)),
			MaxBackups: getIntOption(adapterConfig.Options, "max_backups", 10),
			CreateDirs: getBoolOption(adapterConfig.Options, "create_dirs", true),
		}
		if config.FilePath == "" {
			return nil, fmt.Errorf("file_path is required for file adapter")
		}
		return adapters.NewFileAdapter(adapterConfig.Name, config)
	case "betterstack":
		config := adapters.BetterstackConfig{
			SourceToken:   getStringOption(adapterConfig.Options, "source_token", ""),
			Endpoint:      getStringOption(adapterConfig.Options, "endpoint", ""),
			BatchSize:     getIntOption(adapterConfig.Options, "batch_size", 100),
			FlushInterval: getDurationOption(adapterConfig.Options, "flush_interval", 5*time.Second),
			MaxRetries:    getIntOption(adapterConfig.Options, "max_retries", 3),
			RetryBackoff:  getDurationOption(adapterConfig.Options, "retry_backoff", time.Second),
			Timeout:       getDurationOption(adapterConfig.Options, "timeout", 30*time.Second),
			UserAgent:     getStringOption(adapterConfig.Options, "user_agent", ""),
			Headers:       getStringMapOption(adapterConfig.Options, "headers"),
		}
		if config.SourceToken == "" {
			return nil, fmt.Errorf("source_token is required for betterstack adapter")
		}
		return adapters.NewBetterstackAdapter(adapterConfig.Name, config)
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", adapterConfig.Type)
	}
}

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if value, exists := options[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getIntOption(options map[string]interface{}, key string, defaultValue int) int {
	if value, exists := options[key]; exists {
		switch v := value.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultValue
}

// getDurationOption accepts "5s" style strings, time.Duration, or whole seconds
func getDurationOption(options map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	if value, exists := options[key]; exists {
		switch v := value.(type) {
		case time.Duration:
			return v
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		case int:
			return time.Duration(v) * time.Second
		case float64:
			return time.Duration(v * float64(time.Second))
		}
	}
	return defaultValue
}

func getStringMapOption(options map[string]interface{}, key string) map[string]string {
	out := make(map[string]string)
	switch v := options[key].(type) {
	case map[string]string:
		for k, val := range v {
			out[k] = val
		}
	case map[string]interface{}:
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := options[key]; exists {
		if boolVal, ok := value.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}
