// Package source fetches raw named datasets from a directory, an HTTP base URL
// or Redis.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appdash/internal/config"
)

// ErrFetchFailure is returned when a dataset could not be read from its source
var ErrFetchFailure = errors.New("fetch_failure")

// Source fetches the raw bytes of a named dataset
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Kind() string
	Close() error
}

// New creates the source selected by configuration
func New(cfg *config.Config) (Source, error) {
	switch strings.ToLower(cfg.Source.Type) {
	case "", "dir":
		return NewDirSource(cfg.Source.DataDir), nil
	case "http":
		return NewHTTPSource(cfg.Source.BaseURL, cfg.Source.Timeout)
	case "redis":
		return NewRedisSource(cfg)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Source.Type)
	}
}

// validateName rejects names that could escape the source's namespace
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: dataset name is required", ErrFetchFailure)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid dataset name %q", ErrFetchFailure, name)
	}
	return nil
}
