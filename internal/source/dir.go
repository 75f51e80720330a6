package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSource reads datasets as files from a local directory
type DirSource struct {
	dir string
}

// NewDirSource creates a source rooted at dir
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Fetch reads dir/name
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	return data, nil
}

// Kind returns "dir"
func (s *DirSource) Kind() string { return "dir" }

// Close is a no-op
func (s *DirSource) Close() error { return nil }

// Dir returns the directory datasets are read from
func (s *DirSource) Dir() string { return s.dir }
