package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps a fetched dataset
const maxBodyBytes = 32 << 20

// HTTPSource fetches datasets as <baseURL>/<name>
type HTTPSource struct {
	baseURL  string
	client   *http.Client
	maxBytes int64
}

// NewHTTPSource creates a source for baseURL
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("source base URL is required for http source")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid source base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBodyBytes,
	}, nil
}

// Fetch GETs the named dataset. Any non-2xx status is a fetch failure.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailure, resp.StatusCode, req.URL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: dataset %q exceeds %d bytes", ErrFetchFailure, name, s.maxBytes)
	}
	return data, nil
}

// Kind returns "http"
func (s *HTTPSource) Kind() string { return "http" }

// Close releases idle connections
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
