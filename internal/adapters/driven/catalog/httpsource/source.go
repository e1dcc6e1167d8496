// Package httpsource fetches the catalog snapshot over HTTP.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/pricecollect/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.CatalogSource = (*Source)(nil)

// MaxSnapshotBytes bounds the response body.
const MaxSnapshotBytes = 64 << 20

// DefaultTimeout applies when no client is supplied.
const DefaultTimeout = 30 * time.Second

// Source downloads the snapshot from a URL.
// A successful response is remembered together with its ETag so an
// unchanged snapshot is not downloaded twice.
type Source struct {
	url     string
	client  *http.Client
	limiter *ratelimit.Limiter

	mu     sync.Mutex
	etag   string
	cached []byte
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// WithLimiter sets the rate limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Source) {
		s.limiter = l
	}
}

// New creates a source for url.
func New(url string, opts ...Option) *Source {
	s := &Source{
		url:     url,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: ratelimit.New(ratelimit.TargetCatalog),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the snapshot URL.
func (s *Source) Name() string {
	return s.url
}

// Fetch downloads the snapshot.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.mu.Lock()
	if s.etag != "" {
		req.Header.Set("If-None-Match", s.etag)
	}
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cached == nil {
			return nil, fmt.Errorf("%w: not modified but nothing cached", domain.ErrCatalogUnavailable)
		}
		return s.cached, nil
	case http.StatusTooManyRequests:
		s.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("%w: rate limited by %s", domain.ErrCatalogUnavailable, req.URL.Host)
	default:
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSnapshotBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrCatalogUnavailable, err)
	}
	if len(body) > MaxSnapshotBytes {
		return nil, fmt.Errorf("%w: snapshot larger than %d bytes", domain.ErrCatalogUnavailable, MaxSnapshotBytes)
	}

	s.mu.Lock()
	s.etag = resp.Header.Get("ETag")
	s.cached = body
	s.mu.Unlock()

	return body, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
