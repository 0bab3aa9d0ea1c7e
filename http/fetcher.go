// Package http provides the net/http implementation of carecost.Fetcher and
// a robots.txt service backed by temoto/robotstxt.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/carecost"
)

// DefaultFetchTimeout bounds a single request, body included.
const DefaultFetchTimeout = 15 * time.Second

// DefaultMaxBodySize caps how much of a response body is read. Price
// transparency files can be large; anything past the cap is dropped.
const DefaultMaxBodySize = 32 << 20

// DefaultUserAgent identifies the crawler to hospital sites.
const DefaultUserAgent = "carecost/1.0 (+procedure price lookup)"

// Ensure Fetcher implements carecost.Fetcher at compile time.
var _ carecost.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents with plain HTTP GET requests. It makes a
// single attempt per call; retries belong to the caller.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBody   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets how many body bytes are read at most.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves url. Transport failures and non-200 statuses are
// returned as *carecost.FetchError. The body is fully read and closed
// before Fetch returns.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*carecost.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &carecost.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/csv,application/json,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &carecost.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &carecost.FetchError{URL: url, StatusCode: resp.StatusCode, ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, &carecost.FetchError{URL: url, StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
	}

	return &carecost.Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}
