package mock

import (
	"context"

	"github.com/fwojciec/carecost"
)

var _ carecost.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of carecost.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*carecost.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*carecost.Response, error) {
	return f.FetchFn(ctx, url)
}

var _ carecost.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of carecost.RobotsService.
type RobotsService struct {
	PolicyFn func(ctx context.Context, fetcher carecost.Fetcher, siteURL string) (carecost.RobotsPolicy, error)
}

func (s *RobotsService) Policy(ctx context.Context, fetcher carecost.Fetcher, siteURL string) (carecost.RobotsPolicy, error) {
	return s.PolicyFn(ctx, fetcher, siteURL)
}

var _ carecost.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of carecost.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn func(url string) bool
}

func (p *RobotsPolicy) Allowed(url string) bool {
	return p.AllowedFn(url)
}

var _ carecost.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of carecost.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, fetcher carecost.Fetcher, siteURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, fetcher carecost.Fetcher, siteURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, fetcher, siteURL)
}
