package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/carecost"
	"github.com/temoto/robotstxt"
)

// maxSitemaps bounds how many sitemap files one discovery reads, index
// children included.
const maxSitemaps = 20

// Ensure SitemapService implements carecost.SitemapService.
var _ carecost.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps. Requests go through
// the caller's Fetcher.
type SitemapService struct{}

// NewSitemapService creates a SitemapService.
func NewSitemapService() *SitemapService {
	return &SitemapService{}
}

// DiscoverURLs finds all URLs from the sitemaps of the host of siteURL.
// URLs are deduplicated and keep sitemap order.
func (s *SitemapService) DiscoverURLs(ctx context.Context, fetcher carecost.Fetcher, siteURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, carecost.Errorf(carecost.EINVALID, "invalid site URL %q", siteURL)
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}

	sitemapURLs, err := s.findSitemapURLs(ctx, fetcher, base)
	if err != nil {
		return nil, err
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		found, err := s.processSitemap(ctx, fetcher, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, loc := range found {
			if !seenURLs[loc] {
				seenURLs[loc] = true
				urls = append(urls, loc)
			}
		}
	}
	return urls, nil
}

// findSitemapURLs reads Sitemap directives from robots.txt and falls back
// to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, fetcher carecost.Fetcher, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	if body, status, err := get(ctx, fetcher, robotsURL.String()); err == nil {
		if data, err := robotstxt.FromStatusAndBytes(status, body); err == nil && len(data.Sitemaps) > 0 {
			return data.Sitemaps, nil
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return []string{base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. A missing sitemap yields no URLs.
func (s *SitemapService) processSitemap(ctx context.Context, fetcher carecost.Fetcher, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || len(seen) >= maxSitemaps {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, status, err := get(ctx, fetcher, sitemapURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, loc := range locs(root, "sitemap") {
			found, err := s.processSitemap(ctx, fetcher, loc, seen)
			if err != nil {
				return nil, err
			}
			urls = append(urls, found...)
		}
		return urls, nil
	}
	return locs(root, "url"), nil
}

// locs returns the <loc> text of every child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}
