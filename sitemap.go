package carecost

import "context"

// SitemapService discovers page URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the URLs listed in the sitemaps of the host of
	// siteURL. Sitemaps announced in robots.txt are read first, falling
	// back to /sitemap.xml. Sitemap indexes are resolved recursively.
	// A site without sitemaps returns an empty slice, not nil. Every
	// request goes through fetcher.
	DiscoverURLs(ctx context.Context, fetcher Fetcher, siteURL string) ([]string, error)
}
