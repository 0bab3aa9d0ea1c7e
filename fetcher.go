package carecost

import "context"

// Fetcher retrieves documents over HTTP.
type Fetcher interface {
	// Fetch issues a single GET for url. Any status other than 200 returns a
	// *FetchError. Callers decide whether to retry and whether the content
	// type is acceptable.
	Fetch(ctx context.Context, url string) (*Response, error)
}

// RobotsPolicy reports whether a URL may be crawled.
type RobotsPolicy interface {
	Allowed(url string) bool
}

// RobotsService loads the robots.txt policy for a site.
type RobotsService interface {
	// Policy returns the policy for the host of siteURL, reading robots.txt
	// through fetcher so the request is paced like any other. A missing or
	// unreadable robots.txt allows everything.
	Policy(ctx context.Context, fetcher Fetcher, siteURL string) (RobotsPolicy, error)
}
