package crawl

import (
	"regexp"
	"time"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/extract"
)

// Options bounds and tunes a hospital crawl. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// MaxDepth is the deepest link level followed. Seeds are depth 0.
	MaxDepth int

	// MaxPages caps page fetch attempts per hospital.
	MaxPages int

	// MaxFiles caps structured file downloads per hospital.
	MaxFiles int

	// Delay is the pause after every request to a host. Jitter widens it by
	// a uniformly random amount in [-Jitter, +Jitter].
	Delay  time.Duration
	Jitter time.Duration

	// RequestsPerSecond caps the request rate across all hospitals.
	// Zero disables the cap.
	RequestsPerSecond float64

	// Concurrency is the number of hospitals crawled at once.
	Concurrency int

	// WindowRadius is the context kept around a code occurrence.
	WindowRadius int

	// Bounds is the range of accepted prices.
	Bounds carecost.Bounds

	// StopOnFirst ends a hospital crawl once every code has a text or
	// table price.
	StopOnFirst bool

	// RetryDelays are the backoff delays between attempts of a retryable
	// fetch. Their count is the retry budget.
	RetryDelays []time.Duration

	// SeedPaths are joined to the website root and enqueued at depth 0.
	SeedPaths []string

	// SitemapSeeds caps how many pricing-related sitemap URLs are enqueued
	// at depth 0 next to the seed paths. Zero disables sitemap seeding.
	SitemapSeeds int

	// Exclude rejects URLs whose path and query match any pattern.
	Exclude []*regexp.Regexp

	// RespectRobots consults robots.txt before enqueueing URLs.
	RespectRobots bool
}

// DefaultSeedPaths are common locations of hospital price pages.
func DefaultSeedPaths() []string {
	return []string{"/price-transparency", "/pricing", "/billing"}
}

// DefaultExclude matches login, search, calendar, feedback and error pages.
func DefaultExclude() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(log-?in|log-?out|sign-?in|sign-?up)\b`),
		regexp.MustCompile(`(?i)(\bsearch\b|[?&](q|s|query)=)`),
		regexp.MustCompile(`(?i)\b(calendar|events?/\d{4})\b`),
		regexp.MustCompile(`(?i)\b(contact|feedback)\b`),
		regexp.MustCompile(`(?i)/(404|403|500|error)([./_-]|$)`),
	}
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxDepth:          3,
		MaxPages:          50,
		MaxFiles:          5,
		Delay:             time.Second,
		Jitter:            500 * time.Millisecond,
		RequestsPerSecond: 5,
		Concurrency:       4,
		WindowRadius:      extract.DefaultWindowRadius,
		Bounds:            carecost.DefaultBounds,
		StopOnFirst:       true,
		RetryDelays:       DefaultRetryDelays(),
		SeedPaths:         DefaultSeedPaths(),
		SitemapSeeds:      10,
		Exclude:           DefaultExclude(),
	}
}

// Validate returns an EINVALID error describing the first bad field.
func (o Options) Validate() error {
	switch {
	case o.MaxDepth < 0:
		return carecost.Errorf(carecost.EINVALID, "max depth must not be negative")
	case o.MaxPages <= 0:
		return carecost.Errorf(carecost.EINVALID, "max pages must be positive")
	case o.MaxFiles < 0:
		return carecost.Errorf(carecost.EINVALID, "max files must not be negative")
	case o.SitemapSeeds < 0:
		return carecost.Errorf(carecost.EINVALID, "sitemap seeds must not be negative")
	case o.Delay < 0 || o.Jitter < 0:
		return carecost.Errorf(carecost.EINVALID, "delay and jitter must not be negative")
	case o.Jitter > o.Delay:
		return carecost.Errorf(carecost.EINVALID, "jitter must not exceed delay")
	case o.RequestsPerSecond < 0:
		return carecost.Errorf(carecost.EINVALID, "requests per second must not be negative")
	case o.Concurrency <= 0:
		return carecost.Errorf(carecost.EINVALID, "concurrency must be positive")
	case o.WindowRadius <= 0:
		return carecost.Errorf(carecost.EINVALID, "window radius must be positive")
	}
	return o.Bounds.Validate()
}
