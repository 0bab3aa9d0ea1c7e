package mock

import (
	"sync"

	"github.com/fwojciec/carecost"
)

var _ carecost.CrawlLogger = (*CrawlLogger)(nil)

// CrawlLogger records every crawl event. Safe for concurrent use.
type CrawlLogger struct {
	mu sync.Mutex

	VisitedURLs []string
	Skips       []Skip
	Extractions map[string][]carecost.PriceCandidate
	Errors      []error
}

// Skip is a recorded Skipped event.
type Skip struct {
	URL    string
	Reason carecost.SkipReason
}

func (l *CrawlLogger) Visited(url string, _ int, _ *carecost.Hospital) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.VisitedURLs = append(l.VisitedURLs, url)
}

func (l *CrawlLogger) Skipped(url string, reason carecost.SkipReason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Skips = append(l.Skips, Skip{URL: url, Reason: reason})
}

func (l *CrawlLogger) Extracted(url string, candidates []carecost.PriceCandidate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Extractions == nil {
		l.Extractions = make(map[string][]carecost.PriceCandidate)
	}
	l.Extractions[url] = append(l.Extractions[url], candidates...)
}

func (l *CrawlLogger) Error(_ string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, err)
}

// SkipReasons returns the recorded reason for each skipped URL. When a URL
// was skipped more than once the first reason wins.
func (l *CrawlLogger) SkipReasons() map[string]carecost.SkipReason {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]carecost.SkipReason, len(l.Skips))
	for _, s := range l.Skips {
		if _, ok := out[s.URL]; !ok {
			out[s.URL] = s.Reason
		}
	}
	return out
}
