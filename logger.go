package carecost

// CrawlLogger receives crawl events. Implementations must be safe for
// concurrent use because hospitals are crawled in parallel.
type CrawlLogger interface {
	Visited(url string, depth int, hospital *Hospital)
	Skipped(url string, reason SkipReason)
	Extracted(url string, candidates []PriceCandidate)
	Error(url string, err error)
}

// NopCrawlLogger discards every event.
type NopCrawlLogger struct{}

var _ CrawlLogger = NopCrawlLogger{}

func (NopCrawlLogger) Visited(string, int, *Hospital)     {}
func (NopCrawlLogger) Skipped(string, SkipReason)         {}
func (NopCrawlLogger) Extracted(string, []PriceCandidate) {}
func (NopCrawlLogger) Error(string, error)                {}
