package carecost

import "context"

// FrontierEntry is a URL waiting to be fetched. Entries are created when a
// link is accepted or a seed is enqueued and are consumed exactly once.
type FrontierEntry struct {
	URL      string
	Depth    int
	Score    int
	Hospital *Hospital
}

// SkipReason explains why a URL was not fetched.
type SkipReason string

// Skip reasons reported to CrawlLogger.Skipped.
const (
	SkipDepth            SkipReason = "depth"
	SkipBudget           SkipReason = "budget"
	SkipOffDomain        SkipReason = "off-domain"
	SkipBinary           SkipReason = "binary"
	SkipPDF              SkipReason = "pdf"
	SkipExcluded         SkipReason = "excluded"
	SkipVisited          SkipReason = "visited"
	SkipRobots           SkipReason = "robots"
	SkipDuplicateContent SkipReason = "duplicate-content"
	SkipNonHTML          SkipReason = "non-html"
	SkipScheme           SkipReason = "scheme"
)

// VisitedSet records URLs that were dequeued or rejected during one crawl.
// It only grows.
type VisitedSet interface {
	// Visit adds url and reports whether it was absent before the call.
	Visit(url string) bool

	// Has reports whether url has been added.
	Has(url string) bool

	// Len returns the number of distinct URLs added.
	Len() int
}

// DomainLimiter serializes requests to a host and spaces them out.
type DomainLimiter interface {
	// Acquire blocks until a request to domain may start. The returned
	// release func must be called once the request completes; the next
	// Acquire for the same domain waits out the inter-request delay measured
	// from that moment. Returns an error if the context is canceled.
	Acquire(ctx context.Context, domain string) (release func(), err error)
}

// LinkKind classifies a scored link by what the crawler does with it.
type LinkKind int

// Link kinds.
const (
	// LinkPage is a candidate HTML page.
	LinkPage LinkKind = iota

	// LinkPDF is recorded as a pricing document reference, not fetched.
	LinkPDF

	// LinkStructured is a CSV, XLSX, JSON or XML file.
	LinkStructured
)

// ScoredLink is an outbound link with its relevance score.
type ScoredLink struct {
	URL   string
	Text  string
	Score int
	Kind  LinkKind
}

// LinkScorer extracts and ranks same-domain links from a page.
type LinkScorer interface {
	// ScoreLinks returns the page's navigable same-domain links sorted by
	// score descending, ties kept in document order.
	ScoreLinks(page *Page, codes []string) []ScoredLink

	// ScoreURL scores a bare URL by its path alone. Used to order seeds.
	ScoreURL(rawURL string, codes []string) int
}
