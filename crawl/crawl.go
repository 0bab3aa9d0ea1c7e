// Package crawl runs the hospital crawl. A Crawler walks one hospital
// website breadth-first within depth, page and file budgets, hands each page
// to the cost extractor and link scorer, and downloads linked structured
// files. A Searcher crawls every hospital near a location in parallel.
package crawl

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/bloom"
)

var _ carecost.HospitalCrawler = (*Crawler)(nil)

// visitedCapacity sizes the visited-set pre-filter.
const visitedCapacity = 10000

// Crawler crawls hospital websites for procedure prices.
type Crawler struct {
	Fetcher    carecost.Fetcher
	Normalizer carecost.Normalizer
	Extractor  carecost.CostExtractor
	Links      carecost.LinkScorer
	Limiter    carecost.DomainLimiter

	// Files maps structured formats to their extractors. Links to formats
	// without an extractor are ignored.
	Files map[carecost.StructuredFormat]carecost.FileExtractor

	// Robots is consulted when Options.RespectRobots is set.
	Robots carecost.RobotsService

	// Sitemaps, when set, contributes pricing-related seeds.
	Sitemaps carecost.SitemapService

	Logger  carecost.CrawlLogger
	Options Options
}

// crawlSession is the state of one CrawlHospital call.
type crawlSession struct {
	*Crawler
	hospital *carecost.Hospital
	codes    []string
	logger   carecost.CrawlLogger
	result   *carecost.HospitalResult
	frontier *Frontier
	paced    *pacedFetcher
	pending  map[string]bool
	hashes   map[uint64]bool
}

// CrawlHospital crawls the hospital's website for prices of codes.
func (c *Crawler) CrawlHospital(ctx context.Context, h *carecost.Hospital, codes []string) *carecost.HospitalResult {
	result := &carecost.HospitalResult{
		Hospital: h,
		Stats:    carecost.CrawlStats{Skipped: make(map[carecost.SkipReason]int)},
	}
	if !h.HasWebsite() {
		result.Status = carecost.HospitalNoWebsite
		return result
	}
	seed, err := carecost.NormalizeWebsite(h.Website)
	if err != nil {
		result.Status = carecost.HospitalError
		result.Err = carecost.ErrorMessage(err)
		return result
	}

	logger := c.Logger
	if logger == nil {
		logger = carecost.NopCrawlLogger{}
	}
	s := &crawlSession{
		Crawler:  c,
		hospital: h,
		codes:    codes,
		logger:   &countingLogger{CrawlLogger: logger, stats: &result.Stats},
		result:   result,
		pending:  make(map[string]bool, len(codes)),
		hashes:   make(map[uint64]bool),
	}
	for _, code := range codes {
		s.pending[code] = true
	}

	s.frontier = NewFrontier(h, seed, FrontierConfig{
		MaxDepth: c.Options.MaxDepth,
		MaxPages: c.Options.MaxPages,
		MaxFiles: c.Options.MaxFiles,
		Exclude:  c.Options.Exclude,
	}, bloom.NewVisitedSet(visitedCapacity), s.logger)
	s.paced = &pacedFetcher{fetcher: c.Fetcher, limiter: c.Limiter, domain: s.frontier.Domain()}

	if c.Options.RespectRobots && c.Robots != nil {
		if policy, err := c.Robots.Policy(ctx, s.paced, seed); err == nil {
			s.frontier.SetRobots(policy)
		}
	}

	s.seed(ctx, seed)
	s.run(ctx)
	s.finish()
	return result
}

// seed enqueues the website root, the configured pricing paths and the
// best scoring sitemap URLs.
func (s *crawlSession) seed(ctx context.Context, root string) {
	s.frontier.EnqueueSeed(root, s.Links.ScoreURL(root, s.codes))
	for _, p := range s.Options.SeedPaths {
		u, ok := resolve(root, p)
		if !ok {
			continue
		}
		s.frontier.EnqueueSeed(u, s.Links.ScoreURL(u, s.codes))
	}

	if s.Sitemaps == nil || s.Options.SitemapSeeds == 0 {
		return
	}
	urls, err := s.Sitemaps.DiscoverURLs(ctx, s.paced, root)
	if err != nil {
		s.logger.Error(root, err)
		return
	}
	for _, link := range topScored(urls, s.codes, s.Links, s.Options.SitemapSeeds) {
		s.frontier.EnqueueSeed(link.URL, link.Score)
	}
}

// topScored returns at most n of urls with a positive score, best first.
// Equal scores keep sitemap order.
func topScored(urls, codes []string, links carecost.LinkScorer, n int) []carecost.ScoredLink {
	var scored []carecost.ScoredLink
	for _, u := range urls {
		if score := links.ScoreURL(u, codes); score > 0 {
			scored = append(scored, carecost.ScoredLink{URL: u, Score: score})
		}
	}
	slices.SortStableFunc(scored, func(a, b carecost.ScoredLink) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func (s *crawlSession) run(ctx context.Context) {
	for {
		// Cancellation is checked before every dequeue.
		if ctx.Err() != nil {
			return
		}
		entry, ok := s.frontier.Next()
		if !ok {
			return
		}
		s.frontier.MarkFetched()
		s.result.Stats.PagesAttempted++

		if s.visit(ctx, entry) {
			return
		}
	}
}

// visit fetches and processes one entry. Reports whether the crawl should
// stop.
func (s *crawlSession) visit(ctx context.Context, entry carecost.FrontierEntry) bool {
	resp, err := s.fetch(ctx, entry.URL)
	if err != nil {
		s.result.Stats.PagesFailed++
		s.result.Err = err.Error()
		s.logger.Error(entry.URL, err)
		return ctx.Err() != nil
	}

	if !resp.IsHTML() {
		s.result.Stats.PagesFailed++
		if format := carecost.FormatFromContentType(resp.ContentType); format != carecost.FormatUnknown {
			s.extractFile(resp.URL, format, resp.Body)
			return false
		}
		s.logger.Skipped(entry.URL, carecost.SkipNonHTML)
		return false
	}

	if resp.URL != entry.URL && carecost.Domain(resp.URL) != s.frontier.Domain() {
		s.result.Stats.PagesFailed++
		s.logger.Skipped(resp.URL, carecost.SkipOffDomain)
		return false
	}

	if u, ok := NormalizeURL(resp.URL); ok && u != entry.URL && !s.frontier.ClaimRedirect(u) {
		s.result.Stats.PagesFetched++
		s.logger.Skipped(resp.URL, carecost.SkipVisited)
		return false
	}

	page, err := s.Normalizer.Normalize(resp)
	if err != nil {
		s.result.Stats.PagesFailed++
		s.logger.Error(entry.URL, err)
		return false
	}
	page.Depth = entry.Depth
	page.Hospital = s.hospital
	s.result.Stats.PagesFetched++
	s.logger.Visited(entry.URL, entry.Depth, s.hospital)

	hash := xxhash.Sum64String(page.Text)
	if s.hashes[hash] {
		s.logger.Skipped(entry.URL, carecost.SkipDuplicateContent)
		return false
	}
	s.hashes[hash] = true

	if candidates := s.Extractor.Extract(page, s.codes); len(candidates) > 0 {
		s.record(entry.URL, candidates)
		if s.done() {
			return true
		}
	}

	for _, link := range s.Links.ScoreLinks(page, s.codes) {
		if link.Kind == carecost.LinkStructured {
			s.followFile(ctx, link.URL)
			continue
		}
		s.frontier.AcceptIfNew(link.URL, entry.Depth+1, link.Score)
	}
	return ctx.Err() != nil
}

// fetch makes a paced, retried request. Each attempt holds the domain slot
// only for its own duration.
func (s *crawlSession) fetch(ctx context.Context, url string) (*carecost.Response, error) {
	onRetry := func(url string, attempt int, err error) {
		s.logger.Error(url, fmt.Errorf("retry attempt %d: %w", attempt, err))
	}
	return FetchWithRetry(ctx, url, s.paced.Fetch, onRetry, s.Options.RetryDelays)
}

// pacedFetcher makes single attempts that hold the session's domain slot.
// Page, file, robots.txt and sitemap requests all pass through it, so the
// per-domain delay separates every request of a session.
type pacedFetcher struct {
	fetcher carecost.Fetcher
	limiter carecost.DomainLimiter
	domain  string
}

func (f *pacedFetcher) Fetch(ctx context.Context, url string) (*carecost.Response, error) {
	if f.limiter != nil {
		release, err := f.limiter.Acquire(ctx, f.domain)
		if err != nil {
			return nil, err
		}
		defer release()
	}
	return f.fetcher.Fetch(ctx, url)
}

func (s *crawlSession) followFile(ctx context.Context, rawURL string) {
	format := carecost.FormatFromURL(rawURL)
	if s.Files[format] == nil {
		return
	}
	if !s.frontier.AcceptFile(rawURL) {
		return
	}
	u, _ := NormalizeURL(rawURL)
	resp, err := s.fetch(ctx, u)
	if err != nil {
		s.logger.Error(u, err)
		return
	}
	s.result.Stats.FilesFetched++
	s.extractFile(u, format, resp.Body)
}

func (s *crawlSession) extractFile(url string, format carecost.StructuredFormat, data []byte) {
	fx := s.Files[format]
	if fx == nil {
		return
	}
	found := fx.ExtractFromFile(data, s.codes)
	for i := range found {
		found[i].Currency = carecost.CurrencyUSD
		found[i].SourceURL = url
		if found[i].Method == "" {
			found[i].Method = format.Method()
		}
	}
	if len(found) > 0 {
		s.record(url, found)
	}
}

func (s *crawlSession) record(url string, candidates []carecost.PriceCandidate) {
	s.logger.Extracted(url, candidates)
	s.result.Candidates = append(s.result.Candidates, candidates...)
	for _, c := range candidates {
		if c.Method.Confident() {
			delete(s.pending, c.Code)
		}
	}
}

func (s *crawlSession) done() bool {
	return s.Options.StopOnFirst && len(s.pending) == 0
}

// finish records PDF references and sets the final status. Only PDFs whose
// link scored as pricing related become pdf-reference candidates.
func (s *crawlSession) finish() {
	var refs []carecost.PriceCandidate
	for _, p := range s.frontier.PDFs() {
		s.result.PDFs = append(s.result.PDFs, p.URL)
		if p.Score <= 0 {
			continue
		}
		for _, code := range s.codes {
			refs = append(refs, carecost.PriceCandidate{
				Code:      code,
				Currency:  carecost.CurrencyUSD,
				SourceURL: p.URL,
				Method:    carecost.MethodPDFReference,
			})
		}
	}
	if len(refs) > 0 {
		s.logger.Extracted(s.hospital.Website, refs)
		s.result.Candidates = append(s.result.Candidates, refs...)
	}

	if s.result.HasPrice() {
		s.result.Status = carecost.HospitalFound
		s.result.Err = ""
	} else {
		s.result.Status = carecost.HospitalNotFound
	}
}

// countingLogger tallies skip reasons into the crawl stats before passing
// events on.
type countingLogger struct {
	carecost.CrawlLogger
	stats *carecost.CrawlStats
}

func (l *countingLogger) Skipped(url string, reason carecost.SkipReason) {
	l.stats.Skipped[reason]++
	l.CrawlLogger.Skipped(url, reason)
}
