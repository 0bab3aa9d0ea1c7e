package crawl

import (
	"container/heap"
	"regexp"

	"github.com/fwojciec/carecost"
)

// binaryExtensions are never fetched as pages.
var binaryExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".doc": true, ".docx": true, ".ppt": true, ".pptx": true, ".xls": true,
	".xlsx": true, ".zip": true, ".mp3": true, ".mp4": true, ".mov": true,
	".avi": true, ".wav": true, ".webm": true,
}

// FrontierConfig bounds a Frontier.
type FrontierConfig struct {
	MaxDepth int
	MaxPages int
	MaxFiles int
	Exclude  []*regexp.Regexp
}

// Frontier is the work queue of one hospital crawl. Entries come out in
// breadth-first order: every pending entry at depth d is dequeued before any
// entry at depth d+1. Within a depth, higher scores come first and equal
// scores keep discovery order. Every URL passes through the VisitedSet once,
// so none is queued twice.
//
// A Frontier is owned by a single crawl and is not safe for concurrent use.
type Frontier struct {
	hospital *carecost.Hospital
	domain   string
	cfg      FrontierConfig
	visited  carecost.VisitedSet
	logger   carecost.CrawlLogger
	robots   carecost.RobotsPolicy

	queue   entryHeap
	loaded  map[string]bool
	seq     int
	fetched int
	files   int
	pdfs    []carecost.FrontierEntry
}

// NewFrontier creates a Frontier confined to the registrable domain of
// seedURL. The logger receives a Skipped event for every rejected URL.
func NewFrontier(hospital *carecost.Hospital, seedURL string, cfg FrontierConfig, visited carecost.VisitedSet, logger carecost.CrawlLogger) *Frontier {
	if logger == nil {
		logger = carecost.NopCrawlLogger{}
	}
	return &Frontier{
		hospital: hospital,
		domain:   carecost.Domain(seedURL),
		cfg:      cfg,
		visited:  visited,
		logger:   logger,
		loaded:   make(map[string]bool),
	}
}

// SetRobots installs a robots.txt policy consulted before enqueueing.
func (f *Frontier) SetRobots(p carecost.RobotsPolicy) {
	f.robots = p
}

// Domain returns the registrable domain the crawl is confined to.
func (f *Frontier) Domain() string {
	return f.domain
}

// EnqueueSeed adds a depth-0 entry.
func (f *Frontier) EnqueueSeed(url string, score int) bool {
	return f.AcceptIfNew(url, 0, score)
}

// AcceptIfNew queues url at depth unless it was seen before or falls
// outside the crawl bounds. Rejected URLs are added to the visited set too.
// PDF links are recorded as references instead of being queued.
func (f *Frontier) AcceptIfNew(rawURL string, depth, score int) bool {
	u, ok := NormalizeURL(rawURL)
	if !ok {
		f.logger.Skipped(rawURL, carecost.SkipScheme)
		return false
	}
	if f.visited.Has(u) {
		f.logger.Skipped(u, carecost.SkipVisited)
		return false
	}

	if reason, rejected := f.reject(u, depth); rejected {
		f.visited.Visit(u)
		if reason == carecost.SkipPDF {
			f.pdfs = append(f.pdfs, carecost.FrontierEntry{URL: u, Depth: depth, Score: score, Hospital: f.hospital})
		}
		f.logger.Skipped(u, reason)
		return false
	}

	f.visited.Visit(u)
	heap.Push(&f.queue, queued{
		entry: carecost.FrontierEntry{URL: u, Depth: depth, Score: score, Hospital: f.hospital},
		seq:   f.seq,
	})
	f.seq++
	return true
}

func (f *Frontier) reject(u string, depth int) (carecost.SkipReason, bool) {
	ext := extension(u)
	switch {
	case depth > f.cfg.MaxDepth:
		return carecost.SkipDepth, true
	case f.fetched >= f.cfg.MaxPages:
		return carecost.SkipBudget, true
	case carecost.Domain(u) != f.domain:
		return carecost.SkipOffDomain, true
	case ext == ".pdf":
		return carecost.SkipPDF, true
	case binaryExtensions[ext]:
		return carecost.SkipBinary, true
	case f.excluded(u):
		return carecost.SkipExcluded, true
	case f.robots != nil && !f.robots.Allowed(u):
		return carecost.SkipRobots, true
	}
	return "", false
}

func (f *Frontier) excluded(u string) bool {
	target := pathAndQuery(u)
	for _, re := range f.cfg.Exclude {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// ClaimRedirect records rawURL as the final URL of a followed redirect.
// It returns false when that page was already dequeued or reached through
// another redirect, in which case the response is a repeat and should be
// dropped. A queued entry for a claimed URL is skipped by Next.
func (f *Frontier) ClaimRedirect(rawURL string) bool {
	u, ok := NormalizeURL(rawURL)
	if !ok || f.loaded[u] {
		return false
	}
	f.loaded[u] = true
	f.visited.Visit(u)
	return true
}

// AcceptFile admits a structured file link for download. Files obey the
// domain, exclusion and robots bounds, the file budget and the visited
// set, but not the depth or page budget.
func (f *Frontier) AcceptFile(rawURL string) bool {
	u, ok := NormalizeURL(rawURL)
	if !ok {
		f.logger.Skipped(rawURL, carecost.SkipScheme)
		return false
	}
	if f.visited.Has(u) {
		f.logger.Skipped(u, carecost.SkipVisited)
		return false
	}
	f.visited.Visit(u)

	var reason carecost.SkipReason
	switch {
	case f.files >= f.cfg.MaxFiles:
		reason = carecost.SkipBudget
	case carecost.Domain(u) != f.domain:
		reason = carecost.SkipOffDomain
	case f.excluded(u):
		reason = carecost.SkipExcluded
	case f.robots != nil && !f.robots.Allowed(u):
		reason = carecost.SkipRobots
	default:
		f.files++
		return true
	}
	f.logger.Skipped(u, reason)
	return false
}

// Next dequeues the next entry, passing over entries whose page was
// already loaded through a redirect. Returns false when the queue is empty
// or the page budget is spent.
func (f *Frontier) Next() (carecost.FrontierEntry, bool) {
	for f.fetched < f.cfg.MaxPages && f.queue.Len() > 0 {
		q, _ := heap.Pop(&f.queue).(queued)
		if f.loaded[q.entry.URL] {
			f.logger.Skipped(q.entry.URL, carecost.SkipVisited)
			continue
		}
		f.loaded[q.entry.URL] = true
		return q.entry, true
	}
	return carecost.FrontierEntry{}, false
}

// MarkFetched counts one page fetch attempt against the budget.
func (f *Frontier) MarkFetched() {
	f.fetched++
}

// Fetched returns the number of page fetch attempts so far.
func (f *Frontier) Fetched() int {
	return f.fetched
}

// PDFs returns the PDF references found, in discovery order.
func (f *Frontier) PDFs() []carecost.FrontierEntry {
	return f.pdfs
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	return f.queue.Len()
}

type queued struct {
	entry carecost.FrontierEntry
	seq   int
}

// entryHeap orders by depth ascending, score descending, then discovery
// order.
type entryHeap []queued

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.entry.Depth != b.entry.Depth {
		return a.entry.Depth < b.entry.Depth
	}
	if a.entry.Score != b.entry.Score {
		return a.entry.Score > b.entry.Score
	}
	return a.seq < b.seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
