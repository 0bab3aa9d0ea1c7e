package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/carecost"
	"golang.org/x/sync/errgroup"
)

// Searcher finds hospitals near a location and crawls each one.
type Searcher struct {
	Finder  carecost.HospitalFinder
	Crawler carecost.HospitalCrawler
	Logger  carecost.CrawlLogger

	// Concurrency is the number of hospitals crawled at once.
	// Defaults to 1.
	Concurrency int

	// Now returns the search timestamp. Defaults to time.Now.
	Now func() time.Time
}

// collector receives hospital results from workers.
type collector struct {
	mu      sync.Mutex
	results []*carecost.HospitalResult
}

func (c *collector) add(i int, r *carecost.HospitalResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[i] = r
}

// Search crawls every hospital returned for the query. A discovery failure
// is logged and reported as a result with status no-hospitals. Hospital
// results keep the discovery order. Only an invalid query returns an error.
func (s *Searcher) Search(ctx context.Context, q carecost.SearchQuery) (*carecost.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = carecost.NopCrawlLogger{}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	result := &carecost.SearchResult{
		Location:  q.Location,
		Codes:     q.Codes,
		Names:     q.Names,
		Status:    carecost.SearchOK,
		CreatedAt: now().UTC(),
	}

	hospitals, err := s.Finder.FindHospitals(ctx, q.HospitalQuery)
	if err != nil {
		logger.Error(q.Location, err)
		hospitals = nil
	}
	if q.Limit > 0 && len(hospitals) > q.Limit {
		hospitals = hospitals[:q.Limit]
	}
	if len(hospitals) == 0 {
		result.Status = carecost.SearchNoHospitals
		result.Hospitals = []*carecost.HospitalResult{}
		return result, nil
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	col := &collector{results: make([]*carecost.HospitalResult, len(hospitals))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, h := range hospitals {
		g.Go(func() error {
			col.add(i, s.Crawler.CrawlHospital(gctx, h, q.Codes))
			return nil
		})
	}
	_ = g.Wait()

	result.Hospitals = col.results
	return result, nil
}
