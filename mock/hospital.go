package mock

import (
	"context"

	"github.com/fwojciec/carecost"
)

var _ carecost.HospitalFinder = (*HospitalFinder)(nil)

// HospitalFinder is a mock implementation of carecost.HospitalFinder.
type HospitalFinder struct {
	FindHospitalsFn func(ctx context.Context, q carecost.HospitalQuery) ([]*carecost.Hospital, error)
}

func (f *HospitalFinder) FindHospitals(ctx context.Context, q carecost.HospitalQuery) ([]*carecost.Hospital, error) {
	return f.FindHospitalsFn(ctx, q)
}

var _ carecost.HospitalCrawler = (*HospitalCrawler)(nil)

// HospitalCrawler is a mock implementation of carecost.HospitalCrawler.
type HospitalCrawler struct {
	CrawlHospitalFn func(ctx context.Context, h *carecost.Hospital, codes []string) *carecost.HospitalResult
}

func (c *HospitalCrawler) CrawlHospital(ctx context.Context, h *carecost.Hospital, codes []string) *carecost.HospitalResult {
	return c.CrawlHospitalFn(ctx, h, codes)
}
