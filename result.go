package carecost

import (
	"context"
	"math"
	"slices"
	"time"
)

// Summary aggregates the priced candidates for one code.
type Summary struct {
	Count  int             `json:"count"`
	Min    float64         `json:"min"`
	Max    float64         `json:"max"`
	Avg    float64         `json:"avg"`
	Median float64         `json:"median"`
	Best   *PriceCandidate `json:"best,omitempty"`
}

// Summarize aggregates candidates. PDF references are ignored. Best is the
// lowest priced candidate, the earliest one on ties.
func Summarize(candidates []PriceCandidate) Summary {
	var s Summary
	var values []float64
	var sum float64
	for i := range candidates {
		c := candidates[i]
		if !c.Priced() {
			continue
		}
		if s.Best == nil || c.Value < s.Best.Value {
			s.Best = &c
		}
		values = append(values, c.Value)
		sum += c.Value
	}
	if len(values) == 0 {
		return s
	}
	slices.Sort(values)
	s.Count = len(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Avg = sum / float64(len(values))
	s.Median = median(values)
	return s
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// HospitalStatus describes the outcome of one hospital crawl.
type HospitalStatus string

// Hospital statuses.
const (
	HospitalFound     HospitalStatus = "found"
	HospitalNotFound  HospitalStatus = "not found"
	HospitalNoWebsite HospitalStatus = "no website"
	HospitalError     HospitalStatus = "error"
)

// CrawlStats holds diagnostic counts for one hospital crawl.
type CrawlStats struct {
	PagesAttempted int                `json:"pages_attempted"`
	PagesFetched   int                `json:"pages_fetched"`
	PagesFailed    int                `json:"pages_failed"`
	FilesFetched   int                `json:"files_fetched"`
	Skipped        map[SkipReason]int `json:"skipped,omitempty"`
}

// HospitalResult is everything found on one hospital's website.
type HospitalResult struct {
	Hospital   *Hospital        `json:"hospital"`
	Status     HospitalStatus   `json:"status"`
	Candidates []PriceCandidate `json:"candidates"`
	PDFs       []string         `json:"pdfs,omitempty"`
	Stats      CrawlStats       `json:"stats"`
	Err        string           `json:"error,omitempty"`
}

// CandidatesFor returns the candidates found for code.
func (r *HospitalResult) CandidatesFor(code string) []PriceCandidate {
	var out []PriceCandidate
	for _, c := range r.Candidates {
		if c.Code == code {
			out = append(out, c)
		}
	}
	return out
}

// Best returns the lowest price found for code, or nil.
func (r *HospitalResult) Best(code string) *PriceCandidate {
	return Summarize(r.CandidatesFor(code)).Best
}

// HasPrice reports whether any priced candidate was found.
func (r *HospitalResult) HasPrice() bool {
	for _, c := range r.Candidates {
		if c.Priced() {
			return true
		}
	}
	return false
}

// SearchStatus describes the outcome of a multi-hospital search.
type SearchStatus string

// Search statuses.
const (
	SearchOK          SearchStatus = "ok"
	SearchNoHospitals SearchStatus = "no-hospitals"
)

// SearchResult is the outcome of crawling every hospital near a location.
type SearchResult struct {
	ID        string            `json:"id,omitempty"`
	Location  string            `json:"location"`
	Codes     []string          `json:"codes"`
	Names     map[string]string `json:"names,omitempty"`
	Status    SearchStatus      `json:"status"`
	Hospitals []*HospitalResult `json:"hospitals"`
	CreatedAt time.Time         `json:"created_at"`
}

// Candidates returns every candidate for code across hospitals.
func (r *SearchResult) Candidates(code string) []PriceCandidate {
	var out []PriceCandidate
	for _, h := range r.Hospitals {
		out = append(out, h.CandidatesFor(code)...)
	}
	return out
}

// Summary aggregates all candidates for code.
func (r *SearchResult) Summary(code string) Summary {
	return Summarize(r.Candidates(code))
}

// BestPrice is the lowest price for a code and where it came from.
type BestPrice struct {
	Candidate PriceCandidate `json:"candidate"`
	Hospital  *Hospital      `json:"hospital"`
	SearchID  string         `json:"search_id,omitempty"`
	Location  string         `json:"location,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitzero"`
}

// Best returns the lowest price for code across hospitals, or nil.
func (r *SearchResult) Best(code string) *BestPrice {
	var best *BestPrice
	for _, h := range r.Hospitals {
		c := h.Best(code)
		if c == nil {
			continue
		}
		if best == nil || c.Value < best.Candidate.Value {
			best = &BestPrice{
				Candidate: *c,
				Hospital:  h.Hospital,
				SearchID:  r.ID,
				Location:  r.Location,
				CreatedAt: r.CreatedAt,
			}
		}
	}
	return best
}

// PageSummary is the result-sink view of one page.
type PageSummary struct {
	Hospital *Hospital          `json:"hospital"`
	Codes    map[string]Summary `json:"codes"`
}

// Pages groups candidates by the URL they were found on.
func (r *SearchResult) Pages() map[string]*PageSummary {
	grouped := make(map[string]map[string][]PriceCandidate)
	owners := make(map[string]*Hospital)
	for _, h := range r.Hospitals {
		for _, c := range h.Candidates {
			if !c.Priced() {
				continue
			}
			if grouped[c.SourceURL] == nil {
				grouped[c.SourceURL] = make(map[string][]PriceCandidate)
				owners[c.SourceURL] = h.Hospital
			}
			grouped[c.SourceURL][c.Code] = append(grouped[c.SourceURL][c.Code], c)
		}
	}

	pages := make(map[string]*PageSummary, len(grouped))
	for u, byCode := range grouped {
		ps := &PageSummary{Hospital: owners[u], Codes: make(map[string]Summary, len(byCode))}
		for code, cs := range byCode {
			ps.Codes[code] = Summarize(cs)
		}
		pages[u] = ps
	}
	return pages
}

// Metrics describes search coverage and price spread for one code.
type Metrics struct {
	TotalHospitals        int     `json:"total_hospitals"`
	HospitalsWithWebsites int     `json:"hospitals_with_websites"`
	HospitalsWithPrices   int     `json:"hospitals_with_prices"`
	OverallSuccessRate    float64 `json:"overall_success_rate"`
	WebsiteSuccessRate    float64 `json:"website_success_rate"`

	// Price statistics over each hospital's best price. Zero when no
	// hospital had a price.
	PriceMin      float64 `json:"price_min"`
	PriceMax      float64 `json:"price_max"`
	PriceAvg      float64 `json:"price_avg"`
	PriceMedian   float64 `json:"price_median"`
	PriceRange    float64 `json:"price_range"`
	PriceVariance float64 `json:"price_variance"`
}

// Metrics computes coverage and price statistics for code. Success rates
// are percentages.
func (r *SearchResult) Metrics(code string) Metrics {
	var m Metrics
	var best []float64
	for _, h := range r.Hospitals {
		m.TotalHospitals++
		if h.Hospital != nil && h.Hospital.HasWebsite() {
			m.HospitalsWithWebsites++
		}
		if c := h.Best(code); c != nil {
			m.HospitalsWithPrices++
			best = append(best, c.Value)
		}
	}
	if m.TotalHospitals > 0 {
		m.OverallSuccessRate = percent(m.HospitalsWithPrices, m.TotalHospitals)
	}
	if m.HospitalsWithWebsites > 0 {
		m.WebsiteSuccessRate = percent(m.HospitalsWithPrices, m.HospitalsWithWebsites)
	}
	if len(best) == 0 {
		return m
	}

	slices.Sort(best)
	var sum float64
	for _, v := range best {
		sum += v
	}
	m.PriceMin = best[0]
	m.PriceMax = best[len(best)-1]
	m.PriceAvg = sum / float64(len(best))
	m.PriceMedian = median(best)
	m.PriceRange = m.PriceMax - m.PriceMin
	if len(best) > 1 {
		var ss float64
		for _, v := range best {
			ss += (v - m.PriceAvg) * (v - m.PriceAvg)
		}
		// Sample variance.
		m.PriceVariance = ss / float64(len(best)-1)
	}
	return m
}

func percent(n, d int) float64 {
	return math.Round(float64(n)/float64(d)*10000) / 100
}

// Unsuccessful lists hospitals without a priced candidate.
func (r *SearchResult) Unsuccessful() []*HospitalResult {
	var out []*HospitalResult
	for _, h := range r.Hospitals {
		if !h.HasPrice() {
			out = append(out, h)
		}
	}
	return out
}

// ResultSink persists a finished search.
type ResultSink interface {
	SaveSearch(ctx context.Context, r *SearchResult) error
}

// ResultStore persists searches and answers questions about saved results.
type ResultStore interface {
	ResultSink

	// FindSearch returns a saved search by ID.
	// Returns ENOTFOUND if it does not exist.
	FindSearch(ctx context.Context, id string) (*SearchResult, error)

	// ListSearches returns saved searches, newest first, without hospitals.
	ListSearches(ctx context.Context) ([]*SearchResult, error)

	// FindBestPrice returns the lowest saved price for code across all
	// searches. Returns ENOTFOUND if no price is stored.
	FindBestPrice(ctx context.Context, code string) (*BestPrice, error)
}
