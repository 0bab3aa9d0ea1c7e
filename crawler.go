package carecost

import (
	"context"
	"slices"
	"strings"
)

// HospitalCrawler crawls one hospital website for prices.
type HospitalCrawler interface {
	// CrawlHospital never fails: fetch and content errors are recorded in
	// the result and the crawl moves on.
	CrawlHospital(ctx context.Context, h *Hospital, codes []string) *HospitalResult
}

// SearchQuery is a multi-hospital price search.
type SearchQuery struct {
	HospitalQuery
	Codes []string

	// Names optionally maps a code to its procedure name, such as
	// "office visit" for 99213. Pages mentioning the name are searched
	// like pages mentioning the code.
	Names map[string]string
}

// Validate returns an error if the query cannot be executed.
func (q SearchQuery) Validate() error {
	if len(q.Codes) == 0 {
		return Errorf(EINVALID, "at least one procedure code required")
	}
	for _, c := range q.Codes {
		if c == "" {
			return Errorf(EINVALID, "empty procedure code")
		}
	}
	for code, name := range q.Names {
		if !slices.Contains(q.Codes, code) {
			return Errorf(EINVALID, "procedure name given for unknown code %q", code)
		}
		if strings.TrimSpace(name) == "" {
			return Errorf(EINVALID, "empty procedure name for code %q", code)
		}
	}
	return q.HospitalQuery.Validate()
}
