package mock

import (
	"context"

	"github.com/fwojciec/carecost"
)

var _ carecost.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is a mock implementation of carecost.VisitedSet.
type VisitedSet struct {
	VisitFn func(url string) bool
	HasFn   func(url string) bool
	LenFn   func() int
}

func (s *VisitedSet) Visit(url string) bool {
	return s.VisitFn(url)
}

func (s *VisitedSet) Has(url string) bool {
	return s.HasFn(url)
}

func (s *VisitedSet) Len() int {
	return s.LenFn()
}

var _ carecost.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of carecost.DomainLimiter.
type DomainLimiter struct {
	AcquireFn func(ctx context.Context, domain string) (func(), error)
}

func (l *DomainLimiter) Acquire(ctx context.Context, domain string) (func(), error) {
	return l.AcquireFn(ctx, domain)
}

var _ carecost.LinkScorer = (*LinkScorer)(nil)

// LinkScorer is a mock implementation of carecost.LinkScorer.
type LinkScorer struct {
	ScoreLinksFn func(page *carecost.Page, codes []string) []carecost.ScoredLink
	ScoreURLFn   func(rawURL string, codes []string) int
}

func (s *LinkScorer) ScoreLinks(page *carecost.Page, codes []string) []carecost.ScoredLink {
	return s.ScoreLinksFn(page, codes)
}

func (s *LinkScorer) ScoreURL(rawURL string, codes []string) int {
	return s.ScoreURLFn(rawURL, codes)
}
