// Package bloom provides the crawl visited-set using Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/carecost"
)

// DefaultFalsePositiveRate is the target false positive rate of the filter.
const DefaultFalsePositiveRate = 0.001

// Ensure VisitedSet implements carecost.VisitedSet at compile time.
var _ carecost.VisitedSet = (*VisitedSet)(nil)

// VisitedSet records URLs seen during one crawl in a Bloom filter. There
// are no false negatives, so a visited URL is never reported new. A false
// positive reports an unseen URL as visited and the crawl passes over it.
// Not safe for concurrent use; each crawl owns its own set.
type VisitedSet struct {
	filter *bloom.BloomFilter
	n      int
}

// NewVisitedSet creates a VisitedSet sized for n expected URLs.
func NewVisitedSet(n uint) *VisitedSet {
	return NewVisitedSetWithRate(n, DefaultFalsePositiveRate)
}

// NewVisitedSetWithRate creates a VisitedSet sized for n expected URLs
// with the given false positive rate.
func NewVisitedSetWithRate(n uint, fpRate float64) *VisitedSet {
	if n == 0 {
		n = 1
	}
	return &VisitedSet{filter: bloom.NewWithEstimates(n, fpRate)}
}

// Visit adds url and reports whether it was new.
func (s *VisitedSet) Visit(url string) bool {
	if s.filter.TestOrAddString(url) {
		return false
	}
	s.n++
	return true
}

// Has reports whether url might have been visited.
func (s *VisitedSet) Has(url string) bool {
	return s.filter.TestString(url)
}

// Len returns the number of URLs Visit reported as new.
func (s *VisitedSet) Len() int {
	return s.n
}

// EstimatedCount returns the filter's approximation of Len.
func (s *VisitedSet) EstimatedCount() uint {
	return uint(s.filter.ApproximatedSize())
}
