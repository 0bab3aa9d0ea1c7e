package mock

import "github.com/fwojciec/carecost"

var _ carecost.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of carecost.Normalizer.
type Normalizer struct {
	NormalizeFn func(r *carecost.Response) (*carecost.Page, error)
}

func (n *Normalizer) Normalize(r *carecost.Response) (*carecost.Page, error) {
	return n.NormalizeFn(r)
}

var _ carecost.CostExtractor = (*CostExtractor)(nil)

// CostExtractor is a mock implementation of carecost.CostExtractor.
type CostExtractor struct {
	ExtractFn func(page *carecost.Page, codes []string) []carecost.PriceCandidate
}

func (e *CostExtractor) Extract(page *carecost.Page, codes []string) []carecost.PriceCandidate {
	return e.ExtractFn(page, codes)
}

var _ carecost.FileExtractor = (*FileExtractor)(nil)

// FileExtractor is a mock implementation of carecost.FileExtractor.
type FileExtractor struct {
	ExtractFromFileFn func(data []byte, codes []string) []carecost.PriceCandidate
}

func (e *FileExtractor) ExtractFromFile(data []byte, codes []string) []carecost.PriceCandidate {
	return e.ExtractFromFileFn(data, codes)
}
