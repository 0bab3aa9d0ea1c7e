package mock

import (
	"context"

	"github.com/fwojciec/carecost"
)

var _ carecost.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of carecost.ResultStore.
type ResultStore struct {
	SaveSearchFn    func(ctx context.Context, r *carecost.SearchResult) error
	FindSearchFn    func(ctx context.Context, id string) (*carecost.SearchResult, error)
	ListSearchesFn  func(ctx context.Context) ([]*carecost.SearchResult, error)
	FindBestPriceFn func(ctx context.Context, code string) (*carecost.BestPrice, error)
}

func (s *ResultStore) SaveSearch(ctx context.Context, r *carecost.SearchResult) error {
	return s.SaveSearchFn(ctx, r)
}

func (s *ResultStore) FindSearch(ctx context.Context, id string) (*carecost.SearchResult, error) {
	return s.FindSearchFn(ctx, id)
}

func (s *ResultStore) ListSearches(ctx context.Context) ([]*carecost.SearchResult, error) {
	return s.ListSearchesFn(ctx)
}

func (s *ResultStore) FindBestPrice(ctx context.Context, code string) (*carecost.BestPrice, error) {
	return s.FindBestPriceFn(ctx, code)
}

var _ carecost.ResultSink = (*ResultSink)(nil)

// ResultSink is a mock implementation of carecost.ResultSink.
type ResultSink struct {
	SaveSearchFn func(ctx context.Context, r *carecost.SearchResult) error
}

func (s *ResultSink) SaveSearch(ctx context.Context, r *carecost.SearchResult) error {
	return s.SaveSearchFn(ctx, r)
}
