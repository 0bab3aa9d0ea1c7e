// Package excelize extracts procedure prices from XLSX workbooks.
package excelize

import (
	"bytes"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/extract"
	"github.com/xuri/excelize/v2"
)

// Ensure Extractor implements carecost.FileExtractor at compile time.
var _ carecost.FileExtractor = (*Extractor)(nil)

// Extractor finds a price for a code in the sheets of a workbook.
type Extractor struct {
	cascade extract.Cascade
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBounds sets the range of accepted prices.
func WithBounds(b carecost.Bounds) Option {
	return func(e *Extractor) {
		e.cascade.Bounds = b
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{cascade: extract.Cascade{Bounds: carecost.DefaultBounds}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromFile reads every sheet once and searches them in order for
// each code. The first row of each sheet is its header. Unreadable
// workbooks yield no candidates.
func (e *Extractor) ExtractFromFile(data []byte, codes []string) []carecost.PriceCandidate {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	type sheet struct {
		name string
		rows [][]string
	}
	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheets = append(sheets, sheet{name, rows})
	}

	var out []carecost.PriceCandidate
	for _, code := range extract.Distinct(codes) {
		for _, sh := range sheets {
			v, context, ok := e.cascade.Rows(sh.rows, code)
			if !ok {
				continue
			}
			out = append(out, carecost.PriceCandidate{
				Code:    code,
				Value:   v,
				Context: sh.name + ": " + context,
				Method:  carecost.MethodStructuredXLSX,
			})
			break
		}
	}
	return out
}
