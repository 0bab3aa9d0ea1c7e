// Package json extracts procedure prices from JSON documents such as
// machine-readable standard charge files.
package json

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/extract"
)

// Ensure Extractor implements carecost.FileExtractor at compile time.
var _ carecost.FileExtractor = (*Extractor)(nil)

// Extractor finds a price for a code in a JSON value tree.
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

// ExtractFromFile decodes data once and walks it depth first. For each code
// the innermost object that mentions it and yields a price wins. A
// price-named key of that object is preferred over the cascade run on its
// serialized text. Invalid JSON yields no candidates.
func (e *Extractor) ExtractFromFile(data []byte, codes []string) []carecost.PriceCandidate {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	w := &walker{
		Extractor: e,
		codes:     extract.Distinct(codes),
		found:     make(map[string]carecost.PriceCandidate),
	}
	w.walk(doc)

	var out []carecost.PriceCandidate
	for _, code := range w.codes {
		if c, ok := w.found[code]; ok {
			out = append(out, c)
		}
	}
	return out
}

// walker is the state of one document walk.
type walker struct {
	*Extractor
	codes []string
	found map[string]carecost.PriceCandidate
}

func (w *walker) done() bool {
	return len(w.found) == len(w.codes)
}

func (w *walker) walk(v any) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if w.done() {
				return
			}
			w.walk(item)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if w.done() {
				return
			}
			w.walk(v[k])
		}
		if !w.done() {
			w.object(v, keys)
		}
	}
}

// object checks a single object against every code still without a price.
func (w *walker) object(m map[string]any, keys []string) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	text := string(raw)
	for _, code := range w.codes {
		if _, ok := w.found[code]; ok || !extract.ContainsCode(text, code) {
			continue
		}
		if c, ok := w.price(m, keys, text, code); ok {
			w.found[code] = c
		}
	}
}

func (e *Extractor) price(m map[string]any, keys []string, text, code string) (carecost.PriceCandidate, bool) {
	for _, k := range keys {
		if !extract.IsPriceName(k) {
			continue
		}
		if v, ok := e.amount(m[k]); ok {
			return e.candidate(code, v, text), true
		}
	}
	if v, ok := e.cascade.Find(text, code); ok {
		return e.candidate(code, v, text), true
	}
	return carecost.PriceCandidate{}, false
}

func (e *Extractor) amount(v any) (float64, bool) {
	switch v := v.(type) {
	case json.Number:
		return e.cascade.Amount(v.String())
	case string:
		return e.cascade.Amount(v)
	}
	return 0, false
}

func (e *Extractor) candidate(code string, v float64, context string) carecost.PriceCandidate {
	return carecost.PriceCandidate{
		Code:    code,
		Value:   v,
		Context: context,
		Method:  carecost.MethodStructuredJSON,
	}
}
