// Package extract finds procedure prices in normalized page text and tables.
// The regex cascade and validity filter are shared with the structured file
// extractors.
package extract

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/carecost"
)

// DefaultWindowRadius is the number of characters of text kept on each
// side of a code occurrence.
const DefaultWindowRadius = 300

// Ensure Extractor implements carecost.CostExtractor at compile time.
var _ carecost.CostExtractor = (*Extractor)(nil)

// Extractor runs the windowed text and table strategies over a page.
type Extractor struct {
	cascade Cascade
	radius  int
	names   map[string]string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBounds sets the range of accepted prices.
func WithBounds(b carecost.Bounds) Option {
	return func(e *Extractor) {
		e.cascade.Bounds = b
	}
}

// WithWindowRadius sets the context window radius around a code.
func WithWindowRadius(r int) Option {
	return func(e *Extractor) {
		e.radius = r
	}
}

// WithNames sets procedure names keyed by code. Text windows are also
// taken around each occurrence of a code's name, and the prices found there
// belong to that code.
func WithNames(names map[string]string) Option {
	return func(e *Extractor) {
		e.names = make(map[string]string, len(names))
		for code, name := range names {
			if name = strings.Join(strings.Fields(name), " "); name != "" {
				e.names[code] = name
			}
		}
	}
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		cascade: Cascade{Bounds: carecost.DefaultBounds},
		radius:  DefaultWindowRadius,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cascade returns the price cascade used by the extractor.
func (e *Extractor) Cascade() Cascade {
	return e.cascade
}

// Extract returns the text-window and table-row candidates for each code.
// Candidates with the same code, value and method are reported once per page.
func (e *Extractor) Extract(page *carecost.Page, codes []string) []carecost.PriceCandidate {
	var out []carecost.PriceCandidate
	type key struct {
		code   string
		value  float64
		method carecost.Method
	}
	seen := make(map[key]bool)
	add := func(c carecost.PriceCandidate) {
		c.Currency = carecost.CurrencyUSD
		c.SourceURL = page.URL
		k := key{c.Code, c.Value, c.Method}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, c)
	}

	for _, code := range codes {
		for _, c := range e.TextWindows(page.Text, code) {
			add(c)
		}
		for _, t := range page.Tables {
			for _, c := range e.TableRows(t, code) {
				add(c)
			}
		}
	}
	return out
}

// TextWindows searches a window around every occurrence of code, and of
// its procedure name when one is set, and returns one candidate per window
// that holds a valid price.
func (e *Extractor) TextWindows(text, code string) []carecost.PriceCandidate {
	if code == "" {
		return nil
	}
	type span struct{ lo, hi int }
	var spans []span
	for _, i := range TokenIndexes(text, code) {
		spans = append(spans, span{i, i + len(code)})
	}
	if name := e.names[code]; name != "" {
		for _, i := range TokenIndexes(text, name) {
			spans = append(spans, span{i, i + len(name)})
		}
	}

	slices.SortStableFunc(spans, func(a, b span) int { return cmp.Compare(a.lo, b.lo) })

	var out []carecost.PriceCandidate
	seen := make(map[span]bool, len(spans))
	for _, sp := range spans {
		lo, hi := e.window(text, sp.lo, sp.hi)
		if seen[span{lo, hi}] {
			continue
		}
		seen[span{lo, hi}] = true
		window := text[lo:hi]
		v, ok := e.cascade.Find(window, code)
		if !ok {
			continue
		}
		out = append(out, carecost.PriceCandidate{
			Code:    code,
			Value:   v,
			Context: strings.TrimSpace(window),
			Method:  carecost.MethodTextWindow,
		})
	}
	return out
}

// window returns the byte bounds of text reaching radius characters before
// start and after end.
func (e *Extractor) window(text string, start, end int) (int, int) {
	lo := start
	for n := 0; n < e.radius && lo > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for n := 0; n < e.radius && hi < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return lo, hi
}
