// Package etree extracts procedure prices from XML documents.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/extract"
)

// Ensure Extractor implements carecost.FileExtractor at compile time.
var _ carecost.FileExtractor = (*Extractor)(nil)

// Extractor finds a price for a code in an XML element tree.
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

// ExtractFromFile parses data once and walks the document in order looking
// for elements that mention each code. A leaf whose text holds the code
// makes its parent the record; an element whose attribute holds the code is
// the record itself. Within a record a price-named child or attribute is
// preferred, else the cascade runs over the record text. The first record
// yielding a price wins. Malformed XML yields no candidates.
func (e *Extractor) ExtractFromFile(data []byte, codes []string) []carecost.PriceCandidate {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}
	codes = extract.Distinct(codes)
	found := make(map[string]carecost.PriceCandidate, len(codes))
	e.walk(root, codes, found)

	var out []carecost.PriceCandidate
	for _, code := range codes {
		if c, ok := found[code]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (e *Extractor) walk(el *etree.Element, codes []string, found map[string]carecost.PriceCandidate) {
	for _, code := range codes {
		if _, ok := found[code]; ok {
			continue
		}
		if record := recordFor(el, code); record != nil {
			if c, ok := e.record(record, code); ok {
				found[code] = c
			}
		}
	}
	for _, child := range el.ChildElements() {
		if len(found) == len(codes) {
			return
		}
		e.walk(child, codes, found)
	}
}

func recordFor(el *etree.Element, code string) *etree.Element {
	for _, a := range el.Attr {
		if extract.ContainsCode(a.Value, code) {
			return el
		}
	}
	if len(el.ChildElements()) == 0 && extract.ContainsCode(el.Text(), code) {
		if p := el.Parent(); p != nil && p.Parent() != nil {
			return p
		}
		return el
	}
	return nil
}

func (e *Extractor) record(rec *etree.Element, code string) (carecost.PriceCandidate, bool) {
	text := strings.Join(strings.Fields(textOf(rec)), " ")
	for _, a := range rec.Attr {
		if extract.IsPriceName(a.Key) {
			if v, ok := e.cascade.Amount(a.Value); ok {
				return e.candidate(code, v, text), true
			}
		}
	}
	for _, child := range rec.ChildElements() {
		if !extract.IsPriceName(child.Tag) || extract.ContainsCode(child.Text(), code) {
			continue
		}
		if v, ok := e.cascade.Amount(child.Text()); ok {
			return e.candidate(code, v, text), true
		}
	}
	if v, ok := e.cascade.Find(text, code); ok {
		return e.candidate(code, v, text), true
	}
	return carecost.PriceCandidate{}, false
}

// textOf joins the text and attribute values of el and its descendants.
func textOf(el *etree.Element) string {
	var b strings.Builder
	var visit func(*etree.Element)
	visit = func(el *etree.Element) {
		for _, a := range el.Attr {
			b.WriteString(a.Value)
			b.WriteByte(' ')
		}
		b.WriteString(el.Text())
		b.WriteByte(' ')
		for _, child := range el.ChildElements() {
			visit(child)
			b.WriteString(child.Tail())
			b.WriteByte(' ')
		}
	}
	visit(el)
	return b.String()
}

func (e *Extractor) candidate(code string, v float64, context string) carecost.PriceCandidate {
	return carecost.PriceCandidate{
		Code:    code,
		Value:   v,
		Context: context,
		Method:  carecost.MethodStructuredXML,
	}
}
