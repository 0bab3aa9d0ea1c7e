// Package csv extracts procedure prices from delimited text files.
package csv

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/extract"
	"golang.org/x/text/encoding/charmap"
)

// Ensure Extractor implements carecost.FileExtractor at compile time.
var _ carecost.FileExtractor = (*Extractor)(nil)

// Extractor finds a price for a code in a CSV file.
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

// ExtractFromFile decodes and parses data once, then searches its rows for
// each code. The header row names the price columns.
func (e *Extractor) ExtractFromFile(data []byte, codes []string) []carecost.PriceCandidate {
	text, ok := decode(data)
	if !ok {
		return nil
	}
	rows, err := parse(text)
	if err != nil {
		rows = splitLines(text)
	}
	var out []carecost.PriceCandidate
	for _, code := range extract.Distinct(codes) {
		v, context, ok := e.cascade.Rows(rows, code)
		if !ok {
			continue
		}
		out = append(out, carecost.PriceCandidate{
			Code:    code,
			Value:   v,
			Context: context,
			Method:  carecost.MethodStructuredCSV,
		})
	}
	return out
}

// decode tries UTF-8, then Latin-1, then Windows-1252.
func decode(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), true
	}
	// Latin-1 maps 0x80-0x9F to C1 control codes, which real files use
	// only when they are Windows-1252.
	if !hasC1(data) {
		if s, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
			return string(s), true
		}
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(s), true
}

func hasC1(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 && b <= 0x9f {
			return true
		}
	}
	return false
}

func parse(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// splitLines is the fallback for files encoding/csv rejects.
func splitLines(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i, f := range fields {
			fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
		}
		rows = append(rows, fields)
	}
	return rows
}
