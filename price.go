package carecost

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

// Method tags how a PriceCandidate was found.
type Method string

// Extraction methods.
const (
	MethodTextWindow     Method = "text-window"
	MethodTableRow       Method = "table-row"
	MethodStructuredCSV  Method = "structured-csv"
	MethodStructuredXLSX Method = "structured-xlsx"
	MethodStructuredJSON Method = "structured-json"
	MethodStructuredXML  Method = "structured-xml"
	MethodPDFReference   Method = "pdf-reference"
)

// Confident reports whether a candidate found by m allows the crawl of a
// hospital to stop early for its code.
func (m Method) Confident() bool {
	return m == MethodTextWindow || m == MethodTableRow
}

// CurrencyUSD is the only currency the extractors recognize.
const CurrencyUSD = "USD"

// PriceCandidate is a price found for a code. A pdf-reference candidate
// points at a document that may hold a price and carries no value.
type PriceCandidate struct {
	Code      string  `json:"code"`
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
	SourceURL string  `json:"source_url"`
	Context   string  `json:"context,omitempty"`
	Method    Method  `json:"method"`
}

// Priced reports whether the candidate carries an amount.
func (c PriceCandidate) Priced() bool {
	return c.Method != MethodPDFReference
}

// Bounds is the inclusive range of plausible procedure prices.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds covers realistic cash prices for medical procedures.
var DefaultBounds = Bounds{Min: 10, Max: 50000}

// Contains reports whether v is within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Validate returns an error if the bounds are empty or inverted.
func (b Bounds) Validate() error {
	if b.Min < 0 || b.Max <= 0 || b.Min > b.Max {
		return Errorf(EINVALID, "invalid price bounds [%v, %v]", b.Min, b.Max)
	}
	return nil
}

// Representative picks one value from prices found close together: the
// median of the sorted values, or the lowest when there are one or two.
// Returns false for an empty slice.
func Representative(prices []float64) (float64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	sorted := slices.Clone(prices)
	slices.Sort(sorted)
	if len(sorted) <= 2 {
		return sorted[0], true
	}
	return sorted[len(sorted)/2], true
}

// StructuredFormat identifies a machine-readable price file format.
type StructuredFormat int

// Structured file formats.
const (
	FormatUnknown StructuredFormat = iota
	FormatCSV
	FormatXLSX
	FormatJSON
	FormatXML
)

func (f StructuredFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	}
	return "unknown"
}

// Method returns the extraction method tag for candidates from f.
func (f StructuredFormat) Method() Method {
	switch f {
	case FormatCSV:
		return MethodStructuredCSV
	case FormatXLSX:
		return MethodStructuredXLSX
	case FormatJSON:
		return MethodStructuredJSON
	case FormatXML:
		return MethodStructuredXML
	}
	return ""
}

// FormatFromURL sniffs the format from the URL path extension.
func FormatFromURL(rawURL string) StructuredFormat {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatUnknown
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	case ".xml":
		return FormatXML
	}
	return FormatUnknown
}

// FormatFromContentType maps a response content type to a format.
func FormatFromContentType(ct string) StructuredFormat {
	mt, _, _ := strings.Cut(strings.ToLower(ct), ";")
	mt = strings.TrimSpace(mt)
	switch {
	case mt == "text/csv":
		return FormatCSV
	case mt == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return FormatJSON
	case mt == "application/xhtml+xml":
		return FormatUnknown
	case mt == "application/xml", mt == "text/xml", strings.HasSuffix(mt, "+xml"):
		return FormatXML
	}
	return FormatUnknown
}

// CostExtractor finds prices for codes in a normalized page.
type CostExtractor interface {
	// Extract runs every strategy over the page and returns the union of
	// their candidates. Every returned value is within bounds.
	Extract(page *Page, codes []string) []PriceCandidate
}

// FileExtractor finds prices for codes in a structured file.
type FileExtractor interface {
	// ExtractFromFile parses data once and returns at most one candidate
	// per code, in the order of codes. Codes without a price are left out,
	// and a file that cannot be parsed yields none. SourceURL is left for
	// the caller to fill in.
	ExtractFromFile(data []byte, codes []string) []PriceCandidate
}
