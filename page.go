package carecost

import "strings"

// DefaultTitle is the page title used when a document has none.
const DefaultTitle = "No title"

// Response is the outcome of a successful fetch.
type Response struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsHTML reports whether the response declares an HTML content type.
func (r *Response) IsHTML() bool {
	return IsHTMLContentType(r.ContentType)
}

// IsHTMLContentType reports whether ct names text/html or
// application/xhtml+xml, ignoring parameters.
func IsHTMLContentType(ct string) bool {
	mt, _, _ := strings.Cut(ct, ";")
	mt = strings.TrimSpace(mt)
	return strings.EqualFold(mt, "text/html") || strings.EqualFold(mt, "application/xhtml+xml")
}

// Page is a normalized HTML document. Pages are produced once per fetch
// and dropped after extraction and link scoring.
type Page struct {
	URL      string
	Depth    int
	Title    string
	Text     string
	Tables   []Table
	Anchors  []Anchor
	Hospital *Hospital
}

// Table holds the cell text of one HTML table.
type Table struct {
	// Header holds the text of the header cells, when the table has any.
	Header []string

	// Rows holds the remaining rows, one slice of cell text per row.
	Rows [][]string
}

// Anchor is a raw hyperlink found on a page.
type Anchor struct {
	// Href is the attribute value as written in the document.
	Href string
	Text string
}

// Normalizer converts a fetched document into a Page.
type Normalizer interface {
	// Normalize strips non-content markup from the response body and returns
	// the page title, collapsed text, tables and anchors. Depth and Hospital
	// are left for the caller to fill in.
	Normalize(r *Response) (*Page, error)
}
