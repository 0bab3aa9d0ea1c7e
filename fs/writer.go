// Package fs writes search results to disk: a JSON result file and plain
// text reports.
package fs

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fwojciec/carecost"
)

// File names inside a search directory.
const (
	ResultsFile      = "results.json"
	ReportFile       = "results.txt"
	UnsuccessfulFile = "unsuccessful_hospitals.txt"
)

// SearchDir names the directory of a search, such as Boston_MA_99213.
func SearchDir(r *carecost.SearchResult) string {
	parts := strings.FieldsFunc(r.Location, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	parts = append(parts, r.Codes...)
	if len(parts) == 0 {
		return "search"
	}
	return strings.Join(parts, "_")
}

// Document is the JSON shape of a saved search.
type Document struct {
	*carecost.SearchResult
	Pages   map[string]*carecost.PageSummary `json:"pages"`
	Metrics map[string]carecost.Metrics      `json:"metrics"`
	Best    map[string]*carecost.BestPrice   `json:"best"`
}

// NewDocument computes the per-page and per-code views of r.
func NewDocument(r *carecost.SearchResult) *Document {
	d := &Document{
		SearchResult: r,
		Pages:        r.Pages(),
		Metrics:      make(map[string]carecost.Metrics, len(r.Codes)),
		Best:         make(map[string]*carecost.BestPrice, len(r.Codes)),
	}
	for _, code := range r.Codes {
		d.Metrics[code] = r.Metrics(code)
		d.Best[code] = r.Best(code)
	}
	return d
}

// EncodeJSON writes the JSON document of r to w.
func EncodeJSON(w io.Writer, r *carecost.SearchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}

// Ensure Writer implements carecost.ResultSink at compile time.
var _ carecost.ResultSink = (*Writer)(nil)

// Writer saves each search into its own directory under a base directory.
// Files are written to a temporary directory and moved into place once
// all of them are complete, replacing an earlier run of the same search.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Dir returns the directory SaveSearch writes r to.
func (w *Writer) Dir(r *carecost.SearchResult) string {
	return filepath.Join(w.baseDir, SearchDir(r))
}

// SaveSearch writes the result file and reports of r.
func (w *Writer) SaveSearch(ctx context.Context, r *carecost.SearchResult) error {
	if r.Location == "" {
		return carecost.Errorf(carecost.EINVALID, "search location required")
	}
	final := w.Dir(r)
	tmp := final + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return err
	}

	if err := w.write(tmp, r); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	if err := os.RemoveAll(final); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

func (w *Writer) write(dir string, r *carecost.SearchResult) error {
	f, err := os.Create(filepath.Join(dir, ResultsFile))
	if err != nil {
		return err
	}
	if err := EncodeJSON(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, ReportFile), []byte(FormatReport(r)), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, UnsuccessfulFile), []byte(FormatUnsuccessful(r)), 0644)
}
