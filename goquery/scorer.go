package goquery

import (
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/fwojciec/carecost"
)

// Ensure LinkScorer implements carecost.LinkScorer at compile time.
var _ carecost.LinkScorer = (*LinkScorer)(nil)

// Score weights.
const (
	scoreCode           = 50
	scoreKeywordText    = 10
	scoreKeywordPath    = 5
	scorePDFKeyword     = 15
	scoreStructuredText = 20
)

// keywords are matched as substrings, so "estimat" covers estimate and
// estimator.
var keywords = []string{
	"price", "pricing", "cost", "charge", "billing", "financial", "payment",
	"insurance", "transparency", "estimat", "fee", "patient", "surgery",
	"procedure", "cpt", "service", "cash",
}

// mediaExtensions are dropped before scoring.
var mediaExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".tif": true, ".tiff": true,
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	".mp4": true, ".mov": true, ".avi": true, ".webm": true, ".wmv": true,
}

// LinkScorer ranks a page's links by how likely they lead to prices.
type LinkScorer struct {
	names map[string]string
}

// ScorerOption configures a LinkScorer.
type ScorerOption func(*LinkScorer)

// WithProcedureNames sets procedure names keyed by code. A link naming the
// procedure scores like one naming its code. In URL paths the words may be
// joined by hyphens or underscores.
func WithProcedureNames(names map[string]string) ScorerOption {
	return func(s *LinkScorer) {
		s.names = make(map[string]string, len(names))
		for code, name := range names {
			if name = strings.ToLower(strings.Join(strings.Fields(name), " ")); name != "" {
				s.names[code] = name
			}
		}
	}
}

// NewLinkScorer creates a new LinkScorer.
func NewLinkScorer(opts ...ScorerOption) *LinkScorer {
	s := &LinkScorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreLinks resolves the page's anchors against the page URL and drops
// fragment-only, non-navigational, off-domain and media links. A URL found
// more than once keeps its highest score.
func (s *LinkScorer) ScoreLinks(page *carecost.Page, codes []string) []carecost.ScoredLink {
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}
	domain := carecost.Domain(page.URL)

	seen := make(map[string]int)
	var links []carecost.ScoredLink
	for _, a := range page.Anchors {
		if isNonNavigational(a.Href) {
			continue
		}
		u := resolveURL(base, a.Href)
		if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		resolved := u.String()
		if carecost.Domain(resolved) != domain {
			continue
		}
		ext := strings.ToLower(path.Ext(u.Path))
		if mediaExtensions[ext] {
			continue
		}

		link := carecost.ScoredLink{
			URL:  resolved,
			Text: a.Text,
			Kind: kindOf(resolved, ext),
		}
		link.Score = s.score(a.Text, u.Path, codes, link.Kind)

		if idx, ok := seen[resolved]; ok {
			if link.Score > links[idx].Score {
				links[idx] = link
			}
			continue
		}
		seen[resolved] = len(links)
		links = append(links, link)
	}

	slices.SortStableFunc(links, func(a, b carecost.ScoredLink) int {
		return b.Score - a.Score
	})
	return links
}

// ScoreURL scores rawURL as a link without anchor text.
func (s *LinkScorer) ScoreURL(rawURL string, codes []string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return s.score("", u.Path, codes, kindOf(rawURL, ext))
}

func kindOf(rawURL, ext string) carecost.LinkKind {
	if ext == ".pdf" {
		return carecost.LinkPDF
	}
	if carecost.FormatFromURL(rawURL) != carecost.FormatUnknown {
		return carecost.LinkStructured
	}
	return carecost.LinkPage
}

func (s *LinkScorer) score(text, urlPath string, codes []string, kind carecost.LinkKind) int {
	text = strings.ToLower(text)
	urlPath = strings.ToLower(urlPath)

	total := 0
	if s.mentions(text, urlPath, codes) {
		total += scoreCode
	}

	textKeyword := false
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			total += scoreKeywordText
			textKeyword = true
		}
		if strings.Contains(urlPath, kw) {
			total += scoreKeywordPath
		}
	}

	if textKeyword {
		switch kind {
		case carecost.LinkPDF:
			total += scorePDFKeyword
		case carecost.LinkStructured:
			total += scoreStructuredText
		}
	}
	return total
}

// mentions reports whether the link text or path names one of codes or the
// procedure name of one.
func (s *LinkScorer) mentions(text, urlPath string, codes []string) bool {
	for _, code := range codes {
		c := strings.ToLower(code)
		if c != "" && (strings.Contains(text, c) || strings.Contains(urlPath, c)) {
			return true
		}
		name := s.names[code]
		if name == "" {
			continue
		}
		if strings.Contains(text, name) ||
			strings.Contains(urlPath, strings.ReplaceAll(name, " ", "-")) ||
			strings.Contains(urlPath, strings.ReplaceAll(name, " ", "_")) {
			return true
		}
	}
	return false
}

// isNonNavigational reports whether href cannot lead to another page.
func isNonNavigational(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "sms:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// resolveURL resolves href against base and drops the fragment.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	u := base.ResolveReference(ref)
	u.Fragment = ""
	return u
}
