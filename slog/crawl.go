package slog

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/carecost"
)

// snippetLen caps the context logged with each candidate.
const snippetLen = 120

// Ensure CrawlLogger implements carecost.CrawlLogger.
var _ carecost.CrawlLogger = (*CrawlLogger)(nil)

// CrawlLogger writes crawl events to a slog.Logger. Visits and skips are
// logged at debug level, extractions at info and errors at warn.
type CrawlLogger struct {
	logger *slog.Logger
}

// NewCrawlLogger creates a new CrawlLogger.
func NewCrawlLogger(logger *slog.Logger) *CrawlLogger {
	return &CrawlLogger{logger: logger}
}

func (l *CrawlLogger) Visited(url string, depth int, h *carecost.Hospital) {
	l.logger.Debug("visit", "url", url, "depth", depth, "hospital", hospitalName(h))
}

func (l *CrawlLogger) Skipped(url string, reason carecost.SkipReason) {
	l.logger.Debug("skip", "url", url, "reason", string(reason))
}

func (l *CrawlLogger) Extracted(url string, candidates []carecost.PriceCandidate) {
	for _, c := range candidates {
		l.logger.Info("price candidate",
			"url", url,
			"code", c.Code,
			"value", c.Value,
			"method", string(c.Method),
			"context", Snippet(c.Context, snippetLen),
		)
	}
}

func (l *CrawlLogger) Error(url string, err error) {
	l.logger.Warn("crawl error", "url", url, "err", err)
}

// Snippet collapses whitespace in s and trims it to at most n runes,
// marking a cut with "...".
func Snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func hospitalName(h *carecost.Hospital) string {
	if h == nil {
		return ""
	}
	return h.Name
}
