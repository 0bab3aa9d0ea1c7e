package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fwojciec/carecost"
	ccslog "github.com/fwojciec/carecost/slog"
	"github.com/stretchr/testify/assert"
)

func TestCrawlLogger(t *testing.T) {
	t.Parallel()

	t.Run("logs visits and skips at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := ccslog.NewCrawlLogger(debugLogger(&buf))

		l.Visited("https://example.org/", 0, &carecost.Hospital{Name: "General"})
		l.Skipped("https://example.org/login", carecost.SkipExcluded)

		output := buf.String()
		assert.Contains(t, output, "msg=visit")
		assert.Contains(t, output, "depth=0")
		assert.Contains(t, output, "hospital=General")
		assert.Contains(t, output, "msg=skip")
		assert.Contains(t, output, "reason=excluded")
	})

	t.Run("hides visits at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := ccslog.NewCrawlLogger(slog.New(slog.NewTextHandler(&buf, nil)))

		l.Visited("https://example.org/", 0, nil)

		assert.Empty(t, buf.String())
	})

	t.Run("logs each candidate with a trimmed context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := ccslog.NewCrawlLogger(slog.New(slog.NewTextHandler(&buf, nil)))

		l.Extracted("https://example.org/pricing", []carecost.PriceCandidate{{
			Code:    "99213",
			Value:   125,
			Method:  carecost.MethodTextWindow,
			Context: "CPT 99213\n\n   cost: $125" + strings.Repeat(" filler", 50),
		}})

		output := buf.String()
		assert.Contains(t, output, "code=99213")
		assert.Contains(t, output, "value=125")
		assert.Contains(t, output, "method=text-window")
		assert.Contains(t, output, "CPT 99213 cost: $125")
		assert.Contains(t, output, "...")
	})

	t.Run("logs errors at warn level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := ccslog.NewCrawlLogger(slog.New(slog.NewTextHandler(&buf, nil)))

		l.Error("https://example.org/", errors.New("boom"))

		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "err=boom")
	})
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", ccslog.Snippet(" a\n b\t c ", 10))
	assert.Equal(t, "abc...", ccslog.Snippet("abcdef", 3))
	assert.Equal(t, "prix é...", ccslog.Snippet("prix éèà", 6))
}
