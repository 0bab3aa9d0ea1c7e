package crawl_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/bloom"
	"github.com/fwojciec/carecost/crawl"
	"github.com/fwojciec/carecost/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHospital = &carecost.Hospital{Name: "St. Example", Website: "https://www.example.org/"}

func newFrontier(cfg crawl.FrontierConfig) (*crawl.Frontier, *mock.CrawlLogger) {
	logger := &mock.CrawlLogger{}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 100
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 3
	}
	f := crawl.NewFrontier(testHospital, "https://www.example.org/", cfg, bloom.NewVisitedSet(100), logger)
	return f, logger
}

func drain(f *crawl.Frontier) []carecost.FrontierEntry {
	var out []carecost.FrontierEntry
	for {
		e, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

func TestFrontier_AcceptIfNew_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f, logger := newFrontier(crawl.FrontierConfig{})

	assert.True(t, f.EnqueueSeed("https://www.example.org/", 0))
	assert.False(t, f.AcceptIfNew("https://www.example.org/", 1, 10))
	assert.False(t, f.AcceptIfNew("https://WWW.example.org:443/#top", 1, 10), "normalized duplicate")

	assert.Equal(t, 1, f.Len())
	assert.Equal(t, carecost.SkipVisited, logger.Skips[0].Reason)
}

func TestFrontier_Next_orders_by_depth_then_score(t *testing.T) {
	t.Parallel()

	f, _ := newFrontier(crawl.FrontierConfig{})

	f.AcceptIfNew("https://www.example.org/d1-low", 1, 5)
	f.AcceptIfNew("https://www.example.org/d2-high", 2, 100)
	f.AcceptIfNew("https://www.example.org/d1-high", 1, 50)
	f.AcceptIfNew("https://www.example.org/d1-tie-first", 1, 20)
	f.AcceptIfNew("https://www.example.org/d1-tie-second", 1, 20)
	f.EnqueueSeed("https://www.example.org/", 0)

	var urls []string
	for _, e := range drain(f) {
		urls = append(urls, e.URL)
	}

	assert.Equal(t, []string{
		"https://www.example.org/",
		"https://www.example.org/d1-high",
		"https://www.example.org/d1-tie-first",
		"https://www.example.org/d1-tie-second",
		"https://www.example.org/d1-low",
		"https://www.example.org/d2-high",
	}, urls)
}

func TestFrontier_Next_preserves_depth_monotonicity(t *testing.T) {
	t.Parallel()

	f, _ := newFrontier(crawl.FrontierConfig{MaxDepth: 5, MaxPages: 1000})
	f.EnqueueSeed("https://www.example.org/", 0)

	// Simulate a crawl where every page links to three children with
	// scores that grow with depth.
	lastDepth := 0
	n := 0
	for {
		e, ok := f.Next()
		if !ok {
			break
		}
		f.MarkFetched()
		require.GreaterOrEqual(t, e.Depth, lastDepth, "depth went backwards at %s", e.URL)
		lastDepth = e.Depth
		for i := range 3 {
			n++
			f.AcceptIfNew(fmt.Sprintf("https://www.example.org/p%d", n), e.Depth+1, e.Depth*10+i)
		}
	}
	assert.Equal(t, 5, lastDepth)
}

func TestFrontier_AcceptIfNew_enforces_bounds(t *testing.T) {
	t.Parallel()

	f, logger := newFrontier(crawl.FrontierConfig{MaxDepth: 2, Exclude: crawl.DefaultExclude()})

	tests := []struct {
		url    string
		depth  int
		reason carecost.SkipReason
	}{
		{"https://www.example.org/deep", 3, carecost.SkipDepth},
		{"https://other.org/pricing", 1, carecost.SkipOffDomain},
		{"https://www.example.org/files/prices.pdf", 1, carecost.SkipPDF},
		{"https://www.example.org/img/logo.png", 1, carecost.SkipBinary},
		{"https://www.example.org/docs/form.docx", 1, carecost.SkipBinary},
		{"https://www.example.org/patient-login", 1, carecost.SkipExcluded},
		{"https://www.example.org/search?q=mri", 1, carecost.SkipExcluded},
		{"https://www.example.org/events/calendar", 1, carecost.SkipExcluded},
		{"https://www.example.org/404.html", 1, carecost.SkipExcluded},
		{"mailto:billing@example.org", 1, carecost.SkipScheme},
	}

	for _, tt := range tests {
		assert.False(t, f.AcceptIfNew(tt.url, tt.depth, 0), tt.url)
	}

	reasons := logger.SkipReasons()
	for _, tt := range tests {
		want := tt.url
		if tt.reason != carecost.SkipScheme {
			want, _ = crawl.NormalizeURL(tt.url)
		}
		assert.Equal(t, tt.reason, reasons[want], tt.url)
	}
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_AcceptIfNew_accepts_subdomains_of_seed_domain(t *testing.T) {
	t.Parallel()

	f, _ := newFrontier(crawl.FrontierConfig{Exclude: crawl.DefaultExclude()})

	assert.True(t, f.AcceptIfNew("https://billing.example.org/estimates", 1, 0))
	assert.True(t, f.AcceptIfNew("https://www.example.org/research/outcomes", 1, 0), "research is not search")
}

func TestFrontier_records_PDF_references(t *testing.T) {
	t.Parallel()

	f, _ := newFrontier(crawl.FrontierConfig{})

	f.AcceptIfNew("https://www.example.org/pricing.pdf", 1, 40)
	f.AcceptIfNew("https://www.example.org/pricing.pdf", 2, 40)

	pdfs := f.PDFs()
	require.Len(t, pdfs, 1)
	assert.Equal(t, "https://www.example.org/pricing.pdf", pdfs[0].URL)
	assert.Equal(t, 40, pdfs[0].Score)
	assert.Same(t, testHospital, pdfs[0].Hospital)
}

func TestFrontier_enforces_page_budget(t *testing.T) {
	t.Parallel()

	f, logger := newFrontier(crawl.FrontierConfig{MaxPages: 2})

	for i := range 5 {
		f.AcceptIfNew(fmt.Sprintf("https://www.example.org/p%d", i), 1, 0)
	}

	fetched := 0
	for {
		if _, ok := f.Next(); !ok {
			break
		}
		f.MarkFetched()
		fetched++
	}

	assert.Equal(t, 2, fetched)
	assert.Equal(t, 2, f.Fetched())
	assert.False(t, f.AcceptIfNew("https://www.example.org/late", 1, 0))
	assert.Equal(t, carecost.SkipBudget, logger.SkipReasons()["https://www.example.org/late"])
}

func TestFrontier_AcceptFile_enforces_file_budget(t *testing.T) {
	t.Parallel()

	f, logger := newFrontier(crawl.FrontierConfig{MaxFiles: 1})

	assert.True(t, f.AcceptFile("https://www.example.org/charges.csv"))
	assert.False(t, f.AcceptFile("https://www.example.org/charges.csv"))
	assert.False(t, f.AcceptFile("https://www.example.org/other.json"))
	assert.False(t, f.AcceptFile("https://cdn.other.org/charges.xml"))

	reasons := logger.SkipReasons()
	assert.Equal(t, carecost.SkipVisited, reasons["https://www.example.org/charges.csv"])
	assert.Equal(t, carecost.SkipBudget, reasons["https://www.example.org/other.json"])
	assert.Equal(t, carecost.SkipBudget, reasons["https://cdn.other.org/charges.xml"])
}

func TestFrontier_consults_robots_policy(t *testing.T) {
	t.Parallel()

	f, logger := newFrontier(crawl.FrontierConfig{})
	f.SetRobots(&mock.RobotsPolicy{AllowedFn: func(url string) bool {
		return url != "https://www.example.org/private"
	}})

	assert.False(t, f.AcceptIfNew("https://www.example.org/private", 1, 0))
	assert.True(t, f.AcceptIfNew("https://www.example.org/public", 1, 0))
	assert.Equal(t, carecost.SkipRobots, logger.SkipReasons()["https://www.example.org/private"])
}

func TestFrontier_Domain(t *testing.T) {
	t.Parallel()

	f, _ := newFrontier(crawl.FrontierConfig{})

	assert.Equal(t, "example.org", f.Domain())
}

func TestFrontier_ClaimRedirect(t *testing.T) {
	t.Parallel()

	t.Run("passes over a queued entry already loaded through a redirect", func(t *testing.T) {
		t.Parallel()

		f, logger := newFrontier(crawl.FrontierConfig{})
		f.EnqueueSeed("https://www.example.org/a", 10)
		f.EnqueueSeed("https://www.example.org/b", 5)

		first, ok := f.Next()
		require.True(t, ok)
		assert.Equal(t, "https://www.example.org/a", first.URL)
		assert.True(t, f.ClaimRedirect("https://www.example.org/b"))

		_, ok = f.Next()
		assert.False(t, ok)
		require.NotEmpty(t, logger.Skips)
		last := logger.Skips[len(logger.Skips)-1]
		assert.Equal(t, "https://www.example.org/b", last.URL)
		assert.Equal(t, carecost.SkipVisited, last.Reason)
	})

	t.Run("refuses a target that was already dequeued", func(t *testing.T) {
		t.Parallel()

		f, _ := newFrontier(crawl.FrontierConfig{})
		f.EnqueueSeed("https://www.example.org/b", 5)
		_, ok := f.Next()
		require.True(t, ok)

		assert.False(t, f.ClaimRedirect("https://www.example.org/b"))
	})

	t.Run("refuses a target claimed by an earlier redirect", func(t *testing.T) {
		t.Parallel()

		f, _ := newFrontier(crawl.FrontierConfig{})

		assert.True(t, f.ClaimRedirect("https://www.example.org/landing"))
		assert.False(t, f.ClaimRedirect("https://www.example.org/landing#top"))
		assert.False(t, f.AcceptIfNew("https://www.example.org/landing", 1, 10))
	})
}
