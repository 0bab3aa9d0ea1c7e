package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/carecost"
	"github.com/fwojciec/carecost/crawl"
	carecostcsv "github.com/fwojciec/carecost/csv"
	carecostetree "github.com/fwojciec/carecost/etree"
	carecostexcelize "github.com/fwojciec/carecost/excelize"
	"github.com/fwojciec/carecost/extract"
	"github.com/fwojciec/carecost/fs"
	"github.com/fwojciec/carecost/goquery"
	carecostjson "github.com/fwojciec/carecost/json"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	opts := c.Options()
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", carecost.ErrorMessage(err))
		return err
	}

	searcher := &crawl.Searcher{
		Finder:      deps.Finder,
		Crawler:     newCrawler(deps, opts, c.Names),
		Logger:      deps.CrawlLogger,
		Concurrency: opts.Concurrency,
	}

	result, err := searcher.Search(deps.Ctx, c.Query())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", carecost.ErrorMessage(err))
		return err
	}

	if err := deps.Store.SaveSearch(deps.Ctx, result); err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	if c.ReportDir != "" {
		w := fs.NewWriter(c.ReportDir)
		if err := w.SaveSearch(deps.Ctx, result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Report written to %s\n", w.Dir(result))
	}

	if err := writeResult(deps.Stdout, result, c.Output); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Saved search %s\n", result.ID)
	return nil
}

// Query returns the search described by the flags.
func (c *SearchCmd) Query() carecost.SearchQuery {
	return carecost.SearchQuery{
		HospitalQuery: carecost.HospitalQuery{
			Location:    c.Location,
			RadiusMiles: c.Radius,
			Limit:       c.Limit,
		},
		Codes: c.Codes,
		Names: c.Names,
	}
}

// Options maps the crawl flags onto crawl.Options.
func (c *SearchCmd) Options() crawl.Options {
	opts := crawl.DefaultOptions()
	opts.MaxDepth = c.MaxDepth
	opts.MaxPages = c.MaxPages
	opts.MaxFiles = c.MaxFiles
	opts.SitemapSeeds = c.Sitemap
	opts.Delay = c.Delay
	opts.Jitter = c.Jitter
	opts.RequestsPerSecond = c.RPS
	opts.Concurrency = c.Concurrency
	opts.WindowRadius = c.Window
	opts.Bounds = carecost.Bounds{Min: c.MinPrice, Max: c.MaxPrice}
	opts.StopOnFirst = !c.Exhaustive
	opts.RespectRobots = c.Robots
	return opts
}

func newCrawler(deps *Dependencies, opts crawl.Options, names map[string]string) *crawl.Crawler {
	extractor := extract.NewExtractor(
		extract.WithBounds(opts.Bounds),
		extract.WithWindowRadius(opts.WindowRadius),
		extract.WithNames(names),
	)
	files := map[carecost.StructuredFormat]carecost.FileExtractor{
		carecost.FormatCSV:  carecostcsv.NewExtractor(carecostcsv.WithBounds(opts.Bounds)),
		carecost.FormatXLSX: carecostexcelize.NewExtractor(carecostexcelize.WithBounds(opts.Bounds)),
		carecost.FormatJSON: carecostjson.NewExtractor(carecostjson.WithBounds(opts.Bounds)),
		carecost.FormatXML:  carecostetree.NewExtractor(carecostetree.WithBounds(opts.Bounds)),
	}
	return &crawl.Crawler{
		Fetcher:    deps.Fetcher,
		Normalizer: goquery.NewNormalizer(),
		Extractor:  extractor,
		Links:      goquery.NewLinkScorer(goquery.WithProcedureNames(names)),
		Limiter:    crawl.NewDomainLimiter(opts.Delay, opts.Jitter, opts.RequestsPerSecond),
		Files:      files,
		Robots:     deps.Robots,
		Sitemaps:   deps.Sitemaps,
		Logger:     deps.CrawlLogger,
		Options:    opts,
	}
}

// writeResult prints r as the plain-text report or as JSON.
func writeResult(w io.Writer, r *carecost.SearchResult, format string) error {
	if format == "json" {
		return fs.EncodeJSON(w, r)
	}
	_, err := io.WriteString(w, fs.FormatReport(r))
	return err
}
