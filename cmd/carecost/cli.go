package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/carecost"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Store       carecost.ResultStore
	Finder      carecost.HospitalFinder
	Fetcher     carecost.Fetcher
	Robots      carecost.RobotsService
	Sitemaps    carecost.SitemapService
	CrawlLogger carecost.CrawlLogger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log every visited and skipped URL"`
	LogFile string `name:"log-file" type:"path" help:"Write JSON logs to a rotated file instead of stderr"`

	Search  SearchCmd  `cmd:"" help:"Search nearby hospital websites for procedure prices"`
	Best    BestCmd    `cmd:"" help:"Show the lowest saved price for a procedure code"`
	History HistoryCmd `cmd:"" help:"List saved searches"`
	Show    ShowCmd    `cmd:"" help:"Show the report of a saved search"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Codes    []string          `arg:"" help:"Procedure (CPT) codes to price"`
	Location string            `short:"l" required:"" help:"City, ZIP code or address to search around"`
	Radius   float64           `short:"r" default:"25" help:"Search radius in miles"`
	Limit    int               `short:"n" default:"10" help:"Maximum number of hospitals to crawl"`
	Names    map[string]string `name:"procedure-name" help:"Procedure name searched alongside a code, as CODE=NAME"`

	MaxDepth    int           `default:"3" help:"Deepest link level followed from the website root"`
	MaxPages    int           `default:"50" help:"Page fetch budget per hospital"`
	MaxFiles    int           `default:"5" help:"Structured file download budget per hospital"`
	Sitemap     int           `name:"sitemap-seeds" default:"10" help:"Pricing pages taken from the sitemap as seeds (0 disables)"`
	Delay       time.Duration `default:"1s" help:"Pause between requests to the same host"`
	Jitter      time.Duration `default:"500ms" help:"Random spread applied to the delay"`
	RPS         float64       `name:"rps" default:"5" help:"Request rate ceiling across all hospitals (0 disables)"`
	Concurrency int           `short:"c" default:"4" help:"Hospitals crawled at once"`
	Window      int           `default:"300" help:"Characters of context kept around a code"`
	MinPrice    float64       `default:"10" help:"Lowest accepted price"`
	MaxPrice    float64       `default:"50000" help:"Highest accepted price"`
	Exhaustive  bool          `help:"Keep crawling after a confident price is found"`
	Robots      bool          `help:"Honor robots.txt"`

	Output    string `short:"o" enum:"text,json" default:"text" help:"Output format (text, json)"`
	ReportDir string `name:"report-dir" type:"path" help:"Also write results.json and reports under this directory"`
}

// BestCmd is the "best" subcommand.
type BestCmd struct {
	Code string `arg:"" help:"Procedure (CPT) code"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct{}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID     string `arg:"" help:"Search ID"`
	Output string `short:"o" enum:"text,json" default:"text" help:"Output format (text, json)"`
}
