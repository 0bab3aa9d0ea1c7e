package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/carecost"
	carecosthttp "github.com/fwojciec/carecost/http"
	"github.com/fwojciec/carecost/osm"
	ccslog "github.com/fwojciec/carecost/slog"
	"github.com/fwojciec/carecost/sqlite"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the result store.
	DB *sqlite.DB

	// Collaborators for end-to-end testing. Defaults are wired in Run when
	// nil.
	Finder  carecost.HospitalFinder
	Fetcher carecost.Fetcher

	logFile io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.logFile != nil {
		_ = m.logFile.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("carecost"),
		kong.Description("Find procedure prices published by nearby hospitals."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'carecost --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CARECOST_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger, err := m.newLogger(stderr, cli.Verbose, cli.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	deps.Logger = logger
	deps.Store = sqlite.NewResultStore(m.DB)

	if strings.HasPrefix(kongCtx.Command(), "search") {
		finder := m.Finder
		if finder == nil {
			finder = osm.NewFinder()
		}
		fetcher := m.Fetcher
		if fetcher == nil {
			fetcher = carecosthttp.NewFetcher()
		}
		deps.Finder = ccslog.NewLoggingHospitalFinder(finder, logger)
		deps.Fetcher = ccslog.NewLoggingFetcher(fetcher, logger)
		deps.Robots = carecosthttp.NewRobotsService()
		deps.Sitemaps = carecosthttp.NewSitemapService()
		deps.CrawlLogger = ccslog.NewCrawlLogger(logger)
	}

	return kongCtx.Run(deps)
}

// newLogger logs text to stderr, or JSON to a size-rotated file when path
// is set.
func (m *Main) newLogger(stderr io.Writer, verbose bool, path string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if path == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	m.logFile = file
	return slog.New(slog.NewJSONHandler(file, opts)), nil
}

func defaultDBPath() string {
	if path := os.Getenv("CARECOST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "carecost.db"
	}
	dir := filepath.Join(home, ".carecost")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "carecost.db")
}
