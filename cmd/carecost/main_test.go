package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/carecost"
	main "github.com/fwojciec/carecost/cmd/carecost"
	"github.com/fwojciec/carecost/fs"
	"github.com/fwojciec/carecost/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hospitalSite serves a price page at the root and 404 everywhere else.
func hospitalSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><head><title>General</title></head><body>
<p>Office visit CPT 99213 cost: $125.00</p></body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func finderFor(urls ...string) *mock.HospitalFinder {
	return &mock.HospitalFinder{
		FindHospitalsFn: func(_ context.Context, _ carecost.HospitalQuery) ([]*carecost.Hospital, error) {
			var hs []*carecost.Hospital
			for i, u := range urls {
				hs = append(hs, &carecost.Hospital{
					Name:    "Hospital " + string(rune('A'+i)),
					Address: "1 Main St",
					Website: u,
				})
			}
			return hs, nil
		},
	}
}

// fastSearch returns search arguments with pacing disabled.
func fastSearch(extra ...string) []string {
	args := []string{"search", "99213", "--location", "Boston, MA", "--delay", "0s", "--jitter", "0s", "--rps", "0"}
	return append(args, extra...)
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help lists every command", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		for _, cmd := range []string{"search", "best", "history", "show"} {
			assert.Contains(t, stdout.String(), cmd)
		}
		assert.Contains(t, stdout.String(), "Usage:")
	})

	t.Run("returns error without a command", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")

		err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("search prints the report and saves the result", func(t *testing.T) {
		t.Parallel()

		srv := hospitalSite(t)
		dbPath := filepath.Join(t.TempDir(), "test.db")

		m := main.NewMain()
		m.DBPath = dbPath
		m.Finder = finderFor(srv.URL)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), fastSearch(), stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "=== HOSPITAL PROCEDURE PRICING RESULTS ===")
		assert.Contains(t, stdout.String(), "Price: $125.00")
		assert.Contains(t, stdout.String(), "Hospital: Hospital A")
		assert.Contains(t, stderr.String(), "Saved search ")

		// A second run against the same database sees the saved price.
		m2 := main.NewMain()
		m2.DBPath = dbPath
		stdout2 := &bytes.Buffer{}

		err = m2.Run(context.Background(), []string{"best", "99213"}, stdout2, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout2.String(), "Best price for 99213: $125.00")
		assert.Contains(t, stdout2.String(), "Source: "+srv.URL+"/")
	})

	t.Run("search writes JSON when asked", func(t *testing.T) {
		t.Parallel()

		srv := hospitalSite(t)
		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		m.Finder = finderFor(srv.URL)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), fastSearch("--output", "json"), stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `"value": 125`)
		assert.Contains(t, stdout.String(), `"status": "ok"`)
	})

	t.Run("search writes report files under the report directory", func(t *testing.T) {
		t.Parallel()

		srv := hospitalSite(t)
		reportDir := t.TempDir()
		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		m.Finder = finderFor(srv.URL, "")

		err := m.Run(context.Background(), fastSearch("--report-dir", reportDir), &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
		dir := filepath.Join(reportDir, "Boston_MA_99213")
		for _, name := range []string{fs.ResultsFile, fs.ReportFile, fs.UnsuccessfulFile} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}
		unsuccessful, err := os.ReadFile(filepath.Join(dir, fs.UnsuccessfulFile))
		require.NoError(t, err)
		assert.Contains(t, string(unsuccessful), "Hospital B")
	})

	t.Run("search reports no hospitals", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		m.Finder = &mock.HospitalFinder{
			FindHospitalsFn: func(_ context.Context, _ carecost.HospitalQuery) ([]*carecost.Hospital, error) {
				return nil, errors.New("geocoder down")
			},
		}
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), fastSearch(), stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No hospitals were found near this location.")
	})

	t.Run("search rejects invalid crawl options", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		m.Finder = finderFor()
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), fastSearch("--max-pages", "0"), &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Equal(t, carecost.EINVALID, carecost.ErrorCode(err))
		assert.Contains(t, stderr.String(), "max pages must be positive")
	})

	t.Run("search requires a location", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")

		err := m.Run(context.Background(), []string{"search", "99213"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})

	t.Run("logs JSON to the log file", func(t *testing.T) {
		t.Parallel()

		srv := hospitalSite(t)
		logPath := filepath.Join(t.TempDir(), "logs", "carecost.log")
		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		m.Finder = finderFor(srv.URL)
		stderr := &bytes.Buffer{}

		args := append([]string{"--log-file", logPath}, fastSearch()...)
		err := m.Run(context.Background(), args, &bytes.Buffer{}, stderr)

		require.NoError(t, err)
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"price candidate"`)
		assert.NotContains(t, stderr.String(), "price candidate")
	})
}
