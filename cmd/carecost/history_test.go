package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/carecost"
	main "github.com/fwojciec/carecost/cmd/carecost"
	"github.com/fwojciec/carecost/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists searches with ID, time, location and codes", func(t *testing.T) {
		t.Parallel()

		store := &mock.ResultStore{
			ListSearchesFn: func(_ context.Context) ([]*carecost.SearchResult, error) {
				return []*carecost.SearchResult{
					{ID: "s-2", Location: "Austin, TX", Codes: []string{"99213", "70450"}, CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
					{ID: "s-1", Location: "Boston, MA", Codes: []string{"99213"}, CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.HistoryCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t,
			"s-2  2026-03-02 09:30  Austin, TX  99213,70450\n"+
				"s-1  2026-03-01 08:00  Boston, MA  99213\n",
			stdout.String())
	})

	t.Run("shows helpful message when nothing is saved", func(t *testing.T) {
		t.Parallel()

		store := &mock.ResultStore{
			ListSearchesFn: func(_ context.Context) ([]*carecost.SearchResult, error) {
				return nil, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.HistoryCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No saved searches")
	})
}

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	saved := &carecost.SearchResult{
		ID:        "s-1",
		Location:  "Boston, MA",
		Codes:     []string{"99213"},
		Status:    carecost.SearchOK,
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Hospitals: []*carecost.HospitalResult{{
			Hospital: &carecost.Hospital{Name: "General", Website: "https://general.example.org"},
			Status:   carecost.HospitalFound,
			Candidates: []carecost.PriceCandidate{{
				Code: "99213", Value: 140, SourceURL: "https://general.example.org/fees", Method: carecost.MethodTextWindow,
			}},
		}},
	}
	store := &mock.ResultStore{
		FindSearchFn: func(_ context.Context, id string) (*carecost.SearchResult, error) {
			if id != saved.ID {
				return nil, carecost.Errorf(carecost.ENOTFOUND, "search %q not found", id)
			}
			return saved, nil
		},
	}

	t.Run("prints the text report", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.ShowCmd{ID: "s-1", Output: "text"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Location: Boston, MA")
		assert.Contains(t, stdout.String(), "Price: $140.00")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.ShowCmd{ID: "s-1", Output: "json"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `"id": "s-1"`)
	})

	t.Run("reports unknown IDs", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Store: store}

		err := (&main.ShowCmd{ID: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, carecost.ENOTFOUND, carecost.ErrorCode(err))
		assert.Contains(t, stderr.String(), `search "missing" not found`)
	})
}
