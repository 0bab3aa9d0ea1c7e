package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/carecost"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	searches, err := deps.Store.ListSearches(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", carecost.ErrorMessage(err))
		return err
	}

	if len(searches) == 0 {
		fmt.Fprintln(deps.Stdout, "No saved searches. Use 'carecost search' to run one.")
		return nil
	}

	for _, s := range searches {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Location, strings.Join(s.Codes, ","))
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	result, err := deps.Store.FindSearch(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", carecost.ErrorMessage(err))
		return err
	}
	return writeResult(deps.Stdout, result, c.Output)
}
