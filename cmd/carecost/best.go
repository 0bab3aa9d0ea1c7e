package main

import (
	"fmt"

	"github.com/fwojciec/carecost"
)

// Run executes the best command.
func (c *BestCmd) Run(deps *Dependencies) error {
	best, err := deps.Store.FindBestPrice(deps.Ctx, c.Code)
	if carecost.ErrorCode(err) == carecost.ENOTFOUND {
		fmt.Fprintf(deps.Stdout, "No saved price for %s. Use 'carecost search' first.\n", c.Code)
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", carecost.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Best price for %s: $%.2f\n", c.Code, best.Candidate.Value)
	if best.Hospital != nil {
		fmt.Fprintf(deps.Stdout, "Hospital: %s\n", best.Hospital.Name)
		if best.Hospital.Address != "" {
			fmt.Fprintf(deps.Stdout, "Address: %s\n", best.Hospital.Address)
		}
	}
	fmt.Fprintf(deps.Stdout, "Source: %s\n", best.Candidate.SourceURL)
	fmt.Fprintf(deps.Stdout, "Method: %s\n", best.Candidate.Method)
	if best.SearchID != "" {
		fmt.Fprintf(deps.Stdout, "Search: %s (%s, %s)\n",
			best.SearchID, best.Location, best.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
