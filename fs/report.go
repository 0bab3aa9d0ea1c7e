package fs

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/carecost"
)

// FormatReport renders the plain text results report of r with one
// section per procedure code.
func FormatReport(r *carecost.SearchResult) string {
	var b strings.Builder
	b.WriteString("=== HOSPITAL PROCEDURE PRICING RESULTS ===\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Location: %s\n", r.Location)
	if r.Status == carecost.SearchNoHospitals {
		b.WriteString("\nNo hospitals were found near this location.\n")
		return b.String()
	}
	for _, code := range r.Codes {
		b.WriteString("\n")
		writeCode(&b, r, code)
	}
	return b.String()
}

func writeCode(b *strings.Builder, r *carecost.SearchResult, code string) {
	fmt.Fprintf(b, "Procedure code: %s\n", code)
	if name := r.Names[code]; name != "" {
		fmt.Fprintf(b, "Procedure name: %s\n", name)
	}
	b.WriteString("\n")

	m := r.Metrics(code)
	b.WriteString("=== SEARCH METRICS ===\n")
	fmt.Fprintf(b, "Total hospitals searched: %d\n", m.TotalHospitals)
	fmt.Fprintf(b, "Hospitals with websites: %d\n", m.HospitalsWithWebsites)
	fmt.Fprintf(b, "Hospitals with prices found: %d\n", m.HospitalsWithPrices)
	fmt.Fprintf(b, "Overall success rate: %.2f%%\n", m.OverallSuccessRate)
	fmt.Fprintf(b, "Website search success rate: %.2f%%\n", m.WebsiteSuccessRate)

	best := r.Best(code)
	if best == nil {
		b.WriteString("\nNo pricing information was found for this procedure.\n")
		b.WriteString("Try searching with a different CPT code or a wider radius.\n")
		return
	}

	b.WriteString("\n=== PRICE STATISTICS ===\n")
	fmt.Fprintf(b, "Lowest price: $%.2f\n", m.PriceMin)
	fmt.Fprintf(b, "Highest price: $%.2f\n", m.PriceMax)
	fmt.Fprintf(b, "Average price: $%.2f\n", m.PriceAvg)
	fmt.Fprintf(b, "Median price: $%.2f\n", m.PriceMedian)
	fmt.Fprintf(b, "Price range: $%.2f\n", m.PriceRange)
	fmt.Fprintf(b, "Price variance: $%.2f\n", m.PriceVariance)

	b.WriteString("\n=== BEST PRICE FOUND ===\n")
	fmt.Fprintf(b, "Price: $%.2f\n", best.Candidate.Value)
	fmt.Fprintf(b, "Hospital: %s\n", best.Hospital.Name)
	fmt.Fprintf(b, "Address: %s\n", orUnknown(best.Hospital.Address))
	fmt.Fprintf(b, "Source: %s\n", best.Candidate.SourceURL)
	fmt.Fprintf(b, "Method: %s\n", best.Candidate.Method)

	b.WriteString("\n=== ALL PRICES FOUND ===\n")
	for i, p := range allPrices(r, code) {
		fmt.Fprintf(b, "%d. $%.2f - %s\n", i+1, p.candidate.Value, p.hospital.Name)
		fmt.Fprintf(b, "   Address: %s\n", orUnknown(p.hospital.Address))
		fmt.Fprintf(b, "   Source: %s\n", p.candidate.SourceURL)
	}
}

type pricedAt struct {
	candidate carecost.PriceCandidate
	hospital  *carecost.Hospital
}

// allPrices lists every priced candidate for code, lowest first.
func allPrices(r *carecost.SearchResult, code string) []pricedAt {
	var out []pricedAt
	for _, h := range r.Hospitals {
		for _, c := range h.CandidatesFor(code) {
			if c.Priced() {
				out = append(out, pricedAt{candidate: c, hospital: h.Hospital})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b pricedAt) int {
		return cmp.Compare(a.candidate.Value, b.candidate.Value)
	})
	return out
}

// FormatUnsuccessful renders the hospitals where no price was found.
func FormatUnsuccessful(r *carecost.SearchResult) string {
	var b strings.Builder
	b.WriteString("=== HOSPITALS WHERE PRICE SEARCH FAILED ===\n\n")
	failed := r.Unsuccessful()
	if len(failed) == 0 {
		b.WriteString("No unsuccessful searches - all hospitals provided pricing information.\n")
		return b.String()
	}
	for i, h := range failed {
		hasSite := h.Hospital != nil && h.Hospital.HasWebsite()
		name := ""
		if h.Hospital != nil {
			name = h.Hospital.Name
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		fmt.Fprintf(&b, "   Has website: %s\n", yesNo(hasSite))
		if hasSite {
			fmt.Fprintf(&b, "   Has PDF resources: %s\n", yesNo(len(h.PDFs) > 0))
		}
		if h.Err != "" {
			fmt.Fprintf(&b, "   Error: %s\n", h.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
