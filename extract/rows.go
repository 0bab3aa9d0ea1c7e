package extract

import "strings"

// Rows finds a price for code in tabular data whose first row is the
// header. Among columns whose header names a price, the first valid
// non-empty cell in a row containing the code is used. Rows without such a
// cell fall back to the regex cascade over the joined row text. Returns the
// price and the row as context.
func (c Cascade) Rows(rows [][]string, code string) (float64, string, bool) {
	if len(rows) == 0 || code == "" {
		return 0, "", false
	}
	var priceCols []int
	for i, h := range rows[0] {
		if IsPriceName(h) {
			priceCols = append(priceCols, i)
		}
	}

	for _, row := range rows[1:] {
		if !rowContains(row, code) {
			continue
		}
		context := strings.Join(row, " | ")
		for _, i := range priceCols {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" || ContainsCode(row[i], code) {
				continue
			}
			if v, ok := c.Amount(row[i]); ok {
				return v, context, true
			}
		}
		if v, ok := c.Find(strings.Join(row, " "), code); ok {
			return v, context, true
		}
	}
	return 0, "", false
}

func rowContains(row []string, code string) bool {
	for _, cell := range row {
		if ContainsCode(cell, code) {
			return true
		}
	}
	return false
}

// Distinct returns codes without empty or repeated entries, in order.
func Distinct(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
