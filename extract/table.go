package extract

import (
	"strings"

	"github.com/fwojciec/carecost"
)

// columns locates the code and price columns of a header row. The price
// column is the first header naming a price; the code column is the first
// other header naming a code.
func columns(header []string) (codeCol, priceCol int, ok bool) {
	codeCol, priceCol = -1, -1
	for i, h := range header {
		if isTablePriceHeader(h) {
			priceCol = i
			break
		}
	}
	for i, h := range header {
		if i != priceCol && isCodeHeader(h) {
			codeCol = i
			break
		}
	}
	return codeCol, priceCol, codeCol >= 0 && priceCol >= 0
}

func isCodeHeader(h string) bool {
	h = strings.ToLower(h)
	return strings.Contains(h, "cpt") || strings.Contains(h, "code") ||
		strings.Contains(h, "procedure") || strings.Contains(h, "hcpcs")
}

func isTablePriceHeader(h string) bool {
	h = strings.ToLower(h)
	for _, w := range []string{"price", "cost", "fee", "charge", "$"} {
		if strings.Contains(h, w) {
			return true
		}
	}
	return false
}

// TableRows finds prices for code in an HTML table. When the header names
// a code column and a price column, matching rows are read by column
// position. Other rows containing the code get the regex cascade over their
// joined cell text.
func (e *Extractor) TableRows(t carecost.Table, code string) []carecost.PriceCandidate {
	header, rows := t.Header, t.Rows
	if len(header) == 0 && len(rows) > 0 {
		if _, _, ok := columns(rows[0]); ok {
			header, rows = rows[0], rows[1:]
		}
	}
	codeCol, priceCol, positional := columns(header)

	var out []carecost.PriceCandidate
	for _, row := range rows {
		joined := strings.Join(row, " ")
		if !ContainsCode(joined, code) {
			continue
		}
		if positional && codeCol < len(row) && priceCol < len(row) && ContainsCode(row[codeCol], code) {
			if v, ok := e.cascade.Amount(row[priceCol]); ok {
				out = append(out, tableCandidate(code, v, row))
				continue
			}
		}
		if v, ok := e.cascade.Find(joined, code); ok {
			out = append(out, tableCandidate(code, v, row))
		}
	}
	return out
}

func tableCandidate(code string, v float64, row []string) carecost.PriceCandidate {
	return carecost.PriceCandidate{
		Code:    code,
		Value:   v,
		Context: strings.Join(row, " | "),
		Method:  carecost.MethodTableRow,
	}
}
