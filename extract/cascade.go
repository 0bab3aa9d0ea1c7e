package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/carecost"
)

const amount = `(\d[\d,]*(?:\.\d{1,2})?)`

// patterns is the price cascade, tried in order. The first pattern that
// yields a valid price wins.
var patterns = []*regexp.Regexp{
	// Term before the amount: "cost: $125.00", "fee is 350".
	regexp.MustCompile(`(?i)\b(?:cost|price|charge|fee|rate)s?\b\s*(?:of|is|are)?\s*:?\s*\$?\s*` + amount),
	// Term after the amount: "$125 cash price".
	regexp.MustCompile(`(?i)\$\s*` + amount + `\s*(?:(?:cash|self[- ]pay|total|estimated)\s+)?(?:cost|price|charge|fee|rate)s?\b`),
	// Bare dollar amount.
	regexp.MustCompile(`\$\s*` + amount),
}

var cellAmount = regexp.MustCompile(`\$?\s*(\d[\d,]*(?:\.\d+)?)`)

// Cascade finds prices in free text.
type Cascade struct {
	Bounds carecost.Bounds
}

// Prices returns the valid prices matched by the first pattern that yields
// any. Numbers spelling the code itself are ignored.
func (c Cascade) Prices(text, code string) []float64 {
	for _, re := range patterns {
		var prices []float64
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			if strings.ReplaceAll(raw, ",", "") == code {
				continue
			}
			v, ok := parseNumber(raw)
			if !ok || !c.Bounds.Contains(v) {
				continue
			}
			prices = append(prices, v)
		}
		if len(prices) > 0 {
			return prices
		}
	}
	return nil
}

// Find returns the representative price in text.
func (c Cascade) Find(text, code string) (float64, bool) {
	return carecost.Representative(c.Prices(text, code))
}

// Amount parses the first number in a cell such as "$1,250.00" and
// checks it against the bounds.
func (c Cascade) Amount(cell string) (float64, bool) {
	m := cellAmount.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	v, ok := parseNumber(m[1])
	if !ok || !c.Bounds.Contains(v) {
		return 0, false
	}
	return v, true
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var priceWords = []string{"price", "cost", "fee", "charge", "rate", "amount", "$"}

// IsPriceName reports whether a column header, key or tag names a price.
func IsPriceName(name string) bool {
	name = strings.ToLower(name)
	for _, w := range priceWords {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// ContainsCode reports whether code occurs in text as a whole token.
func ContainsCode(text, code string) bool {
	return nextToken(text, code, 0) >= 0
}

// TokenIndexes returns the start offsets of every non-overlapping
// occurrence of term in text that is not adjacent to an ASCII letter or
// digit. ASCII case is ignored.
func TokenIndexes(text, term string) []int {
	var out []int
	for i := nextToken(text, term, 0); i >= 0; i = nextToken(text, term, i+len(term)) {
		out = append(out, i)
	}
	return out
}

// nextToken returns the offset of the first token occurrence of term in
// text at or after from, or -1.
func nextToken(text, term string, from int) int {
	n := len(term)
	if n == 0 {
		return -1
	}
	first := lowerASCII(term[0])
	for i := from; i+n <= len(text); i++ {
		if lowerASCII(text[i]) != first || !equalFoldASCII(text[i:i+n], term) {
			continue
		}
		if i > 0 && isAlnumASCII(text[i-1]) {
			continue
		}
		if i+n < len(text) && isAlnumASCII(text[i+n]) {
			continue
		}
		return i
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func isAlnumASCII(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
