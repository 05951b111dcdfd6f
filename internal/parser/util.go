package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Valid date token for this layout: "10Dec", "5 Jan", "23Feb".
	dateTokenPattern = regexp.MustCompile(`^(\d{1,2})\s*([A-Za-z]{3})$`)
	// Decimal amount trailing a description (e.g. "Investment WS 30.00").
	trailingAmountPattern = regexp.MustCompile(`^(.*\S)\s+(\d{1,3}(?:,\d{3})*\.\d{2})$`)
	// Standalone decimal amount, no text.
	amountOnlyPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d{2}$`)
	// Currency symbols, thousands separators, and whitespace inside amounts.
	amountJunkPattern = regexp.MustCompile(`[$,\s]`)
)

// collapseSpace normalizes multi-line cell text: internal newlines and runs
// of whitespace become single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isDateToken reports whether a cell holds a valid day+month token.
func isDateToken(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && dateTokenPattern.MatchString(s)
}

// parseAmount converts "1,234.56" or "$1,234.56" to a decimal. The second
// return is false when the text is empty or not a number.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := amountJunkPattern.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func startsWithAny(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
