package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/ledgerline/statement-parser/internal/config"
	"github.com/ledgerline/statement-parser/internal/models"
)

// transferPhrases are generic online-banking transfer descriptions whose
// category depends on direction, not keywords. Checked before the rule
// table.
var transferPhrases = []string{"online banking transfer", "online transfer to deposit"}

// Categorizer assigns a spending category from an ordered rule table. All
// keywords are compiled into a single Aho-Corasick automaton; the matched
// keyword owned by the earliest rule wins, preserving first-match-wins over
// the table order.
type Categorizer struct {
	matcher  *ahocorasick.Matcher
	ruleOf   []int // keyword index -> owning rule index
	rules    []config.CategoryRule
	fallback string
}

// NewCategorizer compiles the rule table. Rules after the first keywordless
// rule are unreachable; it becomes the fallback.
func NewCategorizer(rules []config.CategoryRule) *Categorizer {
	c := &Categorizer{rules: rules, fallback: "Other"}

	var keywords [][]byte
	for i, rule := range rules {
		if len(rule.Keywords) == 0 {
			c.fallback = rule.Name
			break
		}
		for _, kw := range rule.Keywords {
			keywords = append(keywords, []byte(strings.ToLower(kw)))
			c.ruleOf = append(c.ruleOf, i)
		}
	}
	c.matcher = ahocorasick.NewMatcher(keywords)
	return c
}

// Categorize returns the category for a transaction description. Never
// returns an empty label.
func (c *Categorizer) Categorize(description string, direction models.Direction) string {
	lower := strings.ToLower(description)

	if containsAny(lower, transferPhrases) {
		if direction == models.Withdrawal {
			return "Transfers Out"
		}
		return "Transfers In"
	}

	best := -1
	for _, hit := range c.matcher.Match([]byte(lower)) {
		if rule := c.ruleOf[hit]; best == -1 || rule < best {
			best = rule
		}
	}
	if best >= 0 {
		return c.rules[best].Name
	}
	return c.fallback
}
