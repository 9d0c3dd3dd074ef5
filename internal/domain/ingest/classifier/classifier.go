// Package classifier derives the category label, budget flag and record ID
// for each ingested row.
package classifier

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/internal/domain/expense"
)

// Rule maps a lowercase substring pattern to a canonical category label.
type Rule struct {
	Pattern string
	Label   string
}

// rules is the ordered rule list, evaluated top to bottom. In the explicit
// pass a later match overrides an earlier one; in the heuristic pass the
// first match wins. Both orderings are load-bearing and covered by tests.
var rules = []Rule{
	{Pattern: "ppri", Label: expense.CategoryPPRI},
	{Pattern: "diaria", Label: expense.CategoryDiarias},
	{Pattern: "diária", Label: expense.CategoryDiarias},
}

// exceededThreshold is the hardcoded per-item alert amount. Strictly greater
// flags the record; exactly 2000 stays within.
var exceededThreshold = decimal.NewFromInt(2000)

// Classifier assigns canonical categories using a substring matcher built
// from the rule table.
type Classifier struct {
	matcher *ahocorasick.Matcher
}

// New builds a classifier over the package rule table.
func New() *Classifier {
	patterns := make([][]byte, len(rules))
	for i, r := range rules {
		patterns[i] = []byte(r.Pattern)
	}
	return &Classifier{matcher: ahocorasick.NewMatcher(patterns)}
}

// Classify produces the final category for a row from its raw purpose text
// and collaborator name. Two passes:
//
//  1. If the purpose text itself carries an explicit PPRI/Diária signal,
//     normalize it to the canonical label and stop. When both signals are
//     present the Diárias rule, being later in the table, wins.
//  2. Otherwise scan purpose and name together; the first rule to match
//     wins. No match keeps the raw purpose text, or falls back to Geral
//     when the purpose is blank.
func (c *Classifier) Classify(rawPurpose, collaborator string) string {
	purpose := strings.TrimSpace(rawPurpose)
	if c.hasExplicitSignal(purpose) {
		label := purpose
		matched := c.matchedRules(strings.ToLower(purpose))
		for i, rule := range rules {
			if matched[i] {
				label = rule.Label
			}
		}
		return label
	}

	haystack := strings.ToLower(purpose) + " " + strings.ToLower(collaborator)
	matched := c.matchedRules(haystack)
	for i, rule := range rules {
		if matched[i] {
			return rule.Label
		}
	}

	if purpose != "" {
		return purpose
	}
	return expense.CategoryGeneral
}

// matchedRules runs the substring matcher and reports, per rule index,
// whether that rule's pattern occurred anywhere in the text.
func (c *Classifier) matchedRules(text string) map[int]bool {
	matched := make(map[int]bool, len(rules))
	for _, idx := range c.matcher.Match([]byte(text)) {
		matched[idx] = true
	}
	return matched
}

// hasExplicitSignal reports whether the purpose column itself names one of
// the tracked categories, which overrides any name-based inference.
func (c *Classifier) hasExplicitSignal(purpose string) bool {
	upper := strings.ToUpper(purpose)
	return strings.Contains(upper, "PPRI") || strings.Contains(upper, "DIÁRIA")
}

// BudgetFlag freezes the per-item threshold check at ingestion time.
func BudgetFlag(amount decimal.Decimal) expense.BudgetFlag {
	if amount.GreaterThan(exceededThreshold) {
		return expense.BudgetExceeded
	}
	return expense.BudgetWithin
}
