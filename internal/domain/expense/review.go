package expense

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/pkg/money"
)

// Filter narrows the record set for the review view. Zero values mean "no
// constraint" for that dimension.
type Filter struct {
	// Search matches against name, ID and display value. Name and ID also
	// get a fuzzy fallback so near-misses still surface.
	Search string
	// Type matches the normalized (trimmed, uppercased) category exactly.
	Type string
	// Status matches the normalized status exactly.
	Status string
	// Date is a substring match on the canonical date, so "02/01" finds a
	// day across years and "/2025" a whole year.
	Date string
}

// Match reports whether a single record passes every set constraint.
func (f Filter) Match(r Record) bool {
	if f.Search != "" && !matchesSearch(r, f.Search) {
		return false
	}
	if f.Type != "" && normalizeFilterValue(r.Type) != f.Type {
		return false
	}
	if f.Status != "" && normalizeFilterValue(string(r.Status)) != f.Status {
		return false
	}
	if f.Date != "" && !strings.Contains(r.Date, f.Date) {
		return false
	}
	return true
}

func matchesSearch(r Record, term string) bool {
	lower := strings.ToLower(term)
	if strings.Contains(strings.ToLower(r.Name), lower) ||
		strings.Contains(strings.ToLower(r.ID), lower) ||
		strings.Contains(r.Val, term) {
		return true
	}
	return fuzzy.MatchNormalizedFold(term, r.Name) || fuzzy.MatchNormalizedFold(term, r.ID)
}

// ApplyFilter returns the records passing the filter, preserving order.
func ApplyFilter(records []Record, f Filter) []Record {
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Summary holds the totals shown above the review table for the current
// filtered view.
type Summary struct {
	Count   int
	Pending int
	Total   decimal.Decimal
}

// Summarize computes review totals over an already-filtered set. Display
// values that fail to parse contribute zero.
func Summarize(records []Record) Summary {
	sum := Summary{Total: decimal.Zero}
	for _, r := range records {
		sum.Count++
		if r.Status == StatusPending {
			sum.Pending++
		}
		sum.Total = sum.Total.Add(money.Parse(r.Val))
	}
	return sum
}

// Types lists the distinct normalized categories for the filter dropdown.
func Types(records []Record) []string {
	return distinctNormalized(records, func(r Record) string { return r.Type })
}

// Statuses lists the distinct normalized statuses for the filter dropdown.
func Statuses(records []Record) []string {
	return distinctNormalized(records, func(r Record) string { return string(r.Status) })
}

func distinctNormalized(records []Record, value func(Record) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range records {
		v := normalizeFilterValue(value(r))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func normalizeFilterValue(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
