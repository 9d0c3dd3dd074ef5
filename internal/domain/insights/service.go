// Package insights recomputes every dashboard aggregate on read from the
// record set and the budget store. Nothing here is cached or persisted;
// data volumes are hundreds to low thousands of rows, so pure recomputation
// per call is cheap and keeps the engine lock-free.
package insights

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/internal/domain/budget"
	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/money"
)

// RankingCategoryFallback is the bucket for records without a category in
// ranking and breakdown views.
const RankingCategoryFallback = "OUTROS"

// RecordSource provides the current canonical record set.
type RecordSource interface {
	All() ([]expense.Record, error)
}

// BudgetSource provides the persisted month -> field -> value budgets.
type BudgetSource interface {
	Load() (map[string]map[string]float64, error)
}

// Filter selects the slice of records an aggregate is computed over. Year
// and Collaborator form the trend filter driving month-by-month series;
// MonthIndex (0..11, or -1 for the whole year) further narrows it to the
// KPI filter.
type Filter struct {
	Year         string
	MonthIndex   int
	Collaborator string
}

// Engine computes dashboard aggregates.
type Engine struct {
	records RecordSource
	budgets BudgetSource
	logger  *slog.Logger
}

// NewEngine creates an aggregation engine over the given sources.
func NewEngine(records RecordSource, budgets BudgetSource, logger *slog.Logger) *Engine {
	return &Engine{records: records, budgets: budgets, logger: logger}
}

// SeriesPoint is one month bucket of a budget-vs-actual series.
type SeriesPoint struct {
	Month  string
	Budget decimal.Decimal
	Actual decimal.Decimal
}

// CategorySeries is the full-year series for one tracked category.
type CategorySeries struct {
	Category string
	Points   [12]SeriesPoint
}

// MonthlySeries builds the twelve-bucket budget-vs-actual series for each
// tracked category over the trend filter (year + optional collaborator).
// For Geral every record counts; for PPRI and Diárias only records bucketed
// into that category, plus the month's manually entered actual override.
func (e *Engine) MonthlySeries(year, collaborator string) ([]CategorySeries, error) {
	records, err := e.trendRecords(year, collaborator)
	if err != nil {
		return nil, err
	}

	months, err := e.budgets.Load()
	if err != nil {
		return nil, err
	}

	tracked := []string{expense.CategoryGeneral, expense.CategoryPPRI, expense.CategoryDiarias}
	series := make([]CategorySeries, 0, len(tracked))

	for _, category := range tracked {
		cs := CategorySeries{Category: category}
		for i, monthKey := range expense.MonthKeys {
			fields := months[monthKey]
			point := SeriesPoint{
				Month:  monthKey,
				Budget: decimal.NewFromFloat(fields[budget.BudgetKey(category)]),
				Actual: decimal.Zero,
			}
			if category != expense.CategoryGeneral {
				point.Actual = decimal.NewFromFloat(fields[budget.ActualKey(category)])
			}
			for _, r := range records {
				idx, ok := r.MonthIndex()
				if !ok || idx != i {
					continue
				}
				if category == expense.CategoryGeneral || categoryBucket(r.Type) == category {
					point.Actual = point.Actual.Add(money.Parse(r.Val))
				}
			}
			cs.Points[i] = point
		}
		series = append(series, cs)
	}

	return series, nil
}

// KPI is the pair of headline totals for the selected period.
type KPI struct {
	TotalBudget decimal.Decimal
	TotalActual decimal.Decimal
}

// KPIs computes the headline totals. TotalActual sums the KPI-filtered
// records; TotalBudget is the selected month's Geral budget, or the sum of
// all twelve months when no month is selected.
func (e *Engine) KPIs(f Filter) (KPI, error) {
	records, err := e.kpiRecords(f)
	if err != nil {
		return KPI{}, err
	}

	totalActual := decimal.Zero
	for _, r := range records {
		totalActual = totalActual.Add(money.Parse(r.Val))
	}

	months, err := e.budgets.Load()
	if err != nil {
		return KPI{}, err
	}

	totalBudget := decimal.Zero
	if f.MonthIndex >= 0 && f.MonthIndex < 12 {
		fields := months[expense.MonthKeys[f.MonthIndex]]
		totalBudget = decimal.NewFromFloat(fields[budget.BudgetKey(expense.CategoryGeneral)])
	} else {
		for _, monthKey := range expense.MonthKeys {
			totalBudget = totalBudget.Add(decimal.NewFromFloat(months[monthKey][budget.BudgetKey(expense.CategoryGeneral)]))
		}
	}

	return KPI{TotalBudget: totalBudget, TotalActual: totalActual}, nil
}

// RankEntry is one row of the top-cost ranking.
type RankEntry struct {
	Category string
	Total    decimal.Decimal
}

// Ranking groups KPI-filtered records by uppercased category, sums their
// amounts and returns the top five. Ties keep input order; the tie-break is
// implementation-defined and intentionally left stable rather than
// specified further.
func (e *Engine) Ranking(f Filter) ([]RankEntry, error) {
	records, err := e.kpiRecords(f)
	if err != nil {
		return nil, err
	}

	entries := groupByCategory(records)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.GreaterThan(entries[j].Total)
	})

	if len(entries) > 5 {
		entries = entries[:5]
	}
	return entries, nil
}

// trendRecords applies the year + collaborator filter. Records whose date
// does not split into three parts are excluded.
func (e *Engine) trendRecords(year, collaborator string) ([]expense.Record, error) {
	records, err := e.records.All()
	if err != nil {
		return nil, err
	}

	filtered := make([]expense.Record, 0, len(records))
	for _, r := range records {
		if r.Year() == "" {
			continue
		}
		if year != "" && r.Year() != year {
			continue
		}
		if collaborator != "" && r.Name != collaborator {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// kpiRecords narrows the trend filter to the selected month, if any.
func (e *Engine) kpiRecords(f Filter) ([]expense.Record, error) {
	records, err := e.trendRecords(f.Year, f.Collaborator)
	if err != nil {
		return nil, err
	}
	if f.MonthIndex < 0 {
		return records, nil
	}

	filtered := make([]expense.Record, 0, len(records))
	for _, r := range records {
		if idx, ok := r.MonthIndex(); ok && idx == f.MonthIndex {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// groupByCategory sums record amounts per uppercased category, preserving
// first-appearance order.
func groupByCategory(records []expense.Record) []RankEntry {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, r := range records {
		category := strings.ToUpper(strings.TrimSpace(r.Type))
		if category == "" {
			category = RankingCategoryFallback
		}
		if _, ok := totals[category]; !ok {
			order = append(order, category)
		}
		totals[category] = totals[category].Add(money.Parse(r.Val))
	}

	entries := make([]RankEntry, 0, len(order))
	for _, category := range order {
		entries = append(entries, RankEntry{Category: category, Total: totals[category]})
	}
	return entries
}

// categoryBucket maps a raw record category onto one of the tracked
// buckets, mirroring the explicit-signal scan used at ingestion.
func categoryBucket(rawType string) string {
	upper := strings.ToUpper(rawType)
	switch {
	case strings.Contains(upper, "PPRI"):
		return expense.CategoryPPRI
	case strings.Contains(upper, "DIÁRIA"), strings.Contains(upper, "DIARIA"):
		return expense.CategoryDiarias
	default:
		return RankingCategoryFallback
	}
}
