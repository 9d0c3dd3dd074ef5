package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financecore/finance-core/internal/domain/budget"
	"github.com/financecore/finance-core/internal/domain/expense"
)

func deviationEngine(t *testing.T, actual string) *Engine {
	t.Helper()
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "Maria Santos", Val: actual, Type: "PPRI"},
	}
	return newTestEngine(t, records, map[string]map[string]float64{
		"Jan": {
			budget.BudgetKey(expense.CategoryGeneral): 1000,
			budget.BudgetKey(expense.CategoryPPRI):    1000,
		},
	})
}

func TestDeviationStatusThresholds(t *testing.T) {
	tests := []struct {
		name   string
		actual string
		status StatusLevel
	}{
		{"under budget", "R$ 900,00", StatusOnTarget},
		{"exactly on budget", "R$ 1.000,00", StatusOnTarget},
		{"five percent over", "R$ 1.050,00", StatusYellow},
		{"twenty percent over", "R$ 1.200,00", StatusCritical},
		{"exactly ten percent over", "R$ 1.100,00", StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := deviationEngine(t, tt.actual)

			report, err := engine.DeviationReport("2025", 0)
			require.NoError(t, err)
			assert.Equal(t, tt.status, report.Status)
		})
	}
}

func TestDeviationReportGapMath(t *testing.T) {
	engine := deviationEngine(t, "R$ 1.050,00")

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	assert.Equal(t, "Jan", report.MonthKey)
	assert.True(t, report.TotalBudget.Equal(amount(t, "1000")))
	assert.True(t, report.TotalActual.Equal(amount(t, "1050")))
	assert.True(t, report.TotalGap.Equal(amount(t, "50")))
	assert.InDelta(t, 0.05, report.TotalGapPct, 1e-9)
}

func TestDeviationZeroBudgetHasZeroPct(t *testing.T) {
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "Maria Santos", Val: "R$ 500,00", Type: "PPRI"},
	}
	engine := newTestEngine(t, records, nil)

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)
	assert.Zero(t, report.TotalGapPct)
	assert.Equal(t, StatusOnTarget, report.Status)
}

func TestDeviationOutrosBudgetNeverNegative(t *testing.T) {
	engine := newTestEngine(t, nil, map[string]map[string]float64{
		"Jan": {
			budget.BudgetKey(expense.CategoryGeneral): 1000,
			budget.BudgetKey(expense.CategoryPPRI):    800,
			budget.BudgetKey(expense.CategoryDiarias): 500,
		},
	})

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	var outros Deviation
	for _, d := range report.Deviations {
		if d.Name == DeviationOutros {
			outros = d
		}
	}
	assert.True(t, outros.Budget.IsZero(), "remainder floors at zero, got %s", outros.Budget)
}

func TestDeviationCauses(t *testing.T) {
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "A", Val: "R$ 1.500,00", Type: "PPRI"},
		{ID: "2", Date: "10/01/2025", Name: "A", Val: "R$ 400,00", Type: "Diárias"},
	}
	engine := newTestEngine(t, records, map[string]map[string]float64{
		"Jan": {
			budget.BudgetKey(expense.CategoryGeneral): 2000,
			budget.BudgetKey(expense.CategoryPPRI):    1000,
			budget.BudgetKey(expense.CategoryDiarias): 500,
		},
	})

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	byName := make(map[string]Deviation, len(report.Deviations))
	for _, d := range report.Deviations {
		byName[d.Name] = d
	}

	assert.Equal(t, "Fator Externo / Escopo", byName[DeviationPPRI].Cause.Kind)
	assert.Equal(t, "Eficiência", byName[DeviationDiarias].Cause.Kind, "under budget diagnoses as efficiency")
	assert.Equal(t, "Eficiência", byName[DeviationOutros].Cause.Kind)
}

func TestDeviationActionsOnTarget(t *testing.T) {
	engine := deviationEngine(t, "R$ 900,00")

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	require.Len(t, report.Actions, 3)
	assert.Equal(t, "Manutenção de Controle", report.Actions[0].Title)
	assert.Equal(t, "Análise de Histórico", report.Actions[1].Title)
	assert.Equal(t, "Benchmarking Interno", report.Actions[2].Title)
}

func TestDeviationActionsWorstOffender(t *testing.T) {
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "A", Val: "R$ 900,00", Type: "Diárias"},
	}
	engine := newTestEngine(t, records, map[string]map[string]float64{
		"Jan": {
			budget.BudgetKey(expense.CategoryGeneral): 500,
			budget.BudgetKey(expense.CategoryDiarias): 500,
		},
	})

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	require.Len(t, report.Actions, 3)
	assert.Equal(t, "Revisão de Cronograma", report.Actions[0].Title)
	assert.Equal(t, "Teto de Gastos", report.Actions[1].Title)
	assert.Equal(t, "Congelamento de Gastos Não Essenciais", report.Actions[2].Title)
}

func TestDeviationActionsOutrosOffender(t *testing.T) {
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "A", Val: "R$ 700,00", Type: "Alimentação"},
	}
	engine := newTestEngine(t, records, map[string]map[string]float64{
		"Jan": {budget.BudgetKey(expense.CategoryGeneral): 500},
	})

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	require.Len(t, report.Actions, 2)
	assert.Equal(t, "Classificação de \"Outros\"", report.Actions[0].Title)
	assert.Equal(t, "Congelamento de Gastos Não Essenciais", report.Actions[1].Title)
}

func TestDeviationOffendersSortedByTotal(t *testing.T) {
	records := []expense.Record{
		{ID: "1", Date: "10/01/2025", Name: "A", Val: "R$ 100,00", Type: "Pedágio"},
		{ID: "2", Date: "10/01/2025", Name: "A", Val: "R$ 900,00", Type: "PPRI"},
		{ID: "3", Date: "10/01/2025", Name: "A", Val: "R$ 400,00", Type: "Diárias"},
	}
	engine := newTestEngine(t, records, nil)

	report, err := engine.DeviationReport("2025", 0)
	require.NoError(t, err)

	require.Len(t, report.Offenders, 3)
	assert.Equal(t, "PPRI", report.Offenders[0].Category)
	assert.Equal(t, "DIÁRIAS", report.Offenders[1].Category)
	assert.Equal(t, "PEDÁGIO", report.Offenders[2].Category)
}

func TestDeviationReportRejectsBadMonth(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	_, err := engine.DeviationReport("2025", 12)
	assert.Error(t, err)

	_, err = engine.DeviationReport("2025", -1)
	assert.Error(t, err)
}
