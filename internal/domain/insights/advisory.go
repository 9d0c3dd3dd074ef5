package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/internal/domain/budget"
	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/money"
)

// StatusLevel is the executive-summary verdict for a period.
type StatusLevel string

const (
	StatusOnTarget StatusLevel = "DENTRO DA META"
	StatusYellow   StatusLevel = "ALERTA AMARELO"
	StatusCritical StatusLevel = "CRÍTICO"
)

// Deviation category display names. Outros covers everything the two
// tracked categories do not; its budget is the Geral remainder.
const (
	DeviationPPRI    = "PPRI"
	DeviationDiarias = "Diárias"
	DeviationOutros  = "Outros (Geral)"
)

// Deviation is the gap analysis of one category for the selected period.
// Gap is actual minus budget, so positive means overspend. GapPct is zero
// when the budget is zero.
type Deviation struct {
	Name   string
	Budget decimal.Decimal
	Actual decimal.Decimal
	Gap    decimal.Decimal
	GapPct float64
	Cause  Cause
}

// Cause is a canned root-cause diagnosis.
type Cause struct {
	Kind        string
	Description string
}

// Action is a canned recommended measure.
type Action struct {
	Title       string
	Description string
}

// Offender is one raw category in the granular breakdown.
type Offender struct {
	Category string
	Total    decimal.Decimal
}

// DeviationReport is the full micro-analysis for one month.
type DeviationReport struct {
	Year        string
	MonthKey    string
	MonthName   string
	TotalBudget decimal.Decimal
	TotalActual decimal.Decimal
	TotalGap    decimal.Decimal
	TotalGapPct float64
	Status      StatusLevel
	Deviations  []Deviation
	Actions     []Action
	Offenders   []Offender
}

// Root-cause lookup. The ordered table maps a category-name substring to
// its diagnosis; entries earlier in the table win. Categories that spent
// below budget always diagnose as efficiency, and overruns that match no
// substring fall through to the severity pair.
var causeEfficiency = Cause{
	Kind:        "Eficiência",
	Description: "Gastos controlados abaixo do orçado.",
}

var causeTable = []struct {
	Substring string
	Cause     Cause
}{
	{"PPRI", Cause{
		Kind:        "Fator Externo / Escopo",
		Description: "Provável aumento no preço do combustível ou rodagem acima do planejado (rotas não otimizadas).",
	}},
	{"DIÁRIA", Cause{
		Kind:        "Erro de Planejamento",
		Description: "Número de dias em campo superior ao orçado ou equipe maior que a prevista.",
	}},
	{"DIARIA", Cause{
		Kind:        "Erro de Planejamento",
		Description: "Número de dias em campo superior ao orçado ou equipe maior que a prevista.",
	}},
	{"OUTROS", Cause{
		Kind:        "Escopo",
		Description: "Despesas não categorizadas ou emergenciais consumindo a reserva técnica.",
	}},
}

var (
	causeSevereOverrun = Cause{
		Kind:        "Erro de Planejamento",
		Description: "Orçamento severamente subestimado para a realidade da operação.",
	}
	causeGeneralOverrun = Cause{
		Kind:        "Ineficiência Operacional",
		Description: "Pequenos desvios acumulados ou compras de última hora com preço premium.",
	}
)

// Action plans. onTargetActions apply whenever the period closed at or
// under budget; otherwise the worst offender picks its plan from
// offenderActions (falling back to the Outros plan) and the freeze action
// is always appended.
var onTargetActions = []Action{
	{Title: "Manutenção de Controle", Description: "Manter a política atual de aprovações. Identificar áreas com \"savings\" para possível realocação futura."},
	{Title: "Análise de Histórico", Description: "Verificar se o orçamento não está superestimado (folga excessiva) para ajustar metas futuras."},
	{Title: "Benchmarking Interno", Description: "Replicar as boas práticas deste mês para outros períodos."},
}

var offenderActions = map[string][]Action{
	DeviationPPRI: {
		{Title: "Auditoria de Rotas", Description: "Solicitar relatório detalhado de KM rodado vs planejado. Validar justificativas para desvios de rota."},
		{Title: "Política de Abastecimento", Description: "Verificar média de consumo dos veículos. Há indícios de ineficiência ou veículos desregulados?"},
	},
	DeviationDiarias: {
		{Title: "Revisão de Cronograma", Description: "Cruzar dias pagos com o cronograma de entrega. Houve atraso na obra que gerou estadias extras?"},
		{Title: "Teto de Gastos", Description: "Reforçar o limite diário por colaborador e exigir pré-aprovação para extensões."},
	},
}

var fallbackOffenderActions = []Action{
	{Title: "Classificação de \"Outros\"", Description: "O item \"Outros\" está estourando. Realizar \"Deep Dive\" nas notas fiscais para categorizar corretamente e criar orçamentos específicos."},
}

var freezeAction = Action{
	Title:       "Congelamento de Gastos Não Essenciais",
	Description: "Suspender aprovações de novos custos não críticos até a normalização do fluxo de caixa do projeto.",
}

// DeviationReport computes the micro-analysis for one month of one year.
// monthIndex is 0..11.
func (e *Engine) DeviationReport(year string, monthIndex int) (*DeviationReport, error) {
	if monthIndex < 0 || monthIndex > 11 {
		return nil, fmt.Errorf("month index %d out of range", monthIndex)
	}
	monthKey := expense.MonthKeys[monthIndex]

	months, err := e.budgets.Load()
	if err != nil {
		return nil, err
	}
	fields := months[monthKey]

	totalBudget := decimal.NewFromFloat(fields[budget.BudgetKey(expense.CategoryGeneral)])
	ppriBudget := decimal.NewFromFloat(fields[budget.BudgetKey(expense.CategoryPPRI)])
	diariasBudget := decimal.NewFromFloat(fields[budget.BudgetKey(expense.CategoryDiarias)])

	outrosBudget := totalBudget.Sub(ppriBudget).Sub(diariasBudget)
	if outrosBudget.IsNegative() {
		outrosBudget = decimal.Zero
	}

	records, err := e.kpiRecords(Filter{Year: year, MonthIndex: monthIndex})
	if err != nil {
		return nil, err
	}

	totalActual := decimal.Zero
	ppriActual := decimal.Zero
	diariasActual := decimal.Zero
	outrosActual := decimal.Zero

	for _, r := range records {
		val := money.Parse(r.Val)
		totalActual = totalActual.Add(val)
		switch categoryBucket(r.Type) {
		case expense.CategoryPPRI:
			ppriActual = ppriActual.Add(val)
		case expense.CategoryDiarias:
			diariasActual = diariasActual.Add(val)
		default:
			outrosActual = outrosActual.Add(val)
		}
	}

	deviations := []Deviation{
		newDeviation(DeviationPPRI, ppriBudget, ppriActual),
		newDeviation(DeviationDiarias, diariasBudget, diariasActual),
		newDeviation(DeviationOutros, outrosBudget, outrosActual),
	}
	sort.SliceStable(deviations, func(i, j int) bool {
		return deviations[i].Gap.GreaterThan(deviations[j].Gap)
	})

	totalGap := totalActual.Sub(totalBudget)
	totalGapPct := 0.0
	if totalBudget.IsPositive() {
		totalGapPct, _ = totalGap.Div(totalBudget).Float64()
	}

	report := &DeviationReport{
		Year:        year,
		MonthKey:    monthKey,
		MonthName:   expense.MonthNames[monthIndex],
		TotalBudget: totalBudget,
		TotalActual: totalActual,
		TotalGap:    totalGap,
		TotalGapPct: totalGapPct,
		Status:      statusFor(totalGapPct),
		Deviations:  deviations,
		Actions:     actionsFor(totalGap, deviations),
		Offenders:   offendersFor(records),
	}

	e.logger.Debug("deviation report computed",
		"year", year,
		"month", monthKey,
		"status", report.Status,
		"gap", report.TotalGap,
	)

	return report, nil
}

func newDeviation(name string, budgetAmount, actual decimal.Decimal) Deviation {
	gap := actual.Sub(budgetAmount)
	pct := 0.0
	if budgetAmount.IsPositive() {
		pct, _ = gap.Div(budgetAmount).Float64()
	}
	return Deviation{
		Name:   name,
		Budget: budgetAmount,
		Actual: actual,
		Gap:    gap,
		GapPct: pct,
		Cause:  causeFor(name, gap, pct),
	}
}

// statusFor applies the executive thresholds: at or under budget is on
// target, under ten percent over is a yellow alert, anything beyond is
// critical.
func statusFor(gapPct float64) StatusLevel {
	switch {
	case gapPct <= 0:
		return StatusOnTarget
	case gapPct < 0.10:
		return StatusYellow
	default:
		return StatusCritical
	}
}

func causeFor(name string, gap decimal.Decimal, pct float64) Cause {
	if !gap.IsPositive() {
		return causeEfficiency
	}

	upper := strings.ToUpper(name)
	for _, entry := range causeTable {
		if strings.Contains(upper, entry.Substring) {
			return entry.Cause
		}
	}

	if pct > 0.5 {
		return causeSevereOverrun
	}
	return causeGeneralOverrun
}

func actionsFor(totalGap decimal.Decimal, deviations []Deviation) []Action {
	if !totalGap.IsPositive() {
		return onTargetActions
	}

	worst := deviations[0]
	for _, d := range deviations[1:] {
		if d.Gap.GreaterThan(worst.Gap) {
			worst = d
		}
	}

	actions, ok := offenderActions[worst.Name]
	if !ok {
		actions = fallbackOffenderActions
	}

	plan := make([]Action, 0, len(actions)+1)
	plan = append(plan, actions...)
	plan = append(plan, freezeAction)
	return plan
}

func offendersFor(records []expense.Record) []Offender {
	entries := groupByCategory(records)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.GreaterThan(entries[j].Total)
	})

	offenders := make([]Offender, 0, len(entries))
	for _, entry := range entries {
		offenders = append(offenders, Offender{Category: entry.Category, Total: entry.Total})
	}
	return offenders
}
