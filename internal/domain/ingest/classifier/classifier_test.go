package classifier

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/financecore/finance-core/internal/domain/expense"
)

func TestClassifyExplicitColumnSignal(t *testing.T) {
	c := New()

	tests := []struct {
		name         string
		purpose      string
		collaborator string
		want         string
	}{
		{"explicit ppri", "Reembolso PPRI", "Carlos", expense.CategoryPPRI},
		{"explicit diaria accented", "DIÁRIA DE CAMPO", "Carlos", expense.CategoryDiarias},
		{"explicit lowercase accented", "Diária equipe", "Carlos", expense.CategoryDiarias},
		{"both signals prefer diarias", "PPRI e Diária", "Carlos", expense.CategoryDiarias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.purpose, tt.collaborator))
		})
	}
}

func TestClassifyHeuristicOverNameAndPurpose(t *testing.T) {
	c := New()

	tests := []struct {
		name         string
		purpose      string
		collaborator string
		want         string
	}{
		{"diaria without accent in purpose", "Diaria de campo", "Carlos", expense.CategoryDiarias},
		{"ppri in collaborator name", "", "PPRI SUPPORT", expense.CategoryPPRI},
		{"diaria in collaborator name", "Custos", "Equipe diaria norte", expense.CategoryDiarias},
		{"ppri beats diaria in heuristic pass", "despesa ppri diaria", "Carlos", expense.CategoryPPRI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.purpose, tt.collaborator))
		})
	}
}

func TestClassifyFallbacks(t *testing.T) {
	c := New()

	// Unrecognized purpose text is kept as-is.
	assert.Equal(t, "Combustível", c.Classify("Combustível", "Carlos"))

	// Nothing at all falls back to the default label.
	assert.Equal(t, expense.CategoryGeneral, c.Classify("", "Carlos"))
	assert.Equal(t, expense.CategoryGeneral, c.Classify("   ", ""))
}

func TestBudgetFlagStrictThreshold(t *testing.T) {
	assert.Equal(t, expense.BudgetExceeded, BudgetFlag(decimal.NewFromInt(2500)))
	assert.Equal(t, expense.BudgetWithin, BudgetFlag(decimal.NewFromInt(2000)))
	assert.Equal(t, expense.BudgetExceeded, BudgetFlag(decimal.NewFromFloat(2000.01)))
	assert.Equal(t, expense.BudgetWithin, BudgetFlag(decimal.NewFromInt(150)))
}

func TestRecordIDKeepsInternalNumber(t *testing.T) {
	var s RandomIDStrategy

	assert.Equal(t, "4711", s.RecordID("4711"))
	assert.Equal(t, "4711", s.RecordID("  4711  "))
}

func TestRecordIDSynthesized(t *testing.T) {
	var s RandomIDStrategy

	id := s.RecordID("")
	assert.True(t, strings.HasPrefix(id, "AUTO-"), "id = %s", id)
	assert.Len(t, id, len("AUTO-")+5)

	for _, r := range strings.TrimPrefix(id, "AUTO-") {
		assert.Contains(t, idAlphabet, string(r))
	}
}
