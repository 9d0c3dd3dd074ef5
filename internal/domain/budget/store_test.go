package budget

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/kvstore"
)

func newTestStore() *Store {
	return NewStore(kvstore.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetMissingIsZero(t *testing.T) {
	store := newTestStore()

	entry, err := store.Get("Jan", expense.CategoryGeneral)
	require.NoError(t, err)
	assert.Zero(t, entry.Budget)
	assert.Zero(t, entry.ManualActual)
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Save(map[string]map[string]float64{
		"Jan": {
			BudgetKey(expense.CategoryGeneral): 10000,
			BudgetKey(expense.CategoryPPRI):    3000,
			ActualKey(expense.CategoryPPRI):    500,
		},
	}))

	geral, err := store.Get("Jan", expense.CategoryGeneral)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, geral.Budget)

	ppri, err := store.Get("Jan", expense.CategoryPPRI)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, ppri.Budget)
	assert.Equal(t, 500.0, ppri.ManualActual)
}

func TestSaveMergePreservesOtherMonths(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Save(map[string]map[string]float64{
		"Fev": {BudgetKey(expense.CategoryGeneral): 8000},
		"Dez": {BudgetKey(expense.CategoryGeneral): 9000},
	}))

	// Editing Jan must not alter Fev..Dez.
	require.NoError(t, store.Save(map[string]map[string]float64{
		"Jan": {BudgetKey(expense.CategoryGeneral): 10000},
	}))

	fev, err := store.Get("Fev", expense.CategoryGeneral)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, fev.Budget)

	dez, err := store.Get("Dez", expense.CategoryGeneral)
	require.NoError(t, err)
	assert.Equal(t, 9000.0, dez.Budget)
}

func TestSaveMergePreservesOtherFields(t *testing.T) {
	store := newTestStore()

	require.NoError(t, store.Save(map[string]map[string]float64{
		"Mar": {
			BudgetKey(expense.CategoryGeneral): 5000,
			BudgetKey(expense.CategoryPPRI):    1000,
		},
	}))

	require.NoError(t, store.Save(map[string]map[string]float64{
		"Mar": {BudgetKey(expense.CategoryPPRI): 1500},
	}))

	geral, err := store.Get("Mar", expense.CategoryGeneral)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, geral.Budget, "untouched field must survive the merge")

	ppri, err := store.Get("Mar", expense.CategoryPPRI)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, ppri.Budget)
}

func TestSaveRejectsUnknownMonth(t *testing.T) {
	store := newTestStore()

	err := store.Save(map[string]map[string]float64{
		"January": {BudgetKey(expense.CategoryGeneral): 100},
	})
	assert.ErrorContains(t, err, "unknown month key")
}
