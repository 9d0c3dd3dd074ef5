// Package budget persists the manually configured monthly targets and
// actual overrides, independent of imported records. Entries are keyed by
// the twelve fixed month abbreviations and the tracked categories.
package budget

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/kvstore"
)

// StorageKey is the persisted blob holding all budget entries.
const StorageKey = "FINANCE_CORE_BUDGETS"

// Field keys inside a month's entry map. A category's target is stored
// under "<category>_Budget"; the manual actual override of non-Geral
// categories under "<category>_Actual".
func BudgetKey(category string) string { return category + "_Budget" }
func ActualKey(category string) string { return category + "_Actual" }

// Entry is the stored pair for one (month, category) key. ManualActual is
// only meaningful for non-Geral categories; it is added on top of actuals
// derived from imported records.
type Entry struct {
	Budget       float64
	ManualActual float64
}

// Store reads and writes budget entries with read-merge-write semantics:
// a save only touches the months and fields it names.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a budget store over the given persistence layer.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Get returns the entry for one month and category. Missing months or
// fields read as zero.
func (s *Store) Get(month, category string) (Entry, error) {
	months, err := s.Load()
	if err != nil {
		return Entry{}, err
	}

	fields := months[month]
	return Entry{
		Budget:       fields[BudgetKey(category)],
		ManualActual: fields[ActualKey(category)],
	}, nil
}

// Load returns the full persisted month -> field -> value mapping. An
// absent blob is an empty mapping.
func (s *Store) Load() (map[string]map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save merges the edits into the persisted entries. Months and fields not
// named in edits keep their previous values; the write is a single
// serialize-and-persist call.
func (s *Store) Save(edits map[string]map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for month := range edits {
		if !validMonth(month) {
			return fmt.Errorf("unknown month key %q", month)
		}
	}

	months, err := s.load()
	if err != nil {
		return err
	}

	for month, fields := range edits {
		merged := months[month]
		if merged == nil {
			merged = make(map[string]float64, len(fields))
		}
		for key, value := range fields {
			merged[key] = value
		}
		months[month] = merged
	}

	if err := s.kv.Set(StorageKey, months); err != nil {
		return fmt.Errorf("failed to persist budgets: %w", err)
	}
	s.logger.Info("budgets saved", "months", len(edits))
	return nil
}

func (s *Store) load() (map[string]map[string]float64, error) {
	months := make(map[string]map[string]float64)
	if _, err := s.kv.Get(StorageKey, &months); err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}
	return months, nil
}

func validMonth(month string) bool {
	for _, key := range expense.MonthKeys {
		if key == month {
			return true
		}
	}
	return false
}
