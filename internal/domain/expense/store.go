package expense

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/financecore/finance-core/pkg/kvstore"
)

// StorageKey is the persisted blob holding the full record set.
const StorageKey = "FINANCE_CORE_EXPENSES"

// Store is the shared record set. The set is replaced wholesale by imports,
// shrunk by single deletes and emptied by an explicit clear; there is no
// partial edit of a record. Mutations are load-modify-save under a mutex so
// embedding callers stay safe.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a record store over the given persistence layer.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// All returns the current record set. An absent blob is an empty set.
func (s *Store) All() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Replace swaps the entire record set for the given one.
func (s *Store) Replace(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(StorageKey, records); err != nil {
		return fmt.Errorf("failed to persist record set: %w", err)
	}
	s.logger.Info("record set replaced", "records", len(records))
	return nil
}

// Delete removes one record by ID. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}

	if err := s.kv.Set(StorageKey, kept); err != nil {
		return fmt.Errorf("failed to persist record set: %w", err)
	}
	s.logger.Info("record deleted", "id", id, "remaining", len(kept))
	return nil
}

// Clear empties the record set.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(StorageKey); err != nil {
		return fmt.Errorf("failed to clear record set: %w", err)
	}
	s.logger.Info("record set cleared")
	return nil
}

// Collaborators lists distinct non-empty collaborator names, sorted.
func (s *Store) Collaborators() ([]string, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Years lists the distinct four-digit years present in record dates, newest
// first. The first entry is the natural default dashboard selection.
func (s *Store) Years() ([]string, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var years []string
	for _, r := range records {
		y := r.Year()
		if len(y) != 4 || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

func (s *Store) load() ([]Record, error) {
	var records []Record
	if _, err := s.kv.Get(StorageKey, &records); err != nil {
		return nil, fmt.Errorf("failed to load record set: %w", err)
	}
	return records, nil
}
