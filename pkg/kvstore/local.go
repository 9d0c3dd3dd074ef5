package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LocalStore implements Store on the local filesystem. Each key becomes one
// JSON file under the base directory; writes go through a temp file and a
// rename so a crash mid-write never leaves a torn blob behind.
type LocalStore struct {
	basePath string
	mu       sync.Mutex
}

// NewLocalStore creates a filesystem-backed store rooted at basePath.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Get reads and unmarshals the blob stored under key.
func (s *LocalStore) Get(key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// Set serializes value and atomically replaces the blob under key.
func (s *LocalStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	target := s.pathFor(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		if isQuota(err) {
			return &QuotaError{Key: key, Err: err}
		}
		return fmt.Errorf("failed to write %q: %w", key, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit %q: %w", key, err)
	}
	return nil
}

// Remove deletes the blob under key.
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

func (s *LocalStore) pathFor(key string) string {
	return filepath.Join(s.basePath, sanitizeKey(key)+".json")
}

func isQuota(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT)
}

// sanitizeKey strips path separators so a key can never escape the base
// directory.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
	)
	return replacer.Replace(key)
}
