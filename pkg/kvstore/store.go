// Package kvstore provides the device-local persistence layer: named JSON
// blobs with get/set/remove semantics. Every application state key (expense
// records, budgets, user profile, permission matrix) is one blob; a missing
// key means default/empty state, never an error.
package kvstore

import (
	"errors"
	"fmt"
)

// Store is a namespaced key-value store for JSON-serializable state blobs.
type Store interface {
	// Get unmarshals the blob stored under key into dest. It reports whether
	// the key was present; an absent key leaves dest untouched.
	Get(key string, dest any) (bool, error)

	// Set serializes value and writes it under key in a single atomic write.
	Set(key string, value any) error

	// Remove deletes the blob under key. Removing an absent key is a no-op.
	Remove(key string) error
}

// QuotaError indicates a persisted write failed because the device is out of
// storage space. Callers surface it as a user-facing message instead of
// crashing.
type QuotaError struct {
	Key string
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded writing %q: %v", e.Key, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// IsQuotaError reports whether err is a storage quota failure.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
