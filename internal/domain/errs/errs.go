// Package errs defines the error taxonomy shared by services, repositories
// and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced deal, lot, shipment or broker
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey signals a broker-id collision on broker creation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrCapacityExceeded signals a shipment that would drive a lot's
	// remaining bora count negative.
	ErrCapacityExceeded = errors.New("lot capacity exceeded")
)

// ValidationError rejects malformed or out-of-range input before any
// mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a failure of the backing store. The original error is
// preserved for logs; callers branch on the taxonomy sentinels only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError unless it is already part of the
// taxonomy (sentinels pass through untouched so callers can match them).
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// BatchItemResult is the per-item outcome of a batch operation. Batch calls
// never roll back siblings; the caller retries failed items individually.
type BatchItemResult struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// OK reports whether the item succeeded.
func (r BatchItemResult) OK() bool { return r.Err == nil }

// PartialBatchFailure aggregates a batch where at least one item failed.
type PartialBatchFailure struct {
	Results []BatchItemResult
}

func (e *PartialBatchFailure) Error() string {
	failed := 0
	for _, r := range e.Results {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("batch partially failed: %d/%d items", failed, len(e.Results))
}
