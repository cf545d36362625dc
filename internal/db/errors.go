package db

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable means no usable connection could be established.
// Nothing can be served without the store, so callers treat it as fatal.
var ErrStoreUnavailable = errors.New("store unavailable")

// StorageError reports a failed store operation. Reads that fail are
// degraded by callers to a miss; failed writes are surfaced.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
