package domain

import "fmt"

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// InsufficientStockError reports a requested quantity exceeding what a
// product has available. Available carries the amount seen at check time.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested %d, available %d)",
		e.ProductName, e.Requested, e.Available)
}

// ConcurrencyConflictError reports a version-tag mismatch on update. The
// caller should reload fresh data and resubmit.
type ConcurrencyConflictError struct {
	Kind string
	Key  string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %q was modified by another user", e.Kind, e.Key)
}

// DuplicateKeyError reports an insert colliding with an existing key.
type DuplicateKeyError struct {
	Kind string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

// TransportError wraps an adapter or network failure. Retry is caller
// policy; the engine never retries.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnsupportedOperationError reports an operation a given storage backend
// cannot perform.
type UnsupportedOperationError struct {
	Backend string
	Op      string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s backend does not support %s", e.Backend, e.Op)
}
