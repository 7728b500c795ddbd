package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested row does not exist. Absence is
	// a normal state; callers check for it with errors.Is.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a unique key.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when the database rejects a row as invalid.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction cannot begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrEntryNotFound = fmt.Errorf("%w: journal entry", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("%w: user", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// StoreError describes a failed repository operation. Every durability
// failure, including a context timeout, reaches callers as a *StoreError.
type StoreError struct {
	Entity    string // e.g. "journal", "user_progress"
	Operation string // e.g. "upsert", "list_range"
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsNotFoundError reports whether err is any kind of "not found".
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageError reports whether err came from a failed repository call.
func IsStorageError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsTimeout reports whether a storage failure was caused by the deadline
// the caller put on the operation.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
