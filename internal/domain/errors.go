// Package domain holds the error kinds shared by the ledger, trading and HTTP layers.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger and trading layers.
// Callers match them with errors.Is.
var (
	// ErrAccountNotFound - referenced account id has no row
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds - buy attempted with balance < total cost
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPositionNotFound - sell attempted on a ticker the account does not hold
	ErrPositionNotFound = errors.New("position not found")
	// ErrInsufficientQuantity - sell quantity exceeds held quantity
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrInvalidTrade - trade arguments violate preconditions (price, quantity, ticker, date)
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrStorage - the transactional store failed (unreachable, commit or rollback failure)
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a driver error with the operation that produced it.
// It matches both ErrStorage and the underlying error.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a storage failure of op. A nil err stays nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage as a match so callers need not know the concrete type.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsClientError reports whether err is caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTrade) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrPositionNotFound) ||
		errors.Is(err, ErrInsufficientQuantity)
}
