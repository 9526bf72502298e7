package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation will throw if the given request-body or params is not valid
	ErrValidation = errors.New("invalid input")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrPermissionDenied will throw if the caller is not allowed to act on the item
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidState will throw if the item is not in a state that allows the action
	ErrInvalidState = errors.New("invalid state")
	// ErrExpired will throw if the item or its listing has lapsed
	ErrExpired = errors.New("expired")
	// ErrConflict will throw if a concurrent writer changed the item first
	ErrConflict = errors.New("conflict")
	// ErrDependencyFailure will throw if an external collaborator failed
	ErrDependencyFailure = errors.New("dependency failure")

	ErrInvalidCurrency = errors.New("invalid currency")
	ErrNotImplemented  = errors.New("not implemented")
)

// StateError reports the status an entity was found in
type StateError struct {
	Entity string
	Id     string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s is %s", e.Entity, e.Id, e.Status)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// BidTooLowError is returned when a bid does not reach the reserve price
type BidTooLowError struct {
	Reserve decimal.Decimal
	// nil when the listing has no active bid
	Highest *decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	if e.Highest == nil {
		return fmt.Sprintf("bid below reserve price %s", e.Reserve)
	}
	return fmt.Sprintf("bid below reserve price %s, highest bid %s", e.Reserve, e.Highest)
}

func (e *BidTooLowError) Unwrap() error {
	return ErrValidation
}
