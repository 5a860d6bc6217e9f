package order

import "errors"

var (
	// ErrInvalidArgument is returned when an operation receives a non-positive amount.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when an operation references an unknown order id.
	ErrNotFound = errors.New("order not found")
)
