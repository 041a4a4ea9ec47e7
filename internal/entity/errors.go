package entity

import "errors"

var (
	// ErrNotFound is returned when a resource reference does not resolve in
	// the store. It is the only error the refresh facade surfaces to callers.
	ErrNotFound = errors.New("resource not found")
)
