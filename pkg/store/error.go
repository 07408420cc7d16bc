package store

import "errors"

var (
	// ErrNotFound is returned when a document is not present in the store.
	ErrNotFound = errors.New("document not found")

	// ErrFetch is returned when a store read or write fails.
	ErrFetch = errors.New("store operation failed")

	// ErrConnection is returned when the store connection cannot be established.
	ErrConnection = errors.New("store connection failed")
)
