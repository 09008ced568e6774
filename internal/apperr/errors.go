// Package apperr defines the API-level error sentinels the transport
// layers map onto status codes.
package apperr

import "errors"

var (
	// ErrNotFound means the referenced note identity is not in the
	// collection.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the persisted record changed underneath an edit
	// and the retry policy could not resolve it.
	ErrConflict = errors.New("conflict")
)
