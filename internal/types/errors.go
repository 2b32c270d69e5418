package types

import "errors"

// Error kinds shared across the reconciliation surface. Callers classify
// with errors.Is; lower layers wrap these with %w and context.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for caller mistakes such as a
	// self-merge or a missing required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict is returned when a uniqueness invariant would be
	// violated and cannot be auto-resolved.
	ErrConflict = errors.New("conflict")

	// ErrExternalService is returned when the extraction call failed.
	ErrExternalService = errors.New("external service failure")

	// ErrStorage is returned when object storage is unreachable.
	ErrStorage = errors.New("storage failure")

	// ErrTransaction is returned when the store rejected an atomic merge.
	ErrTransaction = errors.New("transaction failure")
)
