package model

import "errors"

var (
	// ErrNotFound is returned when a finding hash does not correspond to any known finding.
	ErrNotFound = errors.New("finding not found")

	// ErrInvalidStatus is returned for a review status outside the recognized enumeration.
	ErrInvalidStatus = errors.New("invalid review status")

	// ErrConcurrentModification is returned when a change could not be applied
	// because of contention on the same finding. The caller may retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrStorage is returned when the underlying registry or ledger is unavailable.
	ErrStorage = errors.New("storage unavailable")

	// ErrInvalidReport is returned when an analysis report cannot be imported.
	ErrInvalidReport = errors.New("invalid analysis report")
)
