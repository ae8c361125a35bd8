package domain

import "errors"

var (
	// ErrSelfLoop is returned when a data flow would connect an element to itself.
	ErrSelfLoop = errors.New("data flow source and target must differ")

	// ErrNotFound is returned when a referenced element, flow, boundary or node does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoModel is returned when an operation needs an open model and none is loaded.
	ErrNoModel = errors.New("no model open")

	// ErrLayoutNotFound is returned by layout stores when no layout was saved for a key.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrInvalidKind is returned for an unknown element kind.
	ErrInvalidKind = errors.New("invalid element kind")
)
