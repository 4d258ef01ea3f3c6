package store

import "errors"

var (
	// ErrNotFound is returned when no record exists for the requested theme ID
	ErrNotFound = errors.New("enriched record not found")

	// ErrDuplicateTheme is returned when a create collides with the theme_id
	// uniqueness constraint. Under find-or-create usage this indicates a bug,
	// not a runtime condition to mask.
	ErrDuplicateTheme = errors.New("enriched record already exists for theme_id")
)
