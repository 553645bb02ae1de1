package proto

import "errors"

var (
	// ErrInvalidIdentifier is returned when a declaration name is not a
	// valid proto identifier or collides with a reserved keyword
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrDuplicateDeclaration is returned when a sibling declaration with
	// the same name (or, for enums, the same value) already exists
	ErrDuplicateDeclaration = errors.New("duplicate declaration")

	// ErrInvalidFieldNumber is returned for non-positive field numbers
	ErrInvalidFieldNumber = errors.New("invalid field number")

	// ErrMissingZeroValue is returned when an enum is serialized without a
	// zero-valued entry
	ErrMissingZeroValue = errors.New("enum has no zero value")

	// ErrInvalidOptionValue is returned for option values outside the
	// supported int/bool/string set
	ErrInvalidOptionValue = errors.New("invalid option value")
)
