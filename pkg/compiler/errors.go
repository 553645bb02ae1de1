package compiler

import "errors"

var (
	// ErrSchemaCycle is returned when a message directly or indirectly
	// contains itself
	ErrSchemaCycle = errors.New("cyclic message reference")

	// ErrUnsupportedType is returned for field types that cannot be
	// represented on the wire
	ErrUnsupportedType = errors.New("unsupported field type")

	// ErrEnumWidth is returned when a derived enum has constants too wide
	// for the declared field width
	ErrEnumWidth = errors.New("enum values do not fit field width")

	// ErrNotEnumerable is returned when the constant map routes constants
	// to a field whose type cannot carry an enum
	ErrNotEnumerable = errors.New("field cannot be converted to enum")

	// ErrConstantRange is returned for constants outside the 32 bit range
	// enum values are limited to
	ErrConstantRange = errors.New("constant out of enum value range")

	// ErrUnknownField is returned when the constant map names a field the
	// message does not have
	ErrUnknownField = errors.New("constant map references unknown field")
)
