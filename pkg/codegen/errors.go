package codegen

import "errors"

var (
	// ErrUnreachableCodec is returned when a conversion unit was generated
	// but neither direction is reachable from any bridge registration
	ErrUnreachableCodec = errors.New("conversion generated but never used")

	// ErrSignednessMismatch is returned when a narrowing conversion would
	// mix signed and unsigned integer types
	ErrSignednessMismatch = errors.New("cannot mix signed and unsigned types")

	// ErrInvalidIntType is returned for C++ type names that are not fixed
	// width integers
	ErrInvalidIntType = errors.New("invalid fixed integer type name")

	// ErrParametersNotEnabled is returned when a parameter is added before
	// parameter support was enabled on the handler
	ErrParametersNotEnabled = errors.New("parameter support not enabled")
)
