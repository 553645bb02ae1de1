package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// fixedIntType decodes C++ fixed-width integer type names (like uint8_t)
// into the attributes needed for bounds checks.
type fixedIntType struct {
	unsigned bool
	width    int
	maxExpr  string
	minExpr  string // only set for signed types
}

func parseFixedIntType(name string) (fixedIntType, error) {
	t := fixedIntType{}
	rest := name
	if strings.HasPrefix(rest, "u") {
		t.unsigned = true
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, "int") || !strings.HasSuffix(rest, "_t") {
		return t, fmt.Errorf("%w: %q", ErrInvalidIntType, name)
	}
	width, err := strconv.Atoi(rest[3 : len(rest)-2])
	if err != nil || (width != 8 && width != 16 && width != 32 && width != 64) {
		return t, fmt.Errorf("%w: %q", ErrInvalidIntType, name)
	}
	t.width = width
	if t.unsigned {
		t.maxExpr = fmt.Sprintf("UINT%d_MAX", width)
	} else {
		t.maxExpr = fmt.Sprintf("INT%d_MAX", width)
		t.minExpr = fmt.Sprintf("INT%d_MIN", width)
	}
	return t, nil
}

// boundsCheck renders the out-of-range condition for a value expression of
// the wider wire type checked against this (narrower) host type.
func (t fixedIntType) boundsCheck(expr string) string {
	if t.unsigned {
		return fmt.Sprintf("%s > %s", expr, t.maxExpr)
	}
	return fmt.Sprintf("%s > %s || %s < %s", expr, t.maxExpr, expr, t.minExpr)
}
