package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// NanopbPrefix marks options that belong to the nanopb option sidecar
// instead of the proto source text.
const NanopbPrefix = "(nanopb)."

// Option is a named option with an int, bool or string value. Options whose
// name carries the nanopb prefix are emitted only into the option sidecar;
// all other options are emitted inline in the proto text.
type Option struct {
	name  string
	value any
}

// NewOption creates an option after validating the name. The value must be
// an int64, bool or string.
func NewOption(name string, value any) (*Option, error) {
	if !IsValidOptionName(name) {
		return nil, fmt.Errorf("%w: option %q", ErrInvalidIdentifier, name)
	}
	switch value.(type) {
	case int64, bool, string:
	default:
		return nil, fmt.Errorf("%w: option %q has %T value", ErrInvalidOptionValue, name, value)
	}
	return &Option{name: name, value: value}, nil
}

// Name returns the option name, including any extension parentheses.
func (o *Option) Name() string { return o.name }

// SetUint32 overwrites the option value with an unsigned 32-bit integer.
// Used by the fingerprint pass, which rewrites two options in place.
func (o *Option) SetUint32(v uint32) { o.value = int64(v) }

// ValueString formats the option value as proto source text.
func (o *Option) ValueString() string {
	switch v := o.value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	panic("proto: unsupported option value")
}

// IsNanopb reports whether this option belongs to the nanopb sidecar.
func (o *Option) IsNanopb() bool { return strings.HasPrefix(o.name, NanopbPrefix) }

// nanopbDecl renders the sidecar form, e.g. "max_size:32".
func (o *Option) nanopbDecl() string {
	return o.name[len(NanopbPrefix):] + ":" + o.ValueString()
}

// compactDecl renders the inline field-option form, e.g. "deprecated = true".
func (o *Option) compactDecl() string {
	return o.name + " = " + o.ValueString()
}

func (o *Option) writeDecl(b *strings.Builder, indent int) {
	writeIndent(b, indent)
	b.WriteString("option ")
	b.WriteString(o.name)
	b.WriteString(" = ")
	b.WriteString(o.ValueString())
	b.WriteString(";\n")
}

// nanopbOptions filters an option list down to sidecar options and renders
// them space-joined, or "" when none apply.
func nanopbOptions(opts []*Option) string {
	var parts []string
	for _, o := range opts {
		if o.IsNanopb() {
			parts = append(parts, o.nanopbDecl())
		}
	}
	return strings.Join(parts, " ")
}

// inlineOptions filters an option list down to options emitted in the proto
// text itself.
func inlineOptions(opts []*Option) []*Option {
	var out []*Option
	for _, o := range opts {
		if !o.IsNanopb() {
			out = append(out, o)
		}
	}
	return out
}
