package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// EnumValue is a single named enum entry.
type EnumValue struct {
	Name  string
	Value int64
}

// Enum is an enum declaration. Values keep insertion order, except that the
// zero-valued entry is always serialized first as proto3 requires.
type Enum struct {
	name   string
	parent *Message
	values []EnumValue
}

// TypeName returns the enum name.
func (e *Enum) TypeName() string { return e.name }

// TypeParent returns the owning message.
func (e *Enum) TypeParent() Type { return e.parent }

// Path returns the owning message's path plus the enum name.
func (e *Enum) Path() []string { return append(e.parent.Path(), e.name) }

// Values returns the entries in insertion order.
func (e *Enum) Values() []EnumValue { return e.values }

// HasValue reports whether v is a declared member of the enum.
func (e *Enum) HasValue(v int64) bool {
	for _, entry := range e.values {
		if entry.Value == v {
			return true
		}
	}
	return false
}

// AddValue appends an entry, rejecting duplicate names and duplicate values.
func (e *Enum) AddValue(name string, value int64) error {
	if !IsValidIdentifier(name) {
		return fmt.Errorf("%w: enum value %q", ErrInvalidIdentifier, name)
	}
	for _, existing := range e.values {
		if existing.Name == name {
			return fmt.Errorf("%w: value %q in enum %q", ErrDuplicateDeclaration, name, e.name)
		}
		if existing.Value == value {
			return fmt.Errorf("%w: value %d in enum %q", ErrDuplicateDeclaration, value, e.name)
		}
	}
	e.values = append(e.values, EnumValue{Name: name, Value: value})
	return nil
}

func (e *Enum) writeNanopbOptions(b *strings.Builder, scope []string) {}

func (e *Enum) writeDecl(b *strings.Builder, indent int) error {
	var zero *EnumValue
	for i := range e.values {
		if e.values[i].Value == 0 {
			zero = &e.values[i]
			break
		}
	}
	if zero == nil {
		return fmt.Errorf("%w: enum %q", ErrMissingZeroValue, e.name)
	}

	writeIndent(b, indent)
	b.WriteString("enum ")
	b.WriteString(e.name)
	b.WriteString(" {\n")
	writeValue(b, *zero, indent+indentWidth)
	for _, entry := range e.values {
		if entry.Name == zero.Name {
			continue
		}
		writeValue(b, entry, indent+indentWidth)
	}
	writeIndent(b, indent)
	b.WriteString("}\n")
	return nil
}

func writeValue(b *strings.Builder, v EnumValue, indent int) {
	writeIndent(b, indent)
	b.WriteString(v.Name)
	b.WriteString(" = ")
	b.WriteString(strconv.FormatInt(v.Value, 10))
	b.WriteString(";\n")
}
