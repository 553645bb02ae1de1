package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Cardinality is the field label emitted before the type name.
type Cardinality int

const (
	CardinalityNone Cardinality = iota
	CardinalityOptional
	CardinalityRepeated
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityOptional:
		return "optional"
	case CardinalityRepeated:
		return "repeated"
	default:
		return ""
	}
}

// Field is a single field declaration inside a message, oneof or extension.
type Field struct {
	typ     Type
	name    string
	num     int
	card    Cardinality
	options []*Option
}

// NewField creates a field declaration. The wire number must be positive and
// the name a valid identifier.
func NewField(typ Type, name string, num int, card Cardinality, options ...*Option) (*Field, error) {
	if !IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: field %q", ErrInvalidIdentifier, name)
	}
	if num <= 0 {
		return nil, fmt.Errorf("%w: field %q has number %d", ErrInvalidFieldNumber, name, num)
	}
	return &Field{typ: typ, name: name, num: num, card: card, options: options}, nil
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Number returns the wire field number.
func (f *Field) Number() int { return f.num }

// FieldType returns the resolved type reference.
func (f *Field) FieldType() Type { return f.typ }

// Cardinality returns the field label.
func (f *Field) Cardinality() Cardinality { return f.card }

func (f *Field) writeNanopbOptions(b *strings.Builder, scope []string) {
	opts := nanopbOptions(f.options)
	if opts == "" {
		return
	}
	b.WriteString(strings.Join(scope, "."))
	b.WriteByte('.')
	b.WriteString(f.name)
	b.WriteByte(' ')
	b.WriteString(opts)
	b.WriteByte('\n')
}

func (f *Field) writeDecl(b *strings.Builder, scope Type, indent int) {
	writeIndent(b, indent)
	if label := f.card.String(); label != "" {
		b.WriteString(label)
		b.WriteByte(' ')
	}
	b.WriteString(QualifiedName(f.typ, scope))
	b.WriteByte(' ')
	b.WriteString(f.name)
	b.WriteString(" = ")
	b.WriteString(strconv.Itoa(f.num))
	if inline := inlineOptions(f.options); len(inline) > 0 {
		parts := make([]string, len(inline))
		for i, o := range inline {
			parts[i] = o.compactDecl()
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteByte(']')
	}
	b.WriteString(";\n")
}
