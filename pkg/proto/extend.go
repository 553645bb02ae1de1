package proto

import (
	"fmt"
	"strings"
)

// Extend injects fields into an existing message type, used to declare the
// protocol-version extension on google.protobuf.MessageOptions.
type Extend struct {
	extendedName string
	fields       []*Field
}

// AddField appends an injected field, rejecting duplicate names.
func (e *Extend) AddField(f *Field) error {
	for _, existing := range e.fields {
		if existing.Name() == f.Name() {
			return fmt.Errorf("%w: field %q in extend %q", ErrDuplicateDeclaration, f.Name(), e.extendedName)
		}
	}
	e.fields = append(e.fields, f)
	return nil
}

func (e *Extend) writeDecl(b *strings.Builder, indent int) {
	writeIndent(b, indent)
	b.WriteString("extend ")
	b.WriteString(e.extendedName)
	b.WriteString(" {\n")
	for _, f := range e.fields {
		f.writeDecl(b, nil, indent+indentWidth)
	}
	writeIndent(b, indent)
	b.WriteString("}\n")
}
