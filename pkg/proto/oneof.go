package proto

import (
	"fmt"
	"strings"
)

// Oneof is a discriminated field group: exactly one member field is active
// on the wire at a time. A oneof does not introduce a naming scope for
// nanopb option paths.
type Oneof struct {
	name   string
	parent *Message
	fields []*Field
}

// TypeName returns the oneof name.
func (o *Oneof) TypeName() string { return o.name }

// TypeParent returns the owning message.
func (o *Oneof) TypeParent() Type { return o.parent }

// Path returns the owning message's path plus the oneof name.
func (o *Oneof) Path() []string { return append(o.parent.Path(), o.name) }

// Fields returns the member fields in declaration order.
func (o *Oneof) Fields() []*Field { return o.fields }

// AddField appends a member field, rejecting duplicate names.
func (o *Oneof) AddField(f *Field) error {
	for _, existing := range o.fields {
		if existing.Name() == f.Name() {
			return fmt.Errorf("%w: field %q in oneof %q", ErrDuplicateDeclaration, f.Name(), o.name)
		}
	}
	o.fields = append(o.fields, f)
	return nil
}

func (o *Oneof) writeNanopbOptions(b *strings.Builder, scope []string) {
	// oneof contributes no path segment, fields sit in the parent scope
	for _, f := range o.fields {
		f.writeNanopbOptions(b, scope)
	}
}

func (o *Oneof) writeDecl(b *strings.Builder, indent int) error {
	writeIndent(b, indent)
	b.WriteString("oneof ")
	b.WriteString(o.name)
	b.WriteString(" {\n")
	for _, f := range o.fields {
		f.writeDecl(b, o.parent, indent+indentWidth)
	}
	writeIndent(b, indent)
	b.WriteString("}\n")
	return nil
}
