package proto

import (
	"fmt"
	"strings"
)

// childType is any declaration nested inside a message or the top scope.
type childType interface {
	Type
	writeDecl(b *strings.Builder, indent int) error
	writeNanopbOptions(b *strings.Builder, scope []string)
}

// Message is a message declaration. Nested types, fields and options keep
// insertion order, which drives emission order.
type Message struct {
	name    string
	parent  Type // nil when nested directly in the scope
	scope   *Scope
	types   []childType
	fields  []*Field
	options []*Option
}

// TypeName returns the message name.
func (m *Message) TypeName() string { return m.name }

// TypeParent returns the enclosing message, or nil for scope-level messages.
func (m *Message) TypeParent() Type { return m.parent }

// Path returns the dotted path segments from the scope package down to this
// message.
func (m *Message) Path() []string {
	if m.parent == nil {
		return append(m.scope.packagePath(), m.name)
	}
	return append(m.parent.Path(), m.name)
}

// Fields returns the fields in declaration order.
func (m *Message) Fields() []*Field { return m.fields }

func (m *Message) childNames() []string {
	names := make([]string, len(m.types))
	for i, c := range m.types {
		names[i] = c.TypeName()
	}
	return names
}

func (m *Message) addChild(c childType) error {
	for _, existing := range m.types {
		if existing.TypeName() == c.TypeName() {
			return fmt.Errorf("%w: type %q in message %q", ErrDuplicateDeclaration, c.TypeName(), m.name)
		}
	}
	m.types = append(m.types, c)
	return nil
}

// NewMessage creates a nested message declaration.
func (m *Message) NewMessage(name string) (*Message, error) {
	if !IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: message %q", ErrInvalidIdentifier, name)
	}
	child := &Message{name: name, parent: m, scope: m.scope}
	if err := m.addChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// NewOneof creates a oneof group inside this message.
func (m *Message) NewOneof(name string) (*Oneof, error) {
	if !IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: oneof %q", ErrInvalidIdentifier, name)
	}
	child := &Oneof{name: name, parent: m}
	if err := m.addChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// NewEnum creates an enum declaration inside this message.
func (m *Message) NewEnum(name string) (*Enum, error) {
	if !IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: enum %q", ErrInvalidIdentifier, name)
	}
	child := &Enum{name: name, parent: m}
	if err := m.addChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// AddOption appends a message-level option, rejecting duplicate names.
func (m *Message) AddOption(o *Option) error {
	for _, existing := range m.options {
		if existing.Name() == o.Name() {
			return fmt.Errorf("%w: option %q in message %q", ErrDuplicateDeclaration, o.Name(), m.name)
		}
	}
	m.options = append(m.options, o)
	return nil
}

// AddField appends a field, rejecting duplicate names.
func (m *Message) AddField(f *Field) error {
	for _, existing := range m.fields {
		if existing.Name() == f.Name() {
			return fmt.Errorf("%w: field %q in message %q", ErrDuplicateDeclaration, f.Name(), m.name)
		}
	}
	m.fields = append(m.fields, f)
	return nil
}

func (m *Message) writeNanopbOptions(b *strings.Builder, scope []string) {
	current := append(append([]string{}, scope...), m.name)
	if opts := nanopbOptions(m.options); opts != "" {
		b.WriteString(strings.Join(current, "."))
		b.WriteByte(' ')
		b.WriteString(opts)
		b.WriteByte('\n')
	}
	for _, c := range m.types {
		c.writeNanopbOptions(b, current)
	}
	for _, f := range m.fields {
		f.writeNanopbOptions(b, current)
	}
}

func (m *Message) writeDecl(b *strings.Builder, indent int) error {
	writeIndent(b, indent)
	b.WriteString("message ")
	b.WriteString(m.name)
	b.WriteString(" {\n")

	// Groups are separated by one blank line, emitted only when both the
	// preceding and following groups have content.
	wroteGroup := false
	if inline := inlineOptions(m.options); len(inline) > 0 {
		for _, o := range inline {
			o.writeDecl(b, indent+indentWidth)
		}
		wroteGroup = true
	}
	for i, c := range m.types {
		if wroteGroup && i == 0 {
			b.WriteByte('\n')
		}
		if err := c.writeDecl(b, indent+indentWidth); err != nil {
			return err
		}
	}
	wroteGroup = wroteGroup || len(m.types) > 0
	for i, f := range m.fields {
		if wroteGroup && i == 0 {
			b.WriteByte('\n')
		}
		f.writeDecl(b, m, indent+indentWidth)
	}

	writeIndent(b, indent)
	b.WriteString("}\n")
	return nil
}
