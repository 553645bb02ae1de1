package proto

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Scope is the root container for one compilation: package identity, child
// types, extension blocks, file imports and file-level options.
type Scope struct {
	pkg        string
	types      []childType
	extensions []*Extend
	imports    []string
	options    []*Option
}

// NewScope creates a scope for the given package name.
func NewScope(pkg string) (*Scope, error) {
	if !IsValidTypeName(pkg) {
		return nil, fmt.Errorf("%w: package %q", ErrInvalidIdentifier, pkg)
	}
	return &Scope{pkg: pkg}, nil
}

// Package returns the scope package name.
func (s *Scope) Package() string { return s.pkg }

func (s *Scope) packagePath() []string { return strings.Split(s.pkg, ".") }

// LookupMessage returns the scope-level message with the given name, or nil.
func (s *Scope) LookupMessage(name string) *Message {
	for _, c := range s.types {
		if m, ok := c.(*Message); ok && m.name == name {
			return m
		}
	}
	return nil
}

// NewMessage creates a message directly under the scope.
func (s *Scope) NewMessage(name string) (*Message, error) {
	if !IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: message %q", ErrInvalidIdentifier, name)
	}
	for _, c := range s.types {
		if c.TypeName() == name {
			return nil, fmt.Errorf("%w: type %q in package %q", ErrDuplicateDeclaration, name, s.pkg)
		}
	}
	m := &Message{name: name, scope: s}
	s.types = append(s.types, m)
	return m, nil
}

// NewExtension creates an extend block targeting the given type name.
func (s *Scope) NewExtension(extendedName string) (*Extend, error) {
	if !IsValidTypeName(extendedName) {
		return nil, fmt.Errorf("%w: extend target %q", ErrInvalidIdentifier, extendedName)
	}
	e := &Extend{extendedName: extendedName}
	s.extensions = append(s.extensions, e)
	return e, nil
}

// AddImport records an import path, ignoring duplicates.
func (s *Scope) AddImport(path string) {
	for _, existing := range s.imports {
		if existing == path {
			return
		}
	}
	s.imports = append(s.imports, path)
}

// AddOption appends a file-level option, rejecting duplicate names.
func (s *Scope) AddOption(o *Option) error {
	for _, existing := range s.options {
		if existing.Name() == o.Name() {
			return fmt.Errorf("%w: option %q in package %q", ErrDuplicateDeclaration, o.Name(), s.pkg)
		}
	}
	s.options = append(s.options, o)
	return nil
}

// WriteProto serializes the scope as proto3 source text. Serialization is
// pure and order-preserving; running it twice yields identical bytes.
func (s *Scope) WriteProto(w io.Writer) error {
	var b strings.Builder
	b.WriteString("syntax = \"proto3\";\n")
	b.WriteString("package ")
	b.WriteString(s.pkg)
	b.WriteString(";\n")

	imports := append([]string{}, s.imports...)
	sort.Strings(imports)
	if len(imports) > 0 {
		b.WriteByte('\n')
	}
	for _, path := range imports {
		b.WriteString("import \"")
		b.WriteString(path)
		b.WriteString("\";\n")
	}

	for _, e := range s.extensions {
		b.WriteByte('\n')
		e.writeDecl(&b, 0)
	}

	if len(s.options) > 0 {
		b.WriteByte('\n')
	}
	for _, o := range s.options {
		o.writeDecl(&b, 0)
	}

	for _, c := range s.types {
		b.WriteByte('\n')
		if err := c.writeDecl(&b, 0); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteOptions serializes the nanopb option sidecar: one line per qualified
// path carrying sidecar options.
func (s *Scope) WriteOptions(w io.Writer) error {
	var b strings.Builder
	for _, c := range s.types {
		c.writeNanopbOptions(&b, s.packagePath())
	}
	_, err := io.WriteString(w, b.String())
	return err
}
