package proto

import "strings"

const indentWidth = 2

// Type is any declaration that can be referenced as a field type: scalars,
// messages and enums. Oneofs also implement Type so they can participate in
// parent chains, though they are never referenced by fields.
type Type interface {
	// TypeName returns the bare declaration name.
	TypeName() string

	// TypeParent returns the enclosing type, or nil when the declaration
	// sits directly in the top scope (scalars always return nil).
	TypeParent() Type

	// Path returns the fully-qualified dotted path segments, starting with
	// the scope package.
	Path() []string
}

// QualifiedName renders the name of t as referenced from inside scope,
// trimming any shared enclosing types. A nil scope yields the full name
// relative to the top scope.
func QualifiedName(t Type, scope Type) string {
	name := t.TypeName()
	for p := t.TypeParent(); p != nil; p = p.TypeParent() {
		if p == scope {
			return name
		}
		name = p.TypeName() + "." + name
	}
	return name
}

// Scalar is one of the fixed proto3 scalar types.
type Scalar struct {
	name string
}

// Proto3 scalar type singletons.
var (
	Double   = &Scalar{"double"}
	Float    = &Scalar{"float"}
	Int32    = &Scalar{"int32"}
	Int64    = &Scalar{"int64"}
	UInt32   = &Scalar{"uint32"}
	UInt64   = &Scalar{"uint64"}
	SInt32   = &Scalar{"sint32"}
	SInt64   = &Scalar{"sint64"}
	Fixed32  = &Scalar{"fixed32"}
	Fixed64  = &Scalar{"fixed64"}
	SFixed32 = &Scalar{"sfixed32"}
	SFixed64 = &Scalar{"sfixed64"}
	Bool     = &Scalar{"bool"}
	String   = &Scalar{"string"}
	Bytes    = &Scalar{"bytes"}
)

// TypeName returns the proto3 keyword for the scalar.
func (s *Scalar) TypeName() string { return s.name }

// TypeParent returns nil; scalars have no enclosing declaration.
func (s *Scalar) TypeParent() Type { return nil }

// Path returns the scalar keyword as a single segment.
func (s *Scalar) Path() []string { return []string{s.name} }

func writeIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}
