package rosmsg

// FieldType describes the type of a single message field, mirroring the
// rosidl type grammar.
type FieldType interface {
	isFieldType()
}

// BasicType is a primitive field type. Name is the rosidl type name
// (boolean, octet, float, double, int8 ... uint64).
type BasicType struct {
	Name string
}

// NamespacedType references another message type by package and name.
type NamespacedType struct {
	Package string
	Name    string
}

// Identity returns the namespaced message identity, e.g.
// "geometry_msgs/msg/Vector3".
func (t NamespacedType) Identity() string {
	return t.Package + "/msg/" + t.Name
}

// BoundedString is a string with a declared maximum length.
type BoundedString struct {
	MaxSize int
}

// UnboundedString is a string without a length bound.
type UnboundedString struct{}

// BoundedWString is a bounded wide string. Not representable on the wire.
type BoundedWString struct {
	MaxSize int
}

// UnboundedWString is an unbounded wide string. Not representable on the
// wire.
type UnboundedWString struct{}

// Array is a fixed-length array of Size elements.
type Array struct {
	Elem FieldType
	Size int
}

// BoundedSequence is a variable-length sequence with a maximum element
// count.
type BoundedSequence struct {
	Elem    FieldType
	MaxSize int
}

// UnboundedSequence is a variable-length sequence without a bound.
type UnboundedSequence struct {
	Elem FieldType
}

func (BasicType) isFieldType()         {}
func (NamespacedType) isFieldType()    {}
func (BoundedString) isFieldType()     {}
func (UnboundedString) isFieldType()   {}
func (BoundedWString) isFieldType()    {}
func (UnboundedWString) isFieldType()  {}
func (Array) isFieldType()             {}
func (BoundedSequence) isFieldType()   {}
func (UnboundedSequence) isFieldType() {}

// Field is a named message field.
type Field struct {
	Name string
	Type FieldType
}

// Constant is a named integer constant declared on a message. Declaration
// order is preserved because it drives derived enum emission order.
type Constant struct {
	Name  string
	Value int64
}

// Message is one message definition.
type Message struct {
	Package   string
	Name      string
	Fields    []Field
	Constants []Constant
}

// Identity returns the namespaced message identity.
func (m *Message) Identity() string {
	return m.Package + "/msg/" + m.Name
}

// FieldNames returns the field names in declaration order.
func (m *Message) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// ConstantValue returns the value of a named constant.
func (m *Message) ConstantValue(name string) (int64, bool) {
	for _, c := range m.Constants {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}
