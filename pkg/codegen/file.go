package codegen

import (
	"fmt"
	"io"
	"strings"
)

// handler is a message handler class emitted after the conversion units.
type handler interface {
	writeClass(b *strings.Builder) error
}

// File assembles one generated C++ source file: include directives, the
// conversion units reachable from the bridge roots and a single handler
// class, all wrapped in a namespace.
type File struct {
	namespace string
	includes  []string

	conversions []*Conversion
	decodeRoots map[*Conversion]bool
	encodeRoots map[*Conversion]bool

	handler handler
}

// NewFile creates an empty file emitting into the given namespace.
func NewFile(namespace string) *File {
	return &File{
		namespace:   namespace,
		decodeRoots: make(map[*Conversion]bool),
		encodeRoots: make(map[*Conversion]bool),
	}
}

// AddInclude appends an include directive. System includes use angle
// brackets, the rest are quoted. Duplicates are dropped.
func (f *File) AddInclude(path string, system bool) {
	var line string
	if system {
		line = fmt.Sprintf("#include <%s>", path)
	} else {
		line = fmt.Sprintf("#include %q", path)
	}
	for _, existing := range f.includes {
		if existing == line {
			return
		}
	}
	f.includes = append(f.includes, line)
}

// AddConversion registers a conversion unit for emission. Units render in
// registration order.
func (f *File) AddConversion(c *Conversion) {
	for _, existing := range f.conversions {
		if existing == c {
			return
		}
	}
	f.conversions = append(f.conversions, c)
}

// MarkDecodeUsed records that the handler invokes the wire-to-ROS
// direction of the given unit.
func (f *File) MarkDecodeUsed(c *Conversion) { f.decodeRoots[c] = true }

// MarkEncodeUsed records that the handler invokes the ROS-to-wire
// direction of the given unit.
func (f *File) MarkEncodeUsed(c *Conversion) { f.encodeRoots[c] = true }

// SetHandler installs the handler class emitted after the conversions.
func (f *File) SetHandler(h handler) { f.handler = h }

func markReachable(c *Conversion, set map[*Conversion]bool) {
	if set[c] {
		return
	}
	set[c] = true
	for _, dep := range c.deps {
		markReachable(dep, set)
	}
}

// WriteTo renders the complete file. A registered conversion that is not
// reachable from any root in either direction fails with
// ErrUnreachableCodec.
func (f *File) WriteTo(w io.Writer) error {
	decodeUsed := make(map[*Conversion]bool)
	encodeUsed := make(map[*Conversion]bool)
	for root := range f.decodeRoots {
		markReachable(root, decodeUsed)
	}
	for root := range f.encodeRoots {
		markReachable(root, encodeUsed)
	}

	var b strings.Builder
	for _, inc := range f.includes {
		b.WriteString(inc)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("namespace %s {\n", f.namespace))

	for _, c := range f.conversions {
		b.WriteString("\n")
		if err := c.render(&b, decodeUsed[c], encodeUsed[c]); err != nil {
			return err
		}
	}

	if f.handler != nil {
		b.WriteString("\n")
		if err := f.handler.writeClass(&b); err != nil {
			return err
		}
	}

	b.WriteString(fmt.Sprintf("\n} // end namespace %s\n", f.namespace))

	_, err := io.WriteString(w, b.String())
	return err
}
