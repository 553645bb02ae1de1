// Package cpp represents generated C++ code as a small statement tree:
// lines, brace-delimited blocks and switch-case groups. The tree is built up
// during codec generation and serialized with consistent indentation only at
// the end, keeping codec-logic tests independent of text formatting.
package cpp

import (
	"fmt"
	"io"
	"strings"
)

// IndentWidth is the generated source indentation step.
const IndentWidth = 4

// Stmt is one element of generated code.
type Stmt interface {
	write(b *strings.Builder, indent int)
}

// Line is a single source line, emitted at the current indent.
type Line string

func (l Line) write(b *strings.Builder, indent int) {
	writeIndent(b, indent)
	b.WriteString(string(l))
	b.WriteByte('\n')
}

// Linef formats a single source line.
func Linef(format string, args ...any) Line {
	return Line(fmt.Sprintf(format, args...))
}

// Block is a brace-delimited group of statements, indented one step.
type Block []Stmt

func (blk Block) write(b *strings.Builder, indent int) {
	writeIndent(b, indent)
	b.WriteString("{\n")
	for _, s := range blk {
		s.write(b, indent+IndentWidth)
	}
	writeIndent(b, indent)
	b.WriteString("}\n")
}

// Case is one labelled arm of a switch statement. The label is emitted with
// a trailing colon, followed by the body statements at one extra indent
// level without braces.
type Case struct {
	Label string
	Body  []Stmt
}

// CaseList emits its cases in order.
type CaseList []Case

func (cl CaseList) write(b *strings.Builder, indent int) {
	for _, c := range cl {
		writeIndent(b, indent)
		b.WriteString(c.Label)
		b.WriteString(":\n")
		for _, s := range c.Body {
			s.write(b, indent+IndentWidth)
		}
	}
}

// Write serializes statements to w at the given starting indent.
func Write(w io.Writer, stmts []Stmt, indent int) error {
	var b strings.Builder
	for _, s := range stmts {
		s.write(&b, indent)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Render serializes statements to a string at the given starting indent.
func Render(stmts []Stmt, indent int) string {
	var b strings.Builder
	for _, s := range stmts {
		s.write(&b, indent)
	}
	return b.String()
}

func writeIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}

// EscapeString renders s as a double-quoted C string literal, escaping
// quotes, backslashes and non-printable characters.
func EscapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case 0:
			b.WriteString(`\0`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 32 || (c > 126 && c < 160) {
				fmt.Fprintf(&b, `\x%02X`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// OneofCaseName converts a snake_case field name into the protobuf C++
// oneof case constant, e.g. "param_update" -> "kParamUpdate".
func OneofCaseName(field string) string {
	var b strings.Builder
	b.WriteByte('k')
	for _, part := range strings.Split(field, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
