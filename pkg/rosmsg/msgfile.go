package rosmsg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// msgPrimitives maps .msg primitive names to rosidl type names.
var msgPrimitives = map[string]string{
	"bool":    "boolean",
	"byte":    "octet",
	"char":    "uint8",
	"float32": "float",
	"float64": "double",
	"int8":    "int8",
	"uint8":   "uint8",
	"int16":   "int16",
	"uint16":  "uint16",
	"int32":   "int32",
	"uint32":  "uint32",
	"int64":   "int64",
	"uint64":  "uint64",
}

// integer .msg types whose constants are eligible for enum derivation
var msgIntegerTypes = map[string]bool{
	"byte": true, "char": true,
	"int8": true, "uint8": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "int64": true, "uint64": true,
}

// DirProvider resolves message identities by parsing .msg files found under
// a list of search roots, laid out as <root>/<package>/msg/<Name>.msg.
type DirProvider struct {
	roots []string
	cache map[string]*Message
}

// NewDirProvider creates a provider over the given search roots.
func NewDirProvider(roots ...string) *DirProvider {
	return &DirProvider{roots: roots, cache: make(map[string]*Message)}
}

// Lookup implements Provider.
func (p *DirProvider) Lookup(identity string) (*Message, error) {
	pkg, name, err := SplitIdentity(identity)
	if err != nil {
		return nil, err
	}
	if m, ok := p.cache[identity]; ok {
		return m, nil
	}
	for _, root := range p.roots {
		path := filepath.Join(root, pkg, "msg", name+".msg")
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		m, err := ParseMsg(f, pkg, name)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		p.cache[identity] = m
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, identity)
}

// ParseMsg parses a rosidl .msg definition.
func ParseMsg(r io.Reader, pkg, name string) (*Message, error) {
	m := &Message{Package: pkg, Name: name}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := parseMsgLine(m, pkg, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseMsgLine(m *Message, pkg, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("malformed declaration %q", line)
	}
	typeTok := fields[0]
	rest := strings.TrimSpace(line[len(typeTok):])

	// constant declarations carry an equals sign: "uint8 STATE_IDLE=0"
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		constName := strings.TrimSpace(rest[:eq])
		constVal := strings.TrimSpace(rest[eq+1:])
		if !msgIntegerTypes[typeTok] {
			// non-integer constants cannot become enum members, skip
			return nil
		}
		value, err := strconv.ParseInt(constVal, 0, 64)
		if err != nil {
			return fmt.Errorf("constant %s: %w", constName, err)
		}
		m.Constants = append(m.Constants, Constant{Name: constName, Value: value})
		return nil
	}

	fieldName := fields[1]
	// any remaining tokens are a default value, which conversion ignores
	fieldType, err := parseMsgType(typeTok, pkg)
	if err != nil {
		return err
	}
	m.Fields = append(m.Fields, Field{Name: fieldName, Type: fieldType})
	return nil
}

func parseMsgType(tok, pkg string) (FieldType, error) {
	// array suffix: T[], T[N] or T[<=N]
	if strings.HasSuffix(tok, "]") {
		open := strings.LastIndexByte(tok, '[')
		if open < 0 {
			return nil, fmt.Errorf("malformed type %q", tok)
		}
		elem, err := parseMsgType(tok[:open], pkg)
		if err != nil {
			return nil, err
		}
		spec := tok[open+1 : len(tok)-1]
		switch {
		case spec == "":
			return UnboundedSequence{Elem: elem}, nil
		case strings.HasPrefix(spec, "<="):
			n, err := strconv.Atoi(spec[2:])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("malformed sequence bound %q", tok)
			}
			return BoundedSequence{Elem: elem, MaxSize: n}, nil
		default:
			n, err := strconv.Atoi(spec)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("malformed array size %q", tok)
			}
			return Array{Elem: elem, Size: n}, nil
		}
	}

	// bounded strings: string<=N, wstring<=N
	if bound, ok := strings.CutPrefix(tok, "string<="); ok {
		n, err := strconv.Atoi(bound)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("malformed string bound %q", tok)
		}
		return BoundedString{MaxSize: n}, nil
	}
	if bound, ok := strings.CutPrefix(tok, "wstring<="); ok {
		n, err := strconv.Atoi(bound)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("malformed wstring bound %q", tok)
		}
		return BoundedWString{MaxSize: n}, nil
	}
	if tok == "string" {
		return UnboundedString{}, nil
	}
	if tok == "wstring" {
		return UnboundedWString{}, nil
	}

	if rosidl, ok := msgPrimitives[tok]; ok {
		return BasicType{Name: rosidl}, nil
	}

	// message references: "geometry_msgs/Vector3" or same-package "Header"
	if before, after, ok := strings.Cut(tok, "/"); ok {
		if before == "" || after == "" || strings.Contains(after, "/") {
			return nil, fmt.Errorf("malformed type reference %q", tok)
		}
		return NamespacedType{Package: before, Name: after}, nil
	}
	return NamespacedType{Package: pkg, Name: tok}, nil
}
