package proto

import "strings"

// reservedKeywords are proto3 keywords that cannot be used as identifiers.
var reservedKeywords = map[string]struct{}{
	"syntax": {}, "import": {}, "weak": {}, "public": {}, "package": {},
	"option": {}, "inf": {}, "repeated": {}, "optional": {}, "required": {},
	"bool": {}, "string": {}, "bytes": {}, "float": {}, "double": {},
	"int32": {}, "int64": {}, "uint32": {}, "uint64": {}, "sint32": {},
	"sint64": {}, "fixed32": {}, "fixed64": {}, "sfixed32": {}, "sfixed64": {},
	"group": {}, "oneof": {}, "map": {}, "extensions": {}, "to": {},
	"max": {}, "reserved": {}, "enum": {}, "message": {}, "extend": {},
	"service": {}, "rpc": {}, "stream": {}, "returns": {},
}

// IsReservedKeyword reports whether name is a proto3 keyword.
func IsReservedKeyword(name string) bool {
	_, ok := reservedKeywords[name]
	return ok
}

// IsValidIdentifier reports whether token is a bare proto identifier that is
// not a reserved keyword.
func IsValidIdentifier(token string) bool {
	if token == "" || IsReservedKeyword(token) {
		return false
	}
	for i, c := range token {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsValidTypeName reports whether token is a dotted type name, optionally
// starting with a leading dot.
func IsValidTypeName(token string) bool {
	if token == "" {
		return false
	}
	if token[0] == '.' {
		token = token[1:]
	}
	for _, seg := range strings.Split(token, ".") {
		if !IsValidIdentifier(seg) {
			return false
		}
	}
	return true
}

// IsValidOptionName reports whether token is a valid option name: dotted
// segments, each either a bare identifier or a parenthesized extension name.
func IsValidOptionName(token string) bool {
	if token == "" {
		return false
	}
	for len(token) > 0 {
		var seg string
		if token[0] == '(' {
			end := strings.IndexByte(token, ')')
			if end < 0 {
				return false
			}
			seg = token[:end+1]
			token = token[end+1:]
			if len(token) > 0 {
				if token[0] != '.' {
					return false
				}
				token = token[1:]
				if token == "" {
					return false
				}
			}
			if !IsValidTypeName(seg[1 : len(seg)-1]) {
				return false
			}
			continue
		}
		end := strings.IndexByte(token, '.')
		if end < 0 {
			seg = token
			token = ""
		} else {
			seg = token[:end]
			token = token[end+1:]
			if token == "" {
				return false
			}
		}
		if !IsValidIdentifier(seg) {
			return false
		}
	}
	return true
}
