package codegen

import (
	"fmt"
	"strings"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/cpp"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/proto"
)

// ArrayBounds describes the declared size constraints of an array or
// sequence field.
type ArrayBounds struct {
	Max    int
	HasMax bool
	Fixed  bool
}

// Conversion is the conversion unit for one bridged message type: the
// decode (wire to ROS) and encode (ROS to wire) procedure bodies, plus the
// nested units it delegates to.
type Conversion struct {
	identity  string // namespaced identity, e.g. geometry_msgs/msg/Vector3
	protoType string // C++ wire message type, e.g. titan_pb::geometry_msgs::Vector3
	rosType   string // C++ ROS message type, e.g. geometry_msgs::msg::Vector3

	decodeName string
	encodeName string

	decode []cpp.Stmt
	encode []cpp.Stmt
	deps   []*Conversion
}

// NewConversion creates an empty conversion unit for the message with the
// given namespaced identity and wire-type path.
func NewConversion(identity string, protoPath []string) *Conversion {
	mangled := strings.ReplaceAll(identity, "/", "__")
	return &Conversion{
		identity:   identity,
		protoType:  strings.Join(protoPath, "::"),
		rosType:    strings.ReplaceAll(identity, "/", "::"),
		decodeName: "convert_to_" + mangled,
		encodeName: "convert_from_" + mangled,
	}
}

// Identity returns the namespaced message identity.
func (c *Conversion) Identity() string { return c.identity }

// RosType returns the C++ ROS message type name.
func (c *Conversion) RosType() string { return c.rosType }

// ProtoType returns the C++ wire message type name.
func (c *Conversion) ProtoType() string { return c.protoType }

// DecodeName returns the wire-to-ROS conversion function name.
func (c *Conversion) DecodeName() string { return c.decodeName }

// EncodeName returns the ROS-to-wire conversion function name.
func (c *Conversion) EncodeName() string { return c.encodeName }

// Deps returns the nested conversion units this unit delegates to.
func (c *Conversion) Deps() []*Conversion { return c.deps }

func (c *Conversion) throwStmt(field, reason string) cpp.Stmt {
	return cpp.Block{cpp.Linef("throw MsgConversionError(%s, %s, %s);",
		cpp.EscapeString(c.identity), cpp.EscapeString(field), cpp.EscapeString(reason))}
}

// AddScalar generates conversion for a plain scalar field. When the ROS
// type is narrower than the wire type, the decode direction reads into a
// temporary of the wire width and range-checks before assigning.
func (c *Conversion) AddScalar(rosField, rosType, protoField, protoType string) error {
	if rosType != protoType {
		wireInt, err := parseFixedIntType(protoType)
		if err != nil {
			return err
		}
		hostInt, err := parseFixedIntType(rosType)
		if err != nil {
			return err
		}
		if wireInt.unsigned != hostInt.unsigned {
			return fmt.Errorf("%w: field %q of %q", ErrSignednessMismatch, rosField, c.identity)
		}
		c.decode = append(c.decode,
			cpp.Linef("%s %s = proto_msg.%s();", protoType, rosField, protoField),
			cpp.Linef("if (%s)", hostInt.boundsCheck(rosField)),
			c.throwStmt(rosField, "Integer out of range"),
			cpp.Linef("ros_msg.%s = %s;", rosField, rosField),
		)
	} else {
		c.decode = append(c.decode, cpp.Linef("ros_msg.%s = proto_msg.%s();", rosField, protoField))
	}

	// every ROS scalar is representable in its wire type, no check needed
	c.encode = append(c.encode, cpp.Linef("proto_msg.set_%s(ros_msg.%s);", protoField, rosField))
	return nil
}

// AddNested generates conversion for a sub-message field by delegating to
// the child's conversion unit and registering the dependency.
func (c *Conversion) AddNested(rosField, protoField string, child *Conversion) {
	c.decode = append(c.decode,
		cpp.Linef("%s(ros_msg.%s, proto_msg.%s());", child.decodeName, rosField, protoField))
	c.encode = append(c.encode,
		cpp.Linef("%s(ros_msg.%s, *proto_msg.mutable_%s());", child.encodeName, rosField, protoField))
	c.deps = append(c.deps, child)
}

// AddEnum generates conversion for an enum-typed field. Decode assigns
// directly; encode validates membership before casting.
func (c *Conversion) AddEnum(rosField, protoField string, enum *proto.Enum) {
	c.decode = append(c.decode, cpp.Linef("ros_msg.%s = proto_msg.%s();", rosField, protoField))

	enumType := strings.Join(enum.Path(), "::")
	c.encode = append(c.encode,
		cpp.Linef("if (!proto_msg.%s_IsValid(ros_msg.%s))", enum.TypeName(), rosField),
		c.throwStmt(rosField, "Invalid Enum Value"),
		cpp.Linef("proto_msg.set_%s(static_cast<%s>(ros_msg.%s));", protoField, enumType, rosField),
	)
}

// AddBoundedString generates conversion for a length-bounded string field,
// checking the bound in both directions.
func (c *Conversion) AddBoundedString(rosField, protoField string, maxSize int) {
	c.decode = append(c.decode,
		cpp.Linef("if (proto_msg.%s().size() > %d)", protoField, maxSize),
		c.throwStmt(rosField, "Bounded string too large"),
		cpp.Linef("ros_msg.%s = proto_msg.%s();", rosField, protoField),
	)
	c.encode = append(c.encode,
		cpp.Linef("if (ros_msg.%s.size() > %d)", rosField, maxSize),
		c.throwStmt(rosField, "Bounded string too large"),
		cpp.Linef("proto_msg.set_%s(ros_msg.%s);", protoField, rosField),
	)
}

// commonLoop wraps per-element bodies with the shared repeated-field
// plumbing: count checks on both sides, container clearing and the element
// loops.
func (c *Conversion) commonLoop(rosField, protoField string, bounds ArrayBounds, decodeBody, encodeBody cpp.Block) {
	if bounds.HasMax {
		cmp := ">"
		if bounds.Fixed {
			cmp = "!="
		}
		c.decode = append(c.decode,
			cpp.Linef("if (proto_msg.%s_size() %s %d)", protoField, cmp, bounds.Max),
			c.throwStmt(rosField, "Invalid Array Size"),
		)
	}
	if !bounds.Fixed {
		c.decode = append(c.decode, cpp.Linef("ros_msg.%s.clear();", rosField))
	}
	c.decode = append(c.decode,
		cpp.Linef("for (int i = 0; i < proto_msg.%s_size(); i++)", protoField),
		decodeBody,
	)

	if bounds.HasMax {
		cmp := ">"
		if bounds.Fixed {
			cmp = "!="
		}
		c.encode = append(c.encode,
			cpp.Linef("if (ros_msg.%s.size() %s %d)", rosField, cmp, bounds.Max),
			c.throwStmt(rosField, "Invalid Array Size"),
		)
	}
	c.encode = append(c.encode,
		cpp.Linef("proto_msg.clear_%s();", protoField),
		cpp.Linef("for (auto& entry : ros_msg.%s)", rosField),
		encodeBody,
	)
}

// AddArrayScalar generates conversion for a repeated scalar field.
func (c *Conversion) AddArrayScalar(rosField, rosType, protoField, protoType string, bounds ArrayBounds) error {
	var decodeBody cpp.Block
	if rosType != protoType {
		wireInt, err := parseFixedIntType(protoType)
		if err != nil {
			return err
		}
		hostInt, err := parseFixedIntType(rosType)
		if err != nil {
			return err
		}
		if wireInt.unsigned != hostInt.unsigned {
			return fmt.Errorf("%w: field %q of %q", ErrSignednessMismatch, rosField, c.identity)
		}
		decodeBody = cpp.Block{
			cpp.Linef("%s %s = proto_msg.%s(i);", protoType, rosField, protoField),
			cpp.Linef("if (%s)", hostInt.boundsCheck(rosField)),
			c.throwStmt(rosField, "Integer out of range"),
		}
		if bounds.Fixed {
			decodeBody = append(decodeBody, cpp.Linef("ros_msg.%s.at(i) = %s;", rosField, rosField))
		} else {
			decodeBody = append(decodeBody, cpp.Linef("ros_msg.%s.push_back(%s);", rosField, rosField))
		}
	} else if bounds.Fixed {
		decodeBody = cpp.Block{cpp.Linef("ros_msg.%s.at(i) = proto_msg.%s(i);", rosField, protoField)}
	} else {
		decodeBody = cpp.Block{cpp.Linef("ros_msg.%s.push_back(proto_msg.%s(i));", rosField, protoField)}
	}

	encodeBody := cpp.Block{cpp.Linef("proto_msg.add_%s(entry);", protoField)}
	c.commonLoop(rosField, protoField, bounds, decodeBody, encodeBody)
	return nil
}

// AddArrayNested generates conversion for a repeated sub-message field.
func (c *Conversion) AddArrayNested(rosField, protoField string, child *Conversion, bounds ArrayBounds) {
	var decodeBody cpp.Block
	if !bounds.Fixed {
		decodeBody = append(decodeBody, cpp.Linef("ros_msg.%s.emplace_back();", rosField))
	}
	decodeBody = append(decodeBody,
		cpp.Linef("%s(ros_msg.%s.at(i), proto_msg.%s(i));", child.decodeName, rosField, protoField))

	encodeBody := cpp.Block{
		cpp.Linef("%s(entry, *proto_msg.add_%s());", child.encodeName, protoField),
	}
	c.commonLoop(rosField, protoField, bounds, decodeBody, encodeBody)
	c.deps = append(c.deps, child)
}

// AddArrayEnum generates conversion for a repeated enum-typed field.
func (c *Conversion) AddArrayEnum(rosField, protoField string, enum *proto.Enum, bounds ArrayBounds) {
	var decodeBody cpp.Block
	if bounds.Fixed {
		decodeBody = cpp.Block{cpp.Linef("ros_msg.%s.at(i) = proto_msg.%s(i);", rosField, protoField)}
	} else {
		decodeBody = cpp.Block{cpp.Linef("ros_msg.%s.push_back(proto_msg.%s(i));", rosField, protoField)}
	}

	enumType := strings.Join(enum.Path(), "::")
	encodeBody := cpp.Block{
		cpp.Linef("if (!proto_msg.%s_IsValid(entry))", enum.TypeName()),
		c.throwStmt(rosField, "Invalid Enum Value"),
		cpp.Linef("proto_msg.add_%s(static_cast<%s>(entry));", protoField, enumType),
	}
	c.commonLoop(rosField, protoField, bounds, decodeBody, encodeBody)
}

// AddArrayBoundedString generates conversion for a repeated bounded-string
// field, checking the per-element bound in both directions.
func (c *Conversion) AddArrayBoundedString(rosField, protoField string, maxStrSize int, bounds ArrayBounds) {
	decodeBody := cpp.Block{
		cpp.Linef("if (proto_msg.%s(i).size() > %d)", protoField, maxStrSize),
		c.throwStmt(rosField, "Bounded string too large"),
	}
	if bounds.Fixed {
		decodeBody = append(decodeBody, cpp.Linef("ros_msg.%s.at(i) = proto_msg.%s(i);", rosField, protoField))
	} else {
		decodeBody = append(decodeBody, cpp.Linef("ros_msg.%s.push_back(proto_msg.%s(i));", rosField, protoField))
	}

	encodeBody := cpp.Block{
		cpp.Linef("if (entry.size() > %d)", maxStrSize),
		c.throwStmt(rosField, "Bounded string too large"),
		cpp.Linef("proto_msg.add_%s(entry);", protoField),
	}
	c.commonLoop(rosField, protoField, bounds, decodeBody, encodeBody)
}

// AddBytes generates conversion for an 8-bit element array collapsed to a
// single wire bytes field: one bulk length check and one bulk copy per
// direction instead of a per-element loop.
func (c *Conversion) AddBytes(rosField, protoField string, bounds ArrayBounds) {
	c.decode = append(c.decode, cpp.Linef("auto& %s = proto_msg.%s();", protoField, protoField))
	if bounds.HasMax {
		cmp := ">"
		if bounds.Fixed {
			cmp = "!="
		}
		c.decode = append(c.decode,
			cpp.Linef("if (%s.size() %s %d)", protoField, cmp, bounds.Max),
			c.throwStmt(rosField, "Invalid Array Size"),
		)
	}
	if bounds.Fixed {
		c.decode = append(c.decode,
			cpp.Linef("std::copy(%s.begin(), %s.end(), ros_msg.%s.begin());", protoField, protoField, rosField))
	} else {
		c.decode = append(c.decode,
			cpp.Linef("ros_msg.%s.assign(%s.begin(), %s.end());", rosField, protoField, protoField))
	}

	if bounds.HasMax {
		cmp := ">"
		if bounds.Fixed {
			cmp = "!="
		}
		c.encode = append(c.encode,
			cpp.Linef("if (ros_msg.%s.size() %s %d)", rosField, cmp, bounds.Max),
			c.throwStmt(rosField, "Invalid Array Size"),
		)
	}
	c.encode = append(c.encode,
		cpp.Linef("std::string %s(ros_msg.%s.begin(), ros_msg.%s.end());", rosField, rosField, rosField),
		cpp.Linef("proto_msg.set_%s(%s);", protoField, rosField),
	)
}

func (c *Conversion) decodeDecl() string {
	return fmt.Sprintf("static void %s(%s& ros_msg, const %s& proto_msg)",
		c.decodeName, c.rosType, c.protoType)
}

func (c *Conversion) encodeDecl() string {
	return fmt.Sprintf("static void %s(const %s& ros_msg, %s& proto_msg)",
		c.encodeName, c.rosType, c.protoType)
}

// render writes the used directions of the conversion unit.
func (c *Conversion) render(b *strings.Builder, decodeUsed, encodeUsed bool) error {
	decode := c.decode
	encode := c.encode
	// empty messages still need a compilable body
	if len(decode) == 0 {
		decode = []cpp.Stmt{cpp.Line("(void) ros_msg;"), cpp.Line("(void) proto_msg;")}
	}
	if len(encode) == 0 {
		encode = []cpp.Stmt{cpp.Line("(void) ros_msg;"), cpp.Line("(void) proto_msg;")}
	}

	switch {
	case decodeUsed && encodeUsed:
		b.WriteString(cpp.Render([]cpp.Stmt{
			cpp.Line(c.decodeDecl()), cpp.Block(decode),
			cpp.Line(""),
			cpp.Line(c.encodeDecl()), cpp.Block(encode),
		}, 0))
	case decodeUsed:
		b.WriteString(cpp.Render([]cpp.Stmt{cpp.Line(c.decodeDecl()), cpp.Block(decode)}, 0))
	case encodeUsed:
		b.WriteString(cpp.Render([]cpp.Stmt{cpp.Line(c.encodeDecl()), cpp.Block(encode)}, 0))
	default:
		return fmt.Errorf("%w: %s", ErrUnreachableCodec, c.identity)
	}
	return nil
}
