package compiler

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/codegen"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/proto"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/rosmsg"
)

// converted is the memoized result of compiling one message: its wire type
// and the C++ conversion unit.
type converted struct {
	msg  *proto.Message
	conv *codegen.Conversion
}

// compileMessage maps a ROS message to a wire message nested under its
// package grouping message, generating the conversion unit along the way.
// Results are memoized per identity; re-entry while a message is still
// being compiled means the message graph is cyclic, which the wire format
// cannot represent.
func (g *Generator) compileMessage(identity string) (*converted, error) {
	if entry, ok := g.compiled[identity]; ok {
		if entry == nil {
			return nil, fmt.Errorf("%w: %s", ErrSchemaCycle, identity)
		}
		return entry, nil
	}
	g.compiled[identity] = nil

	msg, err := g.provider.Lookup(identity)
	if err != nil {
		return nil, err
	}

	routed, err := routeConstants(g.log, g.cfg.ConstantMapFor(identity), msg)
	if err != nil {
		return nil, err
	}

	pkgName := avoidReserved(msg.Package, "")
	msgName := avoidReserved(msg.Name, "")
	pkgMsg := g.scope.LookupMessage(pkgName)
	if pkgMsg == nil {
		if pkgMsg, err = g.scope.NewMessage(pkgName); err != nil {
			return nil, err
		}
	}
	wireMsg, err := pkgMsg.NewMessage(msgName)
	if err != nil {
		return nil, err
	}
	conv := codegen.NewConversion(identity, wireMsg.Path())

	for i, field := range msg.Fields {
		if err := g.compileField(wireMsg, conv, msg, routed, field, i+1); err != nil {
			return nil, err
		}
	}

	g.topicFile.AddInclude(fmt.Sprintf("%s/msg/%s.hpp", msg.Package, camelToSnake(msg.Name)), false)
	g.topicFile.AddConversion(conv)
	if !containsString(g.msgPackages, msg.Package) {
		g.msgPackages = append(g.msgPackages, msg.Package)
	}

	entry := &converted{msg: wireMsg, conv: conv}
	g.compiled[identity] = entry
	return entry, nil
}

// compileField maps one field, appending it to the wire message and its
// conversion statements to the conversion unit.
func (g *Generator) compileField(wireMsg *proto.Message, conv *codegen.Conversion,
	msg *rosmsg.Message, routed map[string][]string, field rosmsg.Field, num int) error {

	protoName := avoidReserved(field.Name, "_")

	constants := routed[field.Name]
	isEnum := len(constants) > 0
	var enum *proto.Enum
	maxWidth := 1
	if isEnum {
		var err error
		if enum, maxWidth, err = g.deriveEnum(wireMsg, msg, field.Name, constants); err != nil {
			return err
		}
	}

	var fieldType proto.Type
	card := proto.CardinalityNone
	var opts []*proto.Option
	addOpt := func(name string, value any) error {
		o, err := proto.NewOption(name, value)
		if err != nil {
			return err
		}
		opts = append(opts, o)
		return nil
	}

	switch t := field.Type.(type) {
	case rosmsg.BasicType:
		p, ok := primitives[t.Name]
		if !ok {
			return fmt.Errorf("%w: %q in %s", ErrUnsupportedType, t.Name, msg.Identity())
		}
		if isEnum && p.width > 0 {
			if maxWidth > p.width {
				return fmt.Errorf("%w: field %q (width %d) of %s",
					ErrEnumWidth, field.Name, p.width, msg.Identity())
			}
			fieldType = enum
			conv.AddEnum(field.Name, protoName, enum)
		} else {
			fieldType = p.scalar
			if p.width > 0 {
				if err := addOpt("(nanopb).int_size", int64(p.width)); err != nil {
					return err
				}
			}
			if err := conv.AddScalar(field.Name, p.rosCpp, protoName, p.protoCpp); err != nil {
				return err
			}
		}

	case rosmsg.NamespacedType:
		child, err := g.compileMessage(t.Identity())
		if err != nil {
			return err
		}
		fieldType = child.msg
		conv.AddNested(field.Name, protoName, child.conv)

	case rosmsg.BoundedString:
		fieldType = proto.String
		if err := addOpt("(nanopb).max_size", int64(t.MaxSize)); err != nil {
			return err
		}
		conv.AddBoundedString(field.Name, protoName, t.MaxSize)

	case rosmsg.UnboundedString:
		fieldType = proto.String
		if err := addOpt("(nanopb).type", "FT_POINTER"); err != nil {
			return err
		}
		if err := conv.AddScalar(field.Name, "std::string", protoName, "std::string"); err != nil {
			return err
		}

	case rosmsg.Array, rosmsg.BoundedSequence, rosmsg.UnboundedSequence:
		var err error
		fieldType, card, err = g.compileArrayField(conv, msg, field, protoName, isEnum, enum, maxWidth, addOpt)
		if err != nil {
			return err
		}

	case rosmsg.BoundedWString, rosmsg.UnboundedWString:
		return fmt.Errorf("%w: wide string field %q in %s",
			ErrUnsupportedType, field.Name, msg.Identity())

	default:
		return fmt.Errorf("%w: field %q in %s", ErrUnsupportedType, field.Name, msg.Identity())
	}

	if isEnum && fieldType != proto.Type(enum) {
		return fmt.Errorf("%w: field %q of %s", ErrNotEnumerable, field.Name, msg.Identity())
	}

	f, err := proto.NewField(fieldType, protoName, num, card, opts...)
	if err != nil {
		return err
	}
	return wireMsg.AddField(f)
}

// compileArrayField handles the three repeated kinds. Arrays of 8 bit
// elements that are not enum-derived collapse to a single bytes field.
func (g *Generator) compileArrayField(conv *codegen.Conversion, msg *rosmsg.Message,
	field rosmsg.Field, protoName string, isEnum bool, enum *proto.Enum, maxWidth int,
	addOpt func(string, any) error) (proto.Type, proto.Cardinality, error) {

	var elem rosmsg.FieldType
	var bounds codegen.ArrayBounds
	switch t := field.Type.(type) {
	case rosmsg.Array:
		elem = t.Elem
		bounds = codegen.ArrayBounds{Max: t.Size, HasMax: true, Fixed: true}
	case rosmsg.BoundedSequence:
		elem = t.Elem
		bounds = codegen.ArrayBounds{Max: t.MaxSize, HasMax: true}
	case rosmsg.UnboundedSequence:
		elem = t.Elem
	}

	if bt, ok := elem.(rosmsg.BasicType); ok && !isEnum && byteElemTypes[bt.Name] {
		switch {
		case bounds.Fixed:
			if err := addOpt("(nanopb).max_size", int64(bounds.Max)); err != nil {
				return nil, 0, err
			}
			if err := addOpt("(nanopb).fixed_length", true); err != nil {
				return nil, 0, err
			}
		case bounds.HasMax:
			if err := addOpt("(nanopb).max_size", int64(bounds.Max)); err != nil {
				return nil, 0, err
			}
		default:
			if err := addOpt("(nanopb).type", "FT_POINTER"); err != nil {
				return nil, 0, err
			}
		}
		conv.AddBytes(field.Name, protoName, bounds)
		return proto.Bytes, proto.CardinalityNone, nil
	}

	pointerSet := false
	switch {
	case bounds.Fixed:
		if err := addOpt("(nanopb).max_count", int64(bounds.Max)); err != nil {
			return nil, 0, err
		}
		if err := addOpt("(nanopb).fixed_count", true); err != nil {
			return nil, 0, err
		}
	case bounds.HasMax:
		if err := addOpt("(nanopb).max_count", int64(bounds.Max)); err != nil {
			return nil, 0, err
		}
	default:
		if err := addOpt("(nanopb).type", "FT_POINTER"); err != nil {
			return nil, 0, err
		}
		pointerSet = true
	}

	switch et := elem.(type) {
	case rosmsg.BasicType:
		p, ok := primitives[et.Name]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q in %s", ErrUnsupportedType, et.Name, msg.Identity())
		}
		if isEnum && p.width > 0 {
			if maxWidth > p.width {
				return nil, 0, fmt.Errorf("%w: field %q (width %d) of %s",
					ErrEnumWidth, field.Name, p.width, msg.Identity())
			}
			conv.AddArrayEnum(field.Name, protoName, enum, bounds)
			return enum, proto.CardinalityRepeated, nil
		}
		if p.width > 0 {
			if err := addOpt("(nanopb).int_size", int64(p.width)); err != nil {
				return nil, 0, err
			}
		}
		if err := conv.AddArrayScalar(field.Name, p.rosCpp, protoName, p.protoCpp, bounds); err != nil {
			return nil, 0, err
		}
		return p.scalar, proto.CardinalityRepeated, nil

	case rosmsg.NamespacedType:
		child, err := g.compileMessage(et.Identity())
		if err != nil {
			return nil, 0, err
		}
		conv.AddArrayNested(field.Name, protoName, child.conv, bounds)
		return child.msg, proto.CardinalityRepeated, nil

	case rosmsg.BoundedString:
		if err := addOpt("(nanopb).max_size", int64(et.MaxSize)); err != nil {
			return nil, 0, err
		}
		conv.AddArrayBoundedString(field.Name, protoName, et.MaxSize, bounds)
		return proto.String, proto.CardinalityRepeated, nil

	case rosmsg.UnboundedString:
		if !pointerSet {
			if err := addOpt("(nanopb).type", "FT_POINTER"); err != nil {
				return nil, 0, err
			}
		}
		if err := conv.AddArrayScalar(field.Name, "std::string", protoName, "std::string", bounds); err != nil {
			return nil, 0, err
		}
		return proto.String, proto.CardinalityRepeated, nil

	default:
		return nil, 0, fmt.Errorf("%w: element of field %q in %s",
			ErrUnsupportedType, field.Name, msg.Identity())
	}
}

// deriveEnum builds the nested enum for a constant-routed field and
// returns it with the widest constant bit width.
func (g *Generator) deriveEnum(wireMsg *proto.Message, msg *rosmsg.Message,
	fieldName string, constants []string) (*proto.Enum, int, error) {

	enum, err := wireMsg.NewEnum(fieldName + "_enum")
	if err != nil {
		return nil, 0, err
	}
	maxWidth := 1
	zeroAdded := false
	for _, name := range constants {
		value, ok := msg.ConstantValue(name)
		if !ok {
			return nil, 0, fmt.Errorf("constant %q not found in %s", name, msg.Identity())
		}
		if value < math.MinInt32 || value > math.MaxInt32 {
			return nil, 0, fmt.Errorf("%w: constant %q in %s",
				ErrConstantRange, name, msg.Identity())
		}
		if w := constantWidth(value); w > maxWidth {
			maxWidth = w
		}
		if value == 0 {
			zeroAdded = true
		}
		if err := enum.AddValue(name, value); err != nil {
			return nil, 0, err
		}
	}
	if !zeroAdded {
		zeroName := fmt.Sprintf("_%s_RESERVED_ZERO_VALUE", strings.ToUpper(fieldName))
		if err := enum.AddValue(zeroName, 0); err != nil {
			return nil, 0, err
		}
	}
	return enum, maxWidth, nil
}

// constantWidth is the number of magnitude bits needed to hold v, using
// two's complement for negative values.
func constantWidth(v int64) int {
	if v == 0 {
		return 1
	}
	if v < 0 {
		return bits.Len64(uint64(^v)) + 1
	}
	return bits.Len64(uint64(v))
}

// avoidReserved rewrites names that collide with wire schema keywords.
// Types get a trailing underscore, fields a leading one.
func avoidReserved(name, prefix string) string {
	if !proto.IsReservedKeyword(name) {
		return name
	}
	if prefix != "" {
		return prefix + name
	}
	return name + "_"
}

// camelToSnake converts a CamelCase message name to the snake_case header
// basename rosidl generates.
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i != 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
