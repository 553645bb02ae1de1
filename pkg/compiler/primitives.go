package compiler

import "github.com/osu-uwrt/riptide-fw-bridge/pkg/proto"

// primitive is one row of the primitive type table: the wire scalar a host
// type maps to, the host integer bit width (0 for non-integer types) and
// the C++ types on either side of the conversion.
type primitive struct {
	scalar   *proto.Scalar
	width    int
	rosCpp   string
	protoCpp string
}

// primitives is keyed by rosidl type name. Narrow integers widen to the
// closest wire scalar and carry their true width as a nanopb option plus a
// generated bounds check.
var primitives = map[string]primitive{
	"boolean": {proto.Bool, 0, "bool", "bool"},
	"octet":   {proto.Int32, 8, "int8_t", "int32_t"},
	"float":   {proto.Float, 0, "float", "float"},
	"double":  {proto.Double, 0, "double", "double"},
	"int8":    {proto.SInt32, 8, "int8_t", "int32_t"},
	"uint8":   {proto.UInt32, 8, "uint8_t", "uint32_t"},
	"int16":   {proto.SInt32, 16, "int16_t", "int32_t"},
	"uint16":  {proto.UInt32, 16, "uint16_t", "uint32_t"},
	"int32":   {proto.SInt32, 32, "int32_t", "int32_t"},
	"uint32":  {proto.UInt32, 32, "uint32_t", "uint32_t"},
	"int64":   {proto.SInt64, 64, "int64_t", "int64_t"},
	"uint64":  {proto.UInt64, 64, "uint64_t", "uint64_t"},
}

// byteElemTypes are the 8 bit element types whose arrays collapse into a
// single wire bytes field.
var byteElemTypes = map[string]bool{
	"int8":  true,
	"uint8": true,
	"octet": true,
}
