package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/codegen"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/proto"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/rosmsg"
)

const (
	// WirePackage is the protobuf package all generated types live in.
	WirePackage = "titan_pb"

	// CppNamespace wraps the generated handler sources.
	CppNamespace = "RosProtobufBridge"

	// DefaultIncludePath locates the handwritten bridge header the
	// generated sources build against.
	DefaultIncludePath = "riptide_fw_bridge/RosProtobufBridge.hpp"

	// TopicHandlerSource and ParamHandlerSource are the emitted C++ file
	// names referenced from the CMake snippet.
	TopicHandlerSource = "TopicMessageHandler.cpp"
	ParamHandlerSource = "ParamMessageHandler.cpp"

	// protocolVersionFieldNum is the extension number registered for the
	// protocol version option. Changing it breaks fingerprint agreement
	// with deployed firmware.
	protocolVersionFieldNum = 1010
)

// Generator drives one compilation: it owns the wire schema scope, the
// shared communication message and the two generated C++ files, and grows
// all of them as topics and parameters are added.
type Generator struct {
	log      *logrus.Logger
	cfg      *config.Config
	provider rosmsg.Provider

	scope     *proto.Scope
	commMsg   *proto.Message
	commOneof *proto.Oneof

	protocolVersion *proto.Option
	nanopbMsgid     *proto.Option

	topicFile    *codegen.File
	topicHandler *codegen.TopicHandler
	paramFile    *codegen.File
	paramHandler *codegen.ParamHandler

	// next free number in the comm_msg oneof; 1 and 2 are pinned to the
	// connect and ack fields for cross-version compatibility
	nextMsgIdx  int
	compiled    map[string]*converted
	msgPackages []string

	paramsAdded    bool
	paramMsg       *proto.Message
	paramOneof     *proto.Oneof
	paramEnum      *proto.Enum
	paramNextIdx   int
	paramArrayMsgs map[*proto.Scalar]*proto.Message
}

// New creates a generator for the given configuration, resolving message
// definitions through provider. includePath is the bridge header include
// emitted into both generated sources.
func New(cfg *config.Config, provider rosmsg.Provider, log *logrus.Logger, includePath string) (*Generator, error) {
	scope, err := proto.NewScope(WirePackage)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		log:        log,
		cfg:        cfg,
		provider:   provider,
		scope:      scope,
		nextMsgIdx: 3,
		compiled:   make(map[string]*converted),
	}

	// the connect and ack field numbers and types must never change, they
	// are what lets mismatched builds detect each other
	if g.commMsg, err = scope.NewMessage("comm_msg"); err != nil {
		return nil, err
	}
	if g.commOneof, err = g.commMsg.NewOneof("msg"); err != nil {
		return nil, err
	}
	connect, err := proto.NewField(proto.Fixed32, "connect_ver", 1, proto.CardinalityNone)
	if err != nil {
		return nil, err
	}
	if err := g.commOneof.AddField(connect); err != nil {
		return nil, err
	}
	ack, err := proto.NewField(proto.UInt32, "ack", 2, proto.CardinalityNone)
	if err != nil {
		return nil, err
	}
	if err := g.commMsg.AddField(ack); err != nil {
		return nil, err
	}

	// the fingerprint is carried as a custom message option so the host
	// can read it from the descriptor; nanopb needs its own msgid option
	// since it does not copy arbitrary options into generated code
	scope.AddImport("google/protobuf/descriptor.proto")
	ext, err := scope.NewExtension("google.protobuf.MessageOptions")
	if err != nil {
		return nil, err
	}
	verField, err := proto.NewField(proto.Fixed32, "protocol_version", protocolVersionFieldNum, proto.CardinalityNone)
	if err != nil {
		return nil, err
	}
	if err := ext.AddField(verField); err != nil {
		return nil, err
	}
	if g.protocolVersion, err = proto.NewOption("(protocol_version)", int64(0)); err != nil {
		return nil, err
	}
	if err := g.commMsg.AddOption(g.protocolVersion); err != nil {
		return nil, err
	}
	if g.nanopbMsgid, err = proto.NewOption("(nanopb).msgid", int64(0)); err != nil {
		return nil, err
	}
	if err := g.commMsg.AddOption(g.nanopbMsgid); err != nil {
		return nil, err
	}

	g.topicFile = codegen.NewFile(CppNamespace)
	g.topicHandler = codegen.NewTopicHandler(g.commMsg.Path(), "msg", "ack", cfg.Targets)
	g.paramFile = codegen.NewFile(CppNamespace)
	g.paramHandler = codegen.NewParamHandler(g.commMsg.Path(), "msg", "ack")
	for _, f := range []*codegen.File{g.topicFile, g.paramFile} {
		f.AddInclude(includePath, false)
		f.AddInclude("protobridge.pb.h", false)
		f.AddInclude("rclcpp/rclcpp.hpp", true)
	}
	g.topicFile.SetHandler(g.topicHandler)
	g.paramFile.SetHandler(g.paramHandler)

	return g, nil
}

// AddTopic compiles the topic's message type, adds it to the comm_msg
// oneof and wires the publisher and subscriber sides requested by the
// declaration.
func (g *Generator) AddTopic(topic *config.TopicDecl) error {
	entry, err := g.compileMessage(topic.Type)
	if err != nil {
		return err
	}

	fieldName := strings.ReplaceAll(strings.ToLower(topic.Name), "/", "_")
	f, err := proto.NewField(entry.msg, fieldName, g.nextMsgIdx, proto.CardinalityNone)
	if err != nil {
		return err
	}
	if err := g.commOneof.AddField(f); err != nil {
		return err
	}
	g.nextMsgIdx++

	if len(topic.Publishers) > 0 {
		g.topicHandler.AddPublisher(fieldName, topic, entry.conv)
		g.topicFile.MarkDecodeUsed(entry.conv)
	}
	if len(topic.Subscribers) > 0 {
		g.topicHandler.AddSubscriber(fieldName, topic, entry.conv)
		g.topicFile.MarkEncodeUsed(entry.conv)
	}
	return nil
}

// AddParameter declares one bridged parameter, creating the shared
// parameter machinery on first use.
func (g *Generator) AddParameter(param *config.ParamDecl) error {
	if !g.paramsAdded {
		if err := g.enableParameters(); err != nil {
			return err
		}
	}

	info, ok := codegen.LookupParamType(param.Kind)
	if !ok {
		return fmt.Errorf("%w: parameter %q has kind %q", config.ErrConfig, param.Name, param.Kind)
	}

	var fieldType proto.Type
	var opts []*proto.Option
	if info.Repeated {
		// oneofs cannot hold repeated fields directly, wrap the entries in
		// a per-scalar submessage shared between parameters
		msg, err := g.paramArraySubmsg(info.Scalar)
		if err != nil {
			return err
		}
		fieldType = msg
	} else {
		fieldType = info.Scalar
		if info.Scalar == proto.String || info.Scalar == proto.Bytes {
			ptr, err := proto.NewOption("(nanopb).type", "FT_POINTER")
			if err != nil {
				return err
			}
			opts = append(opts, ptr)
		}
	}

	f, err := proto.NewField(fieldType, param.Name, g.paramNextIdx, proto.CardinalityNone, opts...)
	if err != nil {
		return err
	}
	if err := g.paramOneof.AddField(f); err != nil {
		return err
	}

	// the request enum reuses field number minus one, giving the required
	// zero value to the first parameter
	enumName := "PARAM_" + strings.ToUpper(param.Name)
	if err := g.paramEnum.AddValue(enumName, int64(g.paramNextIdx-1)); err != nil {
		return err
	}
	g.paramNextIdx++

	return g.paramHandler.AddParameter(param.Name, param.Kind, param.Name, enumName)
}

// enableParameters creates the parameter update message, the request enum
// and their comm_msg oneof entries.
func (g *Generator) enableParameters() error {
	var err error
	if g.paramMsg, err = g.scope.NewMessage("param_update_msg"); err != nil {
		return err
	}
	if g.paramOneof, err = g.paramMsg.NewOneof("param"); err != nil {
		return err
	}
	g.paramNextIdx = 1
	g.paramArrayMsgs = make(map[*proto.Scalar]*proto.Message)

	update, err := proto.NewField(g.paramMsg, "param_update", g.nextMsgIdx, proto.CardinalityNone)
	if err != nil {
		return err
	}
	if err := g.commOneof.AddField(update); err != nil {
		return err
	}
	g.nextMsgIdx++

	if g.paramEnum, err = g.commMsg.NewEnum("param_name_enum"); err != nil {
		return err
	}
	request, err := proto.NewField(g.paramEnum, "param_request", g.nextMsgIdx, proto.CardinalityNone)
	if err != nil {
		return err
	}
	if err := g.commOneof.AddField(request); err != nil {
		return err
	}
	g.nextMsgIdx++

	g.paramHandler.EnableParameterSupport("param_update", "param_request", g.paramEnum.Path())
	g.paramsAdded = true
	return nil
}

// paramArraySubmsg returns the shared repeated-value wrapper message for a
// scalar kind, creating it on first use.
func (g *Generator) paramArraySubmsg(scalar *proto.Scalar) (*proto.Message, error) {
	if msg, ok := g.paramArrayMsgs[scalar]; ok {
		return msg, nil
	}
	msg, err := g.paramMsg.NewMessage("param_" + scalar.TypeName() + "_array")
	if err != nil {
		return nil, err
	}
	ptr, err := proto.NewOption("(nanopb).type", "FT_POINTER")
	if err != nil {
		return nil, err
	}
	entry, err := proto.NewField(scalar, "entry", 1, proto.CardinalityRepeated, ptr)
	if err != nil {
		return nil, err
	}
	if err := msg.AddField(entry); err != nil {
		return nil, err
	}
	g.paramArrayMsgs[scalar] = msg
	return msg, nil
}

// MessagePackages returns the ROS packages referenced so far, in first-use
// order.
func (g *Generator) MessagePackages() []string { return g.msgPackages }

// WriteProto emits the wire schema, refreshing the fingerprint first.
func (g *Generator) WriteProto(w io.Writer) error {
	if err := g.fingerprint(); err != nil {
		return err
	}
	return g.scope.WriteProto(w)
}

// WriteOptions emits the nanopb option sidecar, refreshing the fingerprint
// first.
func (g *Generator) WriteOptions(w io.Writer) error {
	if err := g.fingerprint(); err != nil {
		return err
	}
	return g.scope.WriteOptions(w)
}

// WriteTopicHandler emits the topic dispatcher source.
func (g *Generator) WriteTopicHandler(w io.Writer) error {
	return g.topicFile.WriteTo(w)
}

// WriteParamHandler emits the parameter handler source.
func (g *Generator) WriteParamHandler(w io.Writer) error {
	return g.paramFile.WriteTo(w)
}

// WriteCMake emits the build snippet registering the generated sources and
// message package dependencies on target.
func (g *Generator) WriteCMake(w io.Writer, target string) error {
	return codegen.WriteCMake(w, target, g.msgPackages,
		[]string{TopicHandlerSource, ParamHandlerSource})
}
