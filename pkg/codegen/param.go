package codegen

import (
	"fmt"
	"strings"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/cpp"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/proto"
)

// ParamTypeInfo describes how one ROS parameter kind maps to the wire
// schema and to C++ on the bridge side.
type ParamTypeInfo struct {
	Scalar   *proto.Scalar // wire scalar for the parameter value
	Repeated bool          // value goes through a shared array submessage
	CppType  string        // cached variable type
	Accessor string        // rclcpp::Parameter accessor method
}

var paramTypes = map[config.ParamKind]ParamTypeInfo{
	config.ParamBool:         {proto.Bool, false, "bool", "as_bool"},
	config.ParamInteger:      {proto.SInt64, false, "int64_t", "as_int"},
	config.ParamDouble:       {proto.Double, false, "double", "as_double"},
	config.ParamString:       {proto.String, false, "std::string", "as_string"},
	config.ParamByteArray:    {proto.Bytes, false, "std::vector<uint8_t>", "as_byte_array"},
	config.ParamBoolArray:    {proto.Bool, true, "std::vector<bool>", "as_bool_array"},
	config.ParamIntegerArray: {proto.SInt64, true, "std::vector<int64_t>", "as_integer_array"},
	config.ParamDoubleArray:  {proto.Double, true, "std::vector<double>", "as_double_array"},
	config.ParamStringArray:  {proto.String, true, "std::vector<std::string>", "as_string_array"},
}

// LookupParamType returns the mapping for a parameter kind.
func LookupParamType(kind config.ParamKind) (ParamTypeInfo, bool) {
	info, ok := paramTypes[kind]
	return info, ok
}

// cachedToProto emits statements copying the cached parameter value into
// the parameter update submessage held in protoVar.
func cachedToProto(protoVar, fieldName, cachedVar string, info ParamTypeInfo) []cpp.Stmt {
	if info.Scalar == proto.Bytes {
		return []cpp.Stmt{cpp.Linef("%s->set_%s(std::string(%s.begin(), %s.end()));",
			protoVar, fieldName, cachedVar, cachedVar)}
	}
	if info.Repeated {
		return []cpp.Stmt{
			cpp.Linef("auto array_submsg = %s->mutable_%s();", protoVar, fieldName),
			cpp.Linef("for (const auto &entry : %s)", cachedVar),
			cpp.Block{cpp.Line("array_submsg->add_entry(entry);")},
		}
	}
	return []cpp.Stmt{cpp.Linef("%s->set_%s(%s);", protoVar, fieldName, cachedVar)}
}

// ParamHandler generates the ParamMessageHandler class. Parameter values
// are cached under a mutex, read requests answer from the cache, and later
// updates broadcast only for parameters that have been requested at least
// once.
type ParamHandler struct {
	commMsgType string
	oneofName   string
	ackField    string

	enabled     bool
	updateField string
	reqField    string
	reqEnumType string

	constructor []cpp.Stmt
	paramCtx    []cpp.Stmt
	reqCases    cpp.CaseList
}

// NewParamHandler creates a handler for the shared communication message.
func NewParamHandler(commMsgType []string, oneofName, ackField string) *ParamHandler {
	return &ParamHandler{
		commMsgType: strings.Join(commMsgType, "::"),
		oneofName:   oneofName,
		ackField:    ackField,
	}
}

// EnableParameterSupport adds the shared parameter machinery. Must be
// called before AddParameter.
func (h *ParamHandler) EnableParameterSupport(updateField, reqField string, reqEnumPath []string) {
	h.updateField = updateField
	h.reqField = reqField
	h.reqEnumType = strings.Join(reqEnumPath, "::")
	h.paramCtx = []cpp.Stmt{
		cpp.Line("std::mutex param_mutex_;"),
		cpp.Line("std::shared_ptr<rclcpp::ParameterEventHandler> param_subscriber_;"),
	}
	h.constructor = append(h.constructor,
		cpp.Line("param_subscriber_ = std::make_shared<rclcpp::ParameterEventHandler>(&node);"))
	h.enabled = true
}

// AddParameter wires one declared parameter: a cached value updated by a
// parameter callback, and a case answering read requests from the cache.
func (h *ParamHandler) AddParameter(name string, kind config.ParamKind, fieldName, enumValueName string) error {
	if !h.enabled {
		return fmt.Errorf("%w: parameter %q", ErrParametersNotEnabled, name)
	}
	info, ok := paramTypes[kind]
	if !ok {
		return fmt.Errorf("unknown parameter kind %q for %q", kind, name)
	}

	cbHandle := fmt.Sprintf("param_%s_cb_handle_", name)
	cachedVar := fmt.Sprintf("param_%s_val_", name)
	requestedVar := fmt.Sprintf("param_%s_requested_", name)

	h.paramCtx = append(h.paramCtx,
		cpp.Linef("rclcpp::ParameterCallbackHandle::SharedPtr %s;", cbHandle),
		cpp.Linef("%s %s;", info.CppType, cachedVar),
		cpp.Linef("bool %s = false;", requestedVar),
	)

	// updates are cached and broadcast under the lock so a concurrent read
	// request cannot observe a half-applied value
	broadcast := append(cachedToProto("param_update", fieldName, cachedVar, info),
		cpp.Line("sendResponse(0, update_msg);"))
	h.constructor = append(h.constructor,
		cpp.Linef("node.declare_parameter(%s, rclcpp::%s);", cpp.EscapeString(name), string(kind)),
		cpp.Linef("%s = param_subscriber_->add_parameter_callback(%s, [this](const rclcpp::Parameter & p)",
			cbHandle, cpp.EscapeString(name)),
		cpp.Block{
			cpp.Linef("%s update_msg;", h.commMsgType),
			cpp.Linef("update_msg.clear_%s();", h.ackField),
			cpp.Linef("auto param_update = update_msg.mutable_%s();", h.updateField),
			cpp.Line("std::scoped_lock lock{param_mutex_};"),
			cpp.Linef("%s = p.%s();", cachedVar, info.Accessor),
			cpp.Linef("if (%s)", requestedVar),
			cpp.Block(broadcast),
		},
		cpp.Line(");"),
		cpp.Linef("%s = node.get_parameter(%s).%s();", cachedVar, cpp.EscapeString(name), info.Accessor),
	)

	caseBody := append(cachedToProto("param_update", fieldName, cachedVar, info),
		cpp.Linef("%s = true;", requestedVar),
		cpp.Line("break;"),
	)
	h.reqCases = append(h.reqCases, cpp.Case{
		Label: fmt.Sprintf("case %s::%s", h.reqEnumType, enumValueName),
		Body:  caseBody,
	})
	return nil
}

func (h *ParamHandler) writeClass(b *strings.Builder) error {
	b.WriteString("class ParamMessageHandler: public MessageHandlerItf {\n")
	b.WriteString("public:\n")

	ctorBody := h.constructor
	if !h.enabled {
		ctorBody = []cpp.Stmt{cpp.Line("(void) node;")}
	}
	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Line("ParamMessageHandler(rclcpp::Node& node, RosProtobufBridge &bridge): MessageHandlerItf(bridge), logger_(node.get_logger())"),
		cpp.Block(ctorBody),
	}, cpp.IndentWidth))
	b.WriteString("\n")

	var processBody cpp.Block
	if h.enabled {
		processBody = cpp.Block{
			cpp.Linef("if (msg.%s_case() == %s::%s)", h.oneofName, h.commMsgType, cpp.OneofCaseName(h.reqField)),
			cpp.Block{
				cpp.Line("processParamReq(clientId, msg);"),
				cpp.Line("return true;"),
			},
			cpp.Line("else"),
			cpp.Block{cpp.Line("return false;")},
		}
	} else {
		processBody = cpp.Block{
			cpp.Line("(void) msg;"),
			cpp.Line("(void) clientId;"),
			cpp.Line("return false;"),
		}
	}
	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Linef("bool processMessage(int clientId, const %s &msg) override", h.commMsgType),
		processBody,
	}, cpp.IndentWidth))
	b.WriteString("\n")

	b.WriteString("private:\n")
	b.WriteString(cpp.Render([]cpp.Stmt{cpp.Line("rclcpp::Logger logger_;")}, cpp.IndentWidth))
	if h.enabled {
		b.WriteString("\n")
		b.WriteString(cpp.Render(h.paramCtx, cpp.IndentWidth))

		cases := append(cpp.CaseList{}, h.reqCases...)
		cases = append(cases, cpp.Case{
			Label: "default",
			Body: []cpp.Stmt{
				cpp.Linef("RCLCPP_WARN(logger_, \"Client %%d sent unexpected parameter request for param %%d\", clientId, req_msg.%s());", h.reqField),
				cpp.Line("return;"),
			},
		})
		b.WriteString("\n")
		b.WriteString(cpp.Render([]cpp.Stmt{
			cpp.Linef("void processParamReq(int clientId, const %s &req_msg)", h.commMsgType),
			cpp.Block{
				cpp.Linef("%s resp_msg;", h.commMsgType),
				cpp.Linef("resp_msg.set_%s(req_msg.%s());", h.ackField, h.ackField),
				cpp.Linef("auto param_update = resp_msg.mutable_%s();", h.updateField),
				// answer from the cache under the same lock the update
				// callback takes
				cpp.Line("std::scoped_lock lock{param_mutex_};"),
				cpp.Linef("switch (req_msg.%s())", h.reqField),
				cpp.Block{cases},
				cpp.Line("sendResponse(clientId, resp_msg);"),
			},
		}, cpp.IndentWidth))
	}
	b.WriteString("};\n\n")

	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Line("std::shared_ptr<MessageHandlerItf> createParamHandler(rclcpp::Node& node, RosProtobufBridge &bridge)"),
		cpp.Block{cpp.Line("return std::dynamic_pointer_cast<MessageHandlerItf>(std::make_shared<ParamMessageHandler>(node, bridge));")},
	}, 0))
	return nil
}
