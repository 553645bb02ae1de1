package codegen

import (
	"fmt"
	"strings"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
	"github.com/osu-uwrt/riptide-fw-bridge/pkg/cpp"
)

// TargetEnumName returns the C++ enumerator for a bridge target name.
func TargetEnumName(target string) string {
	return "TARGET_" + strings.ToUpper(target)
}

// TopicHandler generates the TopicMessageHandler class: one publisher or
// subscriber per bridged topic, routing incoming wire messages by oneof
// case and forwarding ROS messages back over the link.
type TopicHandler struct {
	targets     []string
	commMsgType string
	oneofName   string
	ackField    string

	constructor []cpp.Stmt
	switchCases cpp.CaseList
	privateCtx  [][]cpp.Stmt
}

// NewTopicHandler creates a handler routing the given oneof of the shared
// communication message for the given targets.
func NewTopicHandler(commMsgType []string, oneofName, ackField string, targets []string) *TopicHandler {
	return &TopicHandler{
		targets:     targets,
		commMsgType: strings.Join(commMsgType, "::"),
		oneofName:   oneofName,
		ackField:    ackField,
	}
}

// targetGuard wraps stmt in a target check unless every configured target
// uses the topic.
func (h *TopicHandler) targetGuard(users []string, stmt cpp.Stmt) []cpp.Stmt {
	if len(users) == len(h.targets) {
		return []cpp.Stmt{stmt}
	}
	checks := make([]string, len(users))
	for i, user := range users {
		checks[i] = "target == " + TargetEnumName(user)
	}
	return []cpp.Stmt{
		cpp.Linef("if (%s)", strings.Join(checks, " || ")),
		cpp.Block{stmt},
	}
}

// AddPublisher wires a topic published on the ROS side: messages arriving
// over the link on the oneof field are decoded and published.
func (h *TopicHandler) AddPublisher(fieldName string, topic *config.TopicDecl, conv *Conversion) {
	pubVar := fmt.Sprintf("pub_%s_", fieldName)
	pubFunc := fmt.Sprintf("publish_%s", fieldName)

	// the publish function lives outside the switch since a case label
	// cannot open with a declaration
	h.privateCtx = append(h.privateCtx, []cpp.Stmt{
		cpp.Linef("rclcpp::Publisher<%s>::SharedPtr %s;", conv.rosType, pubVar),
		cpp.Linef("bool %s(const %s& proto_msg)", pubFunc, conv.protoType),
		cpp.Block{
			cpp.Linef("if (%s == nullptr)", pubVar),
			cpp.Block{cpp.Line("return false;")},
			cpp.Linef("%s ros_msg;", conv.rosType),
			cpp.Linef("%s(ros_msg, proto_msg);", conv.decodeName),
			cpp.Linef("%s->publish(ros_msg);", pubVar),
			cpp.Line("return true;"),
		},
	})

	h.switchCases = append(h.switchCases, cpp.Case{
		Label: fmt.Sprintf("case %s::%s", h.commMsgType, cpp.OneofCaseName(fieldName)),
		Body:  []cpp.Stmt{cpp.Linef("return %s(msg.%s());", pubFunc, fieldName)},
	})

	init := cpp.Linef("%s = node.create_publisher<%s>(%s, %s);",
		pubVar, conv.rosType, cpp.EscapeString(topic.Name), topic.QOS.RclcppExpr())
	h.constructor = append(h.constructor, h.targetGuard(topic.Publishers, init)...)
}

// AddSubscriber wires a topic subscribed on the ROS side: received ROS
// messages are encoded and broadcast over the link. Messages that fail to
// encode are logged and dropped.
func (h *TopicHandler) AddSubscriber(fieldName string, topic *config.TopicDecl, conv *Conversion) {
	subVar := fmt.Sprintf("sub_%s_", fieldName)
	subFunc := fmt.Sprintf("callback_%s", fieldName)

	h.privateCtx = append(h.privateCtx, []cpp.Stmt{
		cpp.Linef("rclcpp::Subscription<%s>::SharedPtr %s;", conv.rosType, subVar),
		cpp.Linef("void %s(const %s::SharedPtr ros_msg)", subFunc, conv.rosType),
		cpp.Block{
			cpp.Line("try"),
			cpp.Block{
				cpp.Linef("%s proto_msg;", h.commMsgType),
				cpp.Linef("proto_msg.clear_%s();", h.ackField),
				cpp.Linef("%s(*ros_msg, *proto_msg.mutable_%s());", conv.encodeName, fieldName),
				cpp.Line("sendResponse(0, proto_msg);"),
			},
			cpp.Line("catch (MsgConversionError &e)"),
			cpp.Block{
				cpp.Linef("RCLCPP_WARN(logger_, \"Unable to encode message on topic '%%s' - %%s\", %s, e.what());",
					cpp.EscapeString(topic.Name)),
			},
		},
	})

	init := cpp.Linef("%s = node.create_subscription<%s>(%s,%s, std::bind(&TopicMessageHandler::%s, this, std::placeholders::_1));",
		subVar, conv.rosType, cpp.EscapeString(topic.Name), topic.QOS.RclcppExpr(), subFunc)
	h.constructor = append(h.constructor, h.targetGuard(topic.Subscribers, init)...)
}

func (h *TopicHandler) writeClass(b *strings.Builder) error {
	b.WriteString("class TopicMessageHandler: public MessageHandlerItf {\n")
	b.WriteString("public:\n")

	// the enum needs a trailing semicolon, so it is written by hand
	indent := strings.Repeat(" ", cpp.IndentWidth)
	b.WriteString(indent + "enum TargetType {\n")
	for _, target := range h.targets {
		b.WriteString(indent + indent + TargetEnumName(target) + ",\n")
	}
	b.WriteString(indent + "};\n\n")

	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Line("static const std::unordered_map<std::string, TargetType> targetStrMap;"),
	}, cpp.IndentWidth))
	b.WriteString("\n")

	ctorBody := []cpp.Stmt{
		cpp.Line("auto targetEntry = targetStrMap.find(targetStr);"),
		cpp.Line("if (targetEntry == targetStrMap.end())"),
		cpp.Block{cpp.Line(`throw std::runtime_error("Invalid target specified: " + targetStr);`)},
		cpp.Line("TargetType target = targetEntry->second;"),
	}
	ctorBody = append(ctorBody, h.constructor...)
	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Line("TopicMessageHandler(rclcpp::Node& node, RosProtobufBridge &bridge, std::string targetStr): MessageHandlerItf(bridge), logger_(node.get_logger())"),
		cpp.Block(ctorBody),
	}, cpp.IndentWidth))
	b.WriteString("\n")

	cases := append(cpp.CaseList{}, h.switchCases...)
	cases = append(cases, cpp.Case{Label: "default", Body: []cpp.Stmt{cpp.Line("return false;")}})
	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Linef("bool processMessage(int clientId, const %s &msg) override", h.commMsgType),
		cpp.Block{
			// topic traffic is broadcast, the client id is unused
			cpp.Line("(void) clientId;"),
			cpp.Linef("switch (msg.%s_case())", h.oneofName),
			cpp.Block{cases},
		},
	}, cpp.IndentWidth))
	b.WriteString("\n")

	b.WriteString("private:\n")
	b.WriteString(cpp.Render([]cpp.Stmt{cpp.Line("rclcpp::Logger logger_;")}, cpp.IndentWidth))
	for _, entry := range h.privateCtx {
		b.WriteString("\n")
		b.WriteString(cpp.Render(entry, cpp.IndentWidth))
	}
	b.WriteString("};\n\n")

	b.WriteString("const std::unordered_map<std::string, TopicMessageHandler::TargetType> TopicMessageHandler::targetStrMap = {\n")
	for _, target := range h.targets {
		b.WriteString(fmt.Sprintf("%s{%s, TopicMessageHandler::%s},\n",
			indent, cpp.EscapeString(target), TargetEnumName(target)))
	}
	b.WriteString("};\n\n")

	b.WriteString(cpp.Render([]cpp.Stmt{
		cpp.Line("std::shared_ptr<MessageHandlerItf> createTopicHandler(rclcpp::Node& node, RosProtobufBridge &bridge, std::string target)"),
		cpp.Block{cpp.Line("return std::dynamic_pointer_cast<MessageHandlerItf>(std::make_shared<TopicMessageHandler>(node, bridge, target));")},
	}, 0))
	return nil
}
