package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/config"
)

func renderConversion(t *testing.T, c *Conversion, decode, encode bool) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.render(&b, decode, encode))
	return b.String()
}

func TestConversionNames(t *testing.T) {
	c := NewConversion("geometry_msgs/msg/Vector3", []string{"titan_pb", "geometry_msgs", "Vector3"})
	assert.Equal(t, "convert_to_geometry_msgs__msg__Vector3", c.DecodeName())
	assert.Equal(t, "convert_from_geometry_msgs__msg__Vector3", c.EncodeName())
	assert.Equal(t, "geometry_msgs::msg::Vector3", c.RosType())
	assert.Equal(t, "titan_pb::geometry_msgs::Vector3", c.ProtoType())
}

func TestConversionScalarNarrowing(t *testing.T) {
	t.Run("unsigned", func(t *testing.T) {
		c := NewConversion("std_msgs/msg/Char", []string{"titan_pb", "std_msgs", "Char"})
		require.NoError(t, c.AddScalar("data", "uint8_t", "data", "uint32_t"))
		out := renderConversion(t, c, true, true)
		assert.Contains(t, out, "uint32_t data = proto_msg.data();")
		assert.Contains(t, out, "if (data > UINT8_MAX)")
		assert.Contains(t, out, `throw MsgConversionError("std_msgs/msg/Char", "data", "Integer out of range");`)
		assert.Contains(t, out, "proto_msg.set_data(ros_msg.data);")
	})

	t.Run("signed checks both bounds", func(t *testing.T) {
		c := NewConversion("std_msgs/msg/Byte", []string{"titan_pb", "std_msgs", "Byte"})
		require.NoError(t, c.AddScalar("data", "int8_t", "data", "int32_t"))
		out := renderConversion(t, c, true, false)
		assert.Contains(t, out, "if (data > INT8_MAX || data < INT8_MIN)")
	})

	t.Run("same width copies directly", func(t *testing.T) {
		c := NewConversion("std_msgs/msg/Float64", []string{"titan_pb", "std_msgs", "Float64"})
		require.NoError(t, c.AddScalar("data", "double", "data", "double"))
		out := renderConversion(t, c, true, false)
		assert.Contains(t, out, "ros_msg.data = proto_msg.data();")
		assert.NotContains(t, out, "throw")
	})

	t.Run("signedness mismatch rejected", func(t *testing.T) {
		c := NewConversion("std_msgs/msg/Bad", []string{"titan_pb", "std_msgs", "Bad"})
		err := c.AddScalar("data", "int8_t", "data", "uint32_t")
		assert.ErrorIs(t, err, ErrSignednessMismatch)
	})
}

func TestConversionBoundedString(t *testing.T) {
	c := NewConversion("test_msgs/msg/Name", []string{"titan_pb", "test_msgs", "Name"})
	c.AddBoundedString("name", "name", 32)
	out := renderConversion(t, c, true, true)
	assert.Contains(t, out, "if (proto_msg.name().size() > 32)")
	assert.Contains(t, out, "if (ros_msg.name.size() > 32)")
	assert.Contains(t, out, `"Bounded string too large"`)
}

func TestConversionArrayCounts(t *testing.T) {
	t.Run("fixed size must match exactly", func(t *testing.T) {
		c := NewConversion("test_msgs/msg/Quad", []string{"titan_pb", "test_msgs", "Quad"})
		require.NoError(t, c.AddArrayScalar("vals", "int32_t", "vals", "int32_t",
			ArrayBounds{Max: 4, HasMax: true, Fixed: true}))
		out := renderConversion(t, c, true, true)
		assert.Contains(t, out, "if (proto_msg.vals_size() != 4)")
		assert.Contains(t, out, "if (ros_msg.vals.size() != 4)")
		assert.Contains(t, out, "ros_msg.vals.at(i) = proto_msg.vals(i);")
		assert.NotContains(t, out, "ros_msg.vals.clear();")
	})

	t.Run("bounded size checks upper bound", func(t *testing.T) {
		c := NewConversion("test_msgs/msg/Bounded", []string{"titan_pb", "test_msgs", "Bounded"})
		require.NoError(t, c.AddArrayScalar("vals", "int32_t", "vals", "int32_t",
			ArrayBounds{Max: 8, HasMax: true}))
		out := renderConversion(t, c, true, true)
		assert.Contains(t, out, "if (proto_msg.vals_size() > 8)")
		assert.Contains(t, out, "if (ros_msg.vals.size() > 8)")
		assert.Contains(t, out, "ros_msg.vals.clear();")
		assert.Contains(t, out, "ros_msg.vals.push_back(proto_msg.vals(i));")
	})

	t.Run("unbounded has no count check", func(t *testing.T) {
		c := NewConversion("test_msgs/msg/Seq", []string{"titan_pb", "test_msgs", "Seq"})
		require.NoError(t, c.AddArrayScalar("vals", "int64_t", "vals", "int64_t", ArrayBounds{}))
		out := renderConversion(t, c, true, true)
		assert.NotContains(t, out, "Invalid Array Size")
	})
}

func TestConversionArrayNarrowing(t *testing.T) {
	c := NewConversion("test_msgs/msg/Shorts", []string{"titan_pb", "test_msgs", "Shorts"})
	require.NoError(t, c.AddArrayScalar("vals", "int16_t", "vals", "int32_t",
		ArrayBounds{Max: 2, HasMax: true}))
	out := renderConversion(t, c, true, false)
	assert.Contains(t, out, "int32_t vals = proto_msg.vals(i);")
	assert.Contains(t, out, "if (vals > INT16_MAX || vals < INT16_MIN)")
	assert.Contains(t, out, "ros_msg.vals.push_back(vals);")
}

func TestConversionBytes(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		c := NewConversion("test_msgs/msg/Mac", []string{"titan_pb", "test_msgs", "Mac"})
		c.AddBytes("addr", "addr", ArrayBounds{Max: 6, HasMax: true, Fixed: true})
		out := renderConversion(t, c, true, true)
		assert.Contains(t, out, "if (addr.size() != 6)")
		assert.Contains(t, out, "std::copy(addr.begin(), addr.end(), ros_msg.addr.begin());")
		assert.Contains(t, out, "if (ros_msg.addr.size() != 6)")
		assert.Contains(t, out, "std::string addr(ros_msg.addr.begin(), ros_msg.addr.end());")
		assert.Contains(t, out, "proto_msg.set_addr(addr);")
	})

	t.Run("unbounded", func(t *testing.T) {
		c := NewConversion("test_msgs/msg/Blob", []string{"titan_pb", "test_msgs", "Blob"})
		c.AddBytes("data", "data", ArrayBounds{})
		out := renderConversion(t, c, true, true)
		assert.NotContains(t, out, "Invalid Array Size")
		assert.Contains(t, out, "ros_msg.data.assign(data.begin(), data.end());")
	})
}

func TestConversionEmptyBody(t *testing.T) {
	c := NewConversion("std_msgs/msg/Empty", []string{"titan_pb", "std_msgs", "Empty"})
	out := renderConversion(t, c, true, true)
	assert.Contains(t, out, "(void) ros_msg;")
	assert.Contains(t, out, "(void) proto_msg;")
}

func TestConversionOnlyUsedDirectionRendered(t *testing.T) {
	c := NewConversion("test_msgs/msg/OneWay", []string{"titan_pb", "test_msgs", "OneWay"})
	require.NoError(t, c.AddScalar("v", "uint32_t", "v", "uint32_t"))

	decodeOnly := renderConversion(t, c, true, false)
	assert.Contains(t, decodeOnly, "convert_to_test_msgs__msg__OneWay")
	assert.NotContains(t, decodeOnly, "convert_from_test_msgs__msg__OneWay")

	encodeOnly := renderConversion(t, c, false, true)
	assert.Contains(t, encodeOnly, "convert_from_test_msgs__msg__OneWay")
	assert.NotContains(t, encodeOnly, "convert_to_test_msgs__msg__OneWay")
}

func TestFileReachability(t *testing.T) {
	t.Run("unreachable conversion fails", func(t *testing.T) {
		f := NewFile("RosProtobufBridge")
		f.AddConversion(NewConversion("test_msgs/msg/Orphan", []string{"titan_pb", "test_msgs", "Orphan"}))
		err := f.WriteTo(&strings.Builder{})
		assert.ErrorIs(t, err, ErrUnreachableCodec)
	})

	t.Run("nested dependency inherits direction", func(t *testing.T) {
		child := NewConversion("geometry_msgs/msg/Vector3", []string{"titan_pb", "geometry_msgs", "Vector3"})
		require.NoError(t, child.AddScalar("x", "double", "x", "double"))
		parent := NewConversion("geometry_msgs/msg/Twist", []string{"titan_pb", "geometry_msgs", "Twist"})
		parent.AddNested("linear", "linear", child)

		f := NewFile("RosProtobufBridge")
		f.AddConversion(child)
		f.AddConversion(parent)
		f.MarkDecodeUsed(parent)

		var b strings.Builder
		require.NoError(t, f.WriteTo(&b))
		out := b.String()
		assert.Contains(t, out, "convert_to_geometry_msgs__msg__Vector3")
		assert.NotContains(t, out, "convert_from_geometry_msgs__msg__Vector3")
		assert.Contains(t, out, "convert_to_geometry_msgs__msg__Twist(")
	})
}

func TestFileLayout(t *testing.T) {
	c := NewConversion("std_msgs/msg/Empty", []string{"titan_pb", "std_msgs", "Empty"})
	f := NewFile("RosProtobufBridge")
	f.AddInclude("riptide_fw_bridge/RosProtobufBridge.hpp", false)
	f.AddInclude("rclcpp/rclcpp.hpp", true)
	f.AddInclude("rclcpp/rclcpp.hpp", true) // dropped
	f.AddConversion(c)
	f.MarkDecodeUsed(c)

	var b strings.Builder
	require.NoError(t, f.WriteTo(&b))
	out := b.String()
	assert.Equal(t, 1, strings.Count(out, "#include <rclcpp/rclcpp.hpp>"))
	assert.Contains(t, out, `#include "riptide_fw_bridge/RosProtobufBridge.hpp"`)
	assert.Contains(t, out, "namespace RosProtobufBridge {")
	assert.Contains(t, out, "} // end namespace RosProtobufBridge")
	assert.True(t, strings.Index(out, "#include") < strings.Index(out, "namespace"))
}

func topicHandlerOutput(t *testing.T, h *TopicHandler) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, h.writeClass(&b))
	return b.String()
}

func TestTopicHandler(t *testing.T) {
	commMsg := []string{"titan_pb", "comm_msg"}
	conv := NewConversion("std_msgs/msg/Float32", []string{"titan_pb", "std_msgs", "Float32"})

	t.Run("publisher", func(t *testing.T) {
		h := NewTopicHandler(commMsg, "msg", "ack", []string{"talos", "puddles"})
		h.AddPublisher("depth", &config.TopicDecl{
			Name:       "depth",
			QOS:        config.QOSSensorData,
			Publishers: []string{"talos"},
		}, conv)
		out := topicHandlerOutput(t, h)

		assert.Contains(t, out, "TARGET_TALOS,")
		assert.Contains(t, out, "TARGET_PUDDLES,")
		assert.Contains(t, out, `{"talos", TopicMessageHandler::TARGET_TALOS},`)
		assert.Contains(t, out, "case titan_pb::comm_msg::kDepth:")
		assert.Contains(t, out, "return publish_depth(msg.depth());")
		assert.Contains(t, out, "rclcpp::Publisher<std_msgs::msg::Float32>::SharedPtr pub_depth_;")
		// only one of two targets publishes, creation is guarded
		assert.Contains(t, out, "if (target == TARGET_TALOS)")
		assert.Contains(t, out, `pub_depth_ = node.create_publisher<std_msgs::msg::Float32>("depth", rclcpp::SensorDataQoS());`)
		assert.Contains(t, out, "default:")
		assert.Contains(t, out, "createTopicHandler(rclcpp::Node& node, RosProtobufBridge &bridge, std::string target)")
	})

	t.Run("publisher on all targets is unguarded", func(t *testing.T) {
		h := NewTopicHandler(commMsg, "msg", "ack", []string{"talos"})
		h.AddPublisher("depth", &config.TopicDecl{
			Name:       "depth",
			QOS:        config.QOSSystemDefault,
			Publishers: []string{"talos"},
		}, conv)
		out := topicHandlerOutput(t, h)
		assert.NotContains(t, out, "if (target ==")
		assert.Contains(t, out, "rclcpp::SystemDefaultsQoS()")
	})

	t.Run("subscriber", func(t *testing.T) {
		h := NewTopicHandler(commMsg, "msg", "ack", []string{"talos"})
		h.AddSubscriber("state_odom", &config.TopicDecl{
			Name:        "state/odom",
			QOS:         config.QOSSystemDefault,
			Subscribers: []string{"talos"},
		}, conv)
		out := topicHandlerOutput(t, h)

		assert.Contains(t, out, "rclcpp::Subscription<std_msgs::msg::Float32>::SharedPtr sub_state_odom_;")
		assert.Contains(t, out, "void callback_state_odom(const std_msgs::msg::Float32::SharedPtr ros_msg)")
		assert.Contains(t, out, "proto_msg.clear_ack();")
		assert.Contains(t, out, "convert_from_std_msgs__msg__Float32(*ros_msg, *proto_msg.mutable_state_odom());")
		assert.Contains(t, out, "sendResponse(0, proto_msg);")
		assert.Contains(t, out, "catch (MsgConversionError &e)")
		assert.Contains(t, out, `RCLCPP_WARN(logger_, "Unable to encode message on topic '%s' - %s", "state/odom", e.what());`)
		assert.Contains(t, out, "std::bind(&TopicMessageHandler::callback_state_odom, this, std::placeholders::_1)")
	})
}

func paramHandlerOutput(t *testing.T, h *ParamHandler) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, h.writeClass(&b))
	return b.String()
}

func TestParamHandler(t *testing.T) {
	commMsg := []string{"titan_pb", "comm_msg"}
	enumPath := []string{"titan_pb", "comm_msg", "param_name_enum"}

	t.Run("disabled stubs out the handler", func(t *testing.T) {
		h := NewParamHandler(commMsg, "msg", "ack")
		out := paramHandlerOutput(t, h)
		assert.Contains(t, out, "(void) node;")
		assert.Contains(t, out, "return false;")
		assert.NotContains(t, out, "param_mutex_")
	})

	t.Run("add before enable fails", func(t *testing.T) {
		h := NewParamHandler(commMsg, "msg", "ack")
		err := h.AddParameter("max_depth", config.ParamDouble, "max_depth", "PARAM_MAX_DEPTH")
		assert.ErrorIs(t, err, ErrParametersNotEnabled)
	})

	t.Run("scalar parameter", func(t *testing.T) {
		h := NewParamHandler(commMsg, "msg", "ack")
		h.EnableParameterSupport("param_update", "param_request", enumPath)
		require.NoError(t, h.AddParameter("max_depth", config.ParamDouble, "max_depth", "PARAM_MAX_DEPTH"))
		out := paramHandlerOutput(t, h)

		assert.Contains(t, out, "std::mutex param_mutex_;")
		assert.Contains(t, out, `node.declare_parameter("max_depth", rclcpp::PARAMETER_DOUBLE);`)
		assert.Contains(t, out, "double param_max_depth_val_;")
		assert.Contains(t, out, "bool param_max_depth_requested_ = false;")
		assert.Contains(t, out, "param_max_depth_val_ = p.as_double();")
		assert.Contains(t, out, "if (param_max_depth_requested_)")
		assert.Contains(t, out, "param_update->set_max_depth(param_max_depth_val_);")
		assert.Contains(t, out, "case titan_pb::comm_msg::param_name_enum::PARAM_MAX_DEPTH:")
		assert.Contains(t, out, "if (msg.msg_case() == titan_pb::comm_msg::kParamRequest)")
		assert.Contains(t, out, "processParamReq(clientId, msg);")
		assert.Contains(t, out, "sendResponse(clientId, resp_msg);")
		assert.Contains(t, out, `RCLCPP_WARN(logger_, "Client %d sent unexpected parameter request for param %d", clientId, req_msg.param_request());`)
	})

	t.Run("array parameter uses submessage loop", func(t *testing.T) {
		h := NewParamHandler(commMsg, "msg", "ack")
		h.EnableParameterSupport("param_update", "param_request", enumPath)
		require.NoError(t, h.AddParameter("gains", config.ParamDoubleArray, "gains", "PARAM_GAINS"))
		out := paramHandlerOutput(t, h)
		assert.Contains(t, out, "auto array_submsg = param_update->mutable_gains();")
		assert.Contains(t, out, "for (const auto &entry : param_gains_val_)")
		assert.Contains(t, out, "array_submsg->add_entry(entry);")
	})

	t.Run("byte array parameter copies through string", func(t *testing.T) {
		h := NewParamHandler(commMsg, "msg", "ack")
		h.EnableParameterSupport("param_update", "param_request", enumPath)
		require.NoError(t, h.AddParameter("blob", config.ParamByteArray, "blob", "PARAM_BLOB"))
		out := paramHandlerOutput(t, h)
		assert.Contains(t, out, "param_update->set_blob(std::string(param_blob_val_.begin(), param_blob_val_.end()));")
	})
}

func TestLookupParamType(t *testing.T) {
	info, ok := LookupParamType(config.ParamIntegerArray)
	require.True(t, ok)
	assert.True(t, info.Repeated)
	assert.Equal(t, "std::vector<int64_t>", info.CppType)
	assert.Equal(t, "as_integer_array", info.Accessor)

	_, ok = LookupParamType(config.ParamKind("PARAMETER_BOGUS"))
	assert.False(t, ok)
}

func TestWriteCMake(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteCMake(&b, "protobridge", []string{"std_msgs", "geometry_msgs"},
		[]string{"TopicMessageHandler.cpp", "ParamMessageHandler.cpp"}))
	expected := `find_package(std_msgs REQUIRED)
find_package(geometry_msgs REQUIRED)
ament_target_dependencies(protobridge std_msgs geometry_msgs)
target_sources(protobridge PUBLIC
    ${CMAKE_CURRENT_LIST_DIR}/TopicMessageHandler.cpp
    ${CMAKE_CURRENT_LIST_DIR}/ParamMessageHandler.cpp
)
`
	assert.Equal(t, expected, b.String())
}
