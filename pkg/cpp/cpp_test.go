package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNesting(t *testing.T) {
	stmts := []Stmt{
		Line("if (count != 3)"),
		Block{
			Linef(`throw MsgConversionError("%s", "%s", "%s");`,
				"std_msgs/msg/Float32", "data", "wrong length"),
		},
		Line("ros_msg.data = proto_msg.data();"),
	}
	want := `if (count != 3)
{
    throw MsgConversionError("std_msgs/msg/Float32", "data", "wrong length");
}
ros_msg.data = proto_msg.data();
`
	assert.Equal(t, want, Render(stmts, 0))
}

func TestRenderStartingIndent(t *testing.T) {
	stmts := []Stmt{Line("return true;")}
	assert.Equal(t, "        return true;\n", Render(stmts, 2*IndentWidth))
}

func TestCaseBodiesAreUnbraced(t *testing.T) {
	cl := CaseList{
		{Label: "case titan_pb::comm_msg::kDepth", Body: []Stmt{
			Line("return publish_depth(msg.depth());"),
		}},
		{Label: "default", Body: []Stmt{
			Line("return false;"),
		}},
	}
	want := `case titan_pb::comm_msg::kDepth:
    return publish_depth(msg.depth());
default:
    return false;
`
	assert.Equal(t, want, Render([]Stmt{cl}, 0))
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"depth", `"depth"`},
		{`quote " and \ slash`, `"quote \" and \\ slash"`},
		{"line\nbreak\ttab", `"line\nbreak\ttab"`},
		{"nul\x00cr\r", `"nul\0cr\r"`},
		{"\x01", `"\x01"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeString(tt.in), tt.in)
	}
}

func TestOneofCaseName(t *testing.T) {
	assert.Equal(t, "kParamUpdate", OneofCaseName("param_update"))
	assert.Equal(t, "kDepth", OneofCaseName("depth"))
	assert.Equal(t, "kConnectVer", OneofCaseName("connect_ver"))
	assert.Equal(t, "kField", OneofCaseName("_field"))
}
