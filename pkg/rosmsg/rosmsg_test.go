package rosmsg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIdentity(t *testing.T) {
	pkg, name, err := SplitIdentity("std_msgs/msg/Float32")
	require.NoError(t, err)
	assert.Equal(t, "std_msgs", pkg)
	assert.Equal(t, "Float32", name)

	for _, bad := range []string{
		"std_msgs/Float32",
		"std_msgs/srv/Trigger",
		"/msg/Float32",
		"std_msgs/msg/",
		"std_msgs/msg/Float.32",
	} {
		_, _, err := SplitIdentity(bad)
		assert.ErrorIs(t, err, ErrInvalidIdentity, bad)
	}
}

func TestParseMsgFields(t *testing.T) {
	def := `# header comment
std_msgs/Header header
float64 depth
float32[3] linear_accel   # trailing comment
uint8[] payload
geometry_msgs/Vector3[<=16] waypoints
string frame_id
string<=32 name
bool enabled false
Submessage status
`
	m, err := ParseMsg(strings.NewReader(def), "riptide_msgs2", "Depth")
	require.NoError(t, err)
	assert.Equal(t, "riptide_msgs2/msg/Depth", m.Identity())

	require.Len(t, m.Fields, 9)
	assert.Equal(t, NamespacedType{Package: "std_msgs", Name: "Header"}, m.Fields[0].Type)
	assert.Equal(t, BasicType{Name: "double"}, m.Fields[1].Type)
	assert.Equal(t, Array{Elem: BasicType{Name: "float"}, Size: 3}, m.Fields[2].Type)
	assert.Equal(t, UnboundedSequence{Elem: BasicType{Name: "uint8"}}, m.Fields[3].Type)
	assert.Equal(t, BoundedSequence{
		Elem:    NamespacedType{Package: "geometry_msgs", Name: "Vector3"},
		MaxSize: 16,
	}, m.Fields[4].Type)
	assert.Equal(t, UnboundedString{}, m.Fields[5].Type)
	assert.Equal(t, BoundedString{MaxSize: 32}, m.Fields[6].Type)
	// default values after the field name are ignored
	assert.Equal(t, "enabled", m.Fields[7].Name)
	// bare references resolve into the defining package
	assert.Equal(t, NamespacedType{Package: "riptide_msgs2", Name: "Submessage"}, m.Fields[8].Type)
}

func TestParseMsgConstants(t *testing.T) {
	def := `uint8 KILL_SWITCH_PHYSICAL=1
uint8 KILL_SWITCH_SOFTWARE = 2
int16 TRIM_MIN=-100
string VERSION_NAME="talos"
uint8 kill_switch_id
`
	m, err := ParseMsg(strings.NewReader(def), "riptide_msgs2", "KillSwitchReport")
	require.NoError(t, err)

	// string constants are not enum material and are dropped
	require.Len(t, m.Constants, 3)
	assert.Equal(t, Constant{Name: "KILL_SWITCH_PHYSICAL", Value: 1}, m.Constants[0])
	assert.Equal(t, Constant{Name: "KILL_SWITCH_SOFTWARE", Value: 2}, m.Constants[1])
	assert.Equal(t, Constant{Name: "TRIM_MIN", Value: -100}, m.Constants[2])

	v, ok := m.ConstantValue("TRIM_MIN")
	assert.True(t, ok)
	assert.Equal(t, int64(-100), v)
	_, ok = m.ConstantValue("MISSING")
	assert.False(t, ok)
}

func TestParseMsgErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"bare type", "float64\n"},
		{"bad array size", "float64[zero] depth\n"},
		{"negative bound", "float64[<=-1] depth\n"},
		{"bad string bound", "string<=abc name\n"},
		{"bad constant", "uint8 STATE=high\n"},
		{"nested slash", "a/b/C field\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMsg(strings.NewReader(tt.def), "pkg", "Name")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	msg := &Message{Package: "std_msgs", Name: "Float32",
		Fields: []Field{{Name: "data", Type: BasicType{Name: "float"}}}}
	reg.Register(msg)

	got, err := reg.Lookup("std_msgs/msg/Float32")
	require.NoError(t, err)
	assert.Same(t, msg, got)
	assert.Equal(t, []string{"data"}, got.FieldNames())

	_, err = reg.Lookup("std_msgs/msg/Float64")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = reg.Lookup("not-an-identity")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestDirProvider(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeMsg := func(root, pkg, name, body string) {
		dir := filepath.Join(root, pkg, "msg")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".msg"), []byte(body), 0o644))
	}
	writeMsg(first, "std_msgs", "Float32", "float32 data\n")
	writeMsg(second, "std_msgs", "Float32", "float64 data\n")
	writeMsg(second, "geometry_msgs", "Vector3", "float64 x\nfloat64 y\nfloat64 z\n")

	p := NewDirProvider(first, second)

	// earlier roots shadow later ones
	m, err := p.Lookup("std_msgs/msg/Float32")
	require.NoError(t, err)
	assert.Equal(t, BasicType{Name: "float"}, m.Fields[0].Type)

	v, err := p.Lookup("geometry_msgs/msg/Vector3")
	require.NoError(t, err)
	assert.Len(t, v.Fields, 3)

	// lookups are cached, later file changes are not observed
	writeMsg(first, "std_msgs", "Float32", "float64 data\n")
	again, err := p.Lookup("std_msgs/msg/Float32")
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, err = p.Lookup("std_msgs/msg/Missing")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
