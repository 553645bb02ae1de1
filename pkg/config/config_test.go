package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDoc = `targets:
  - mcu
  - camera_cb
topics:
  depth:
    type: riptide_msgs2/msg/Depth
    qos: sensor_data
    publishers: [mcu]
  firmware_state:
    type: riptide_msgs2/msg/FirmwareState
    qos: system_default
    publishers: [mcu, camera_cb]
    subscribers: [camera_cb]
constant_mapping:
  riptide_msgs2/msg/KillSwitchReport:
    KILL_SWITCH_*: kill_switch_id
    "*": ""
parameters:
  talos_wn_coeff: PARAMETER_DOUBLE
  active_thrusters: PARAMETER_INTEGER_ARRAY
`

func TestParseFullDocument(t *testing.T) {
	cfg, err := Parse([]byte(fullDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"mcu", "camera_cb"}, cfg.Targets)

	require.Len(t, cfg.Topics, 2)
	assert.Equal(t, "depth", cfg.Topics[0].Name)
	assert.Equal(t, "riptide_msgs2/msg/Depth", cfg.Topics[0].Type)
	assert.Equal(t, QOSSensorData, cfg.Topics[0].QOS)
	assert.Equal(t, []string{"mcu"}, cfg.Topics[0].Publishers)
	assert.Empty(t, cfg.Topics[0].Subscribers)
	assert.Equal(t, []string{"camera_cb"}, cfg.Topics[1].Subscribers)

	m := cfg.ConstantMapFor("riptide_msgs2/msg/KillSwitchReport")
	require.NotNil(t, m)
	require.Len(t, m.Rules, 2)
	assert.Equal(t, ConstantRule{Pattern: "KILL_SWITCH_*", Field: "kill_switch_id"}, m.Rules[0])
	assert.Equal(t, ConstantRule{Pattern: "*", Field: ""}, m.Rules[1])
	assert.Nil(t, cfg.ConstantMapFor("riptide_msgs2/msg/Depth"))

	require.Len(t, cfg.Parameters, 2)
	assert.Equal(t, ParamDecl{Name: "talos_wn_coeff", Kind: ParamDouble}, cfg.Parameters[0])
	assert.Equal(t, ParamDecl{Name: "active_thrusters", Kind: ParamIntegerArray}, cfg.Parameters[1])
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			"unknown top-level key",
			"targets: [mcu]\ntopics: {}\nconstant_mapping: {}\nextra: 1\n",
			"unexpected key",
		},
		{
			"missing targets",
			"topics: {}\nconstant_mapping: {}\n",
			"missing top-level key",
		},
		{
			"invalid target name",
			"targets: [MCU]\ntopics: {}\nconstant_mapping: {}\n",
			"invalid target",
		},
		{
			"unknown topic key",
			"targets: [mcu]\nconstant_mapping: {}\ntopics:\n  depth:\n    type: a/msg/B\n    qos: sensor_data\n    publishers: [mcu]\n    rate: 10\n",
			"unexpected key",
		},
		{
			"invalid qos",
			"targets: [mcu]\nconstant_mapping: {}\ntopics:\n  depth:\n    type: a/msg/B\n    qos: best_effort\n    publishers: [mcu]\n",
			"invalid qos",
		},
		{
			"topic missing type",
			"targets: [mcu]\nconstant_mapping: {}\ntopics:\n  depth:\n    qos: sensor_data\n    publishers: [mcu]\n",
			"missing required key",
		},
		{
			"topic without endpoints",
			"targets: [mcu]\nconstant_mapping: {}\ntopics:\n  depth:\n    type: a/msg/B\n    qos: sensor_data\n",
			"neither publishers nor subscribers",
		},
		{
			"undeclared target",
			"targets: [mcu]\nconstant_mapping: {}\ntopics:\n  depth:\n    type: a/msg/B\n    qos: sensor_data\n    publishers: [esc_board]\n",
			"undeclared target",
		},
		{
			"invalid parameter kind",
			"targets: [mcu]\ntopics: {}\nconstant_mapping: {}\nparameters:\n  rate: PARAMETER_FLOAT\n",
			"invalid type",
		},
		{
			"not a mapping",
			"- a\n- b\n",
			"must be a mapping",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestQOSExpressions(t *testing.T) {
	assert.Equal(t, "rclcpp::SystemDefaultsQoS()", QOSSystemDefault.RclcppExpr())
	assert.Equal(t, "rclcpp::SensorDataQoS()", QOSSensorData.RclcppExpr())
	assert.Empty(t, TopicQOS("best_effort").RclcppExpr())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}
