package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TopicQOS selects the quality-of-service profile for a bridged topic.
type TopicQOS string

const (
	QOSSystemDefault TopicQOS = "system_default"
	QOSSensorData    TopicQOS = "sensor_data"
)

// RclcppExpr returns the rclcpp QoS constructor expression emitted into
// generated code.
func (q TopicQOS) RclcppExpr() string {
	switch q {
	case QOSSystemDefault:
		return "rclcpp::SystemDefaultsQoS()"
	case QOSSensorData:
		return "rclcpp::SensorDataQoS()"
	}
	return ""
}

func qosNames() []string {
	return []string{string(QOSSystemDefault), string(QOSSensorData)}
}

// ParamKind is one of the supported firmware parameter types.
type ParamKind string

const (
	ParamBool         ParamKind = "PARAMETER_BOOL"
	ParamInteger      ParamKind = "PARAMETER_INTEGER"
	ParamDouble       ParamKind = "PARAMETER_DOUBLE"
	ParamString       ParamKind = "PARAMETER_STRING"
	ParamByteArray    ParamKind = "PARAMETER_BYTE_ARRAY"
	ParamBoolArray    ParamKind = "PARAMETER_BOOL_ARRAY"
	ParamIntegerArray ParamKind = "PARAMETER_INTEGER_ARRAY"
	ParamDoubleArray  ParamKind = "PARAMETER_DOUBLE_ARRAY"
	ParamStringArray  ParamKind = "PARAMETER_STRING_ARRAY"
)

var validParamKinds = map[ParamKind]bool{
	ParamBool: true, ParamInteger: true, ParamDouble: true,
	ParamString: true, ParamByteArray: true, ParamBoolArray: true,
	ParamIntegerArray: true, ParamDoubleArray: true, ParamStringArray: true,
}

// TopicDecl is one bridged topic.
type TopicDecl struct {
	Name        string
	Type        string // namespaced message identity, e.g. std_msgs/msg/Bool
	QOS         TopicQOS
	Publishers  []string // targets that publish this topic into ROS
	Subscribers []string // targets whose ROS subscription feeds the firmware
}

// ConstantRule routes constants matching a glob pattern to a destination
// field. An empty destination discards the matched constants.
type ConstantRule struct {
	Pattern string
	Field   string
}

// MessageConstantMap is the ordered rule list for one message type.
type MessageConstantMap struct {
	Message string
	Rules   []ConstantRule
}

// ParamDecl is one declared firmware parameter.
type ParamDecl struct {
	Name string
	Kind ParamKind
}

// Config is the fully decoded bridge configuration.
type Config struct {
	Targets         []string
	Topics          []TopicDecl
	ConstantMapping []MessageConstantMap
	Parameters      []ParamDecl
}

// ConstantMapFor returns the rule list for a message identity, or nil when
// the configuration has no entry for it.
func (c *Config) ConstantMapFor(identity string) *MessageConstantMap {
	for i := range c.ConstantMapping {
		if c.ConstantMapping[i].Message == identity {
			return &c.ConstantMapping[i]
		}
	}
	return nil
}

var targetPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Load reads and parses a bridge configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return Parse(data)
}

// Parse decodes a bridge configuration document, preserving declaration
// order and rejecting unknown keys at every level.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("%w: expected a single YAML document", ErrConfig)
	}
	top, err := mappingPairs(doc.Content[0], "configuration")
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	seen := map[string]bool{}
	for _, kv := range top {
		seen[kv.key] = true
		switch kv.key {
		case "targets":
			cfg.Targets, err = decodeTargets(kv.value)
		case "topics":
			cfg.Topics, err = decodeTopics(kv.value)
		case "constant_mapping":
			cfg.ConstantMapping, err = decodeConstantMapping(kv.value)
		case "parameters":
			cfg.Parameters, err = decodeParameters(kv.value)
		default:
			return nil, fmt.Errorf("%w: unexpected key %q", ErrConfig, kv.key)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, required := range []string{"targets", "topics", "constant_mapping"} {
		if !seen[required] {
			return nil, fmt.Errorf("%w: missing top-level key %q", ErrConfig, required)
		}
	}

	// topic target references must name declared targets
	for i := range cfg.Topics {
		if err := cfg.Topics[i].validate(cfg.Targets); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func decodeTargets(node *yaml.Node) ([]string, error) {
	targets, err := stringList(node, "targets")
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if !targetPattern.MatchString(t) {
			return nil, fmt.Errorf("%w: invalid target %q, must be a lowercase C identifier", ErrConfig, t)
		}
	}
	return targets, nil
}

func decodeTopics(node *yaml.Node) ([]TopicDecl, error) {
	entries, err := mappingPairs(node, "topics")
	if err != nil {
		return nil, err
	}
	topics := make([]TopicDecl, 0, len(entries))
	for _, kv := range entries {
		topic, err := decodeTopic(kv.key, kv.value)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

func decodeTopic(name string, node *yaml.Node) (TopicDecl, error) {
	topic := TopicDecl{Name: name}
	entries, err := mappingPairs(node, fmt.Sprintf("topic %q", name))
	if err != nil {
		return topic, err
	}
	seen := map[string]bool{}
	for _, kv := range entries {
		seen[kv.key] = true
		switch kv.key {
		case "type":
			topic.Type, err = scalarString(kv.value, fmt.Sprintf("topic %q key 'type'", name))
		case "qos":
			var qos string
			qos, err = scalarString(kv.value, fmt.Sprintf("topic %q key 'qos'", name))
			if err == nil {
				topic.QOS = TopicQOS(qos)
				if topic.QOS.RclcppExpr() == "" {
					err = fmt.Errorf("%w: topic %q has invalid qos %q, must be one of: %s",
						ErrConfig, name, qos, strings.Join(qosNames(), ", "))
				}
			}
		case "publishers":
			topic.Publishers, err = stringList(kv.value, fmt.Sprintf("topic %q key 'publishers'", name))
		case "subscribers":
			topic.Subscribers, err = stringList(kv.value, fmt.Sprintf("topic %q key 'subscribers'", name))
		default:
			err = fmt.Errorf("%w: topic %q has unexpected key %q", ErrConfig, name, kv.key)
		}
		if err != nil {
			return topic, err
		}
	}
	for _, required := range []string{"type", "qos"} {
		if !seen[required] {
			return topic, fmt.Errorf("%w: topic %q missing required key %q", ErrConfig, name, required)
		}
	}
	return topic, nil
}

func (t *TopicDecl) validate(targets []string) error {
	if len(t.Publishers) == 0 && len(t.Subscribers) == 0 {
		return fmt.Errorf("%w: topic %q declares neither publishers nor subscribers", ErrConfig, t.Name)
	}
	for _, group := range [][]string{t.Publishers, t.Subscribers} {
		for _, target := range group {
			if !containsString(targets, target) {
				return fmt.Errorf("%w: topic %q references undeclared target %q", ErrConfig, t.Name, target)
			}
		}
	}
	return nil
}

func decodeConstantMapping(node *yaml.Node) ([]MessageConstantMap, error) {
	entries, err := mappingPairs(node, "constant_mapping")
	if err != nil {
		return nil, err
	}
	maps := make([]MessageConstantMap, 0, len(entries))
	for _, kv := range entries {
		rules, err := mappingPairs(kv.value, fmt.Sprintf("constant map for %q", kv.key))
		if err != nil {
			return nil, err
		}
		m := MessageConstantMap{Message: kv.key}
		for _, rule := range rules {
			field, err := scalarString(rule.value, fmt.Sprintf("constant map for %q pattern %q", kv.key, rule.key))
			if err != nil {
				return nil, err
			}
			m.Rules = append(m.Rules, ConstantRule{Pattern: rule.key, Field: field})
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func decodeParameters(node *yaml.Node) ([]ParamDecl, error) {
	entries, err := mappingPairs(node, "parameters")
	if err != nil {
		return nil, err
	}
	params := make([]ParamDecl, 0, len(entries))
	for _, kv := range entries {
		kind, err := scalarString(kv.value, fmt.Sprintf("parameter %q", kv.key))
		if err != nil {
			return nil, err
		}
		if !validParamKinds[ParamKind(kind)] {
			return nil, fmt.Errorf("%w: parameter %q has invalid type %q", ErrConfig, kv.key, kind)
		}
		params = append(params, ParamDecl{Name: kv.key, Kind: ParamKind(kind)})
	}
	return params, nil
}

type keyValue struct {
	key   string
	value *yaml.Node
}

func mappingPairs(node *yaml.Node, what string) ([]keyValue, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping", ErrConfig, what)
	}
	pairs := make([]keyValue, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %s has a non-scalar key", ErrConfig, what)
		}
		pairs = append(pairs, keyValue{key: key.Value, value: node.Content[i+1]})
	}
	return pairs, nil
}

func scalarString(node *yaml.Node, what string) (string, error) {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!map" || node.Tag == "!!seq" {
		return "", fmt.Errorf("%w: %s must be a string", ErrConfig, what)
	}
	return node.Value, nil
}

func stringList(node *yaml.Node, what string) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s must be a list", ErrConfig, what)
	}
	out := make([]string, 0, len(node.Content))
	for _, entry := range node.Content {
		s, err := scalarString(entry, what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}
