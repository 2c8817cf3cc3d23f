package config

import (
	"bytes"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EmitYAML renders t as a YAML document with keys sorted the same way Emit
// sorts them. Dates keep their TOML text; local times are written as strings
// because YAML has no time-of-day type.
func EmitYAML(t Table) (string, error) {
	node, err := yamlNode(nil, t)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func yamlNode(path []string, v Value) (*yaml.Node, error) {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch val := v.(type) {
	case String:
		return scalar("!!str", string(val)), nil
	case Bool:
		return scalar("!!bool", strconv.FormatBool(bool(val))), nil
	case Int:
		return scalar("!!int", strconv.FormatInt(int64(val), 10)), nil
	case Float:
		f := float64(val)
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan"), nil
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf"), nil
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf"), nil
		}
		return scalar("!!float", formatFloat(f)), nil
	case DateTime:
		if val.Flavor == LocalTime {
			return scalar("!!str", val.String()), nil
		}
		return scalar("!!timestamp", val.String()), nil
	case List:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := yamlNode(path, item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		if len(val) == 0 {
			seq.Style = yaml.FlowStyle
		}
		return seq, nil
	case Table:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		scalars, tables := partition(val)
		for _, k := range append(scalars, tables...) {
			child, err := yamlNode(append(path[:len(path):len(path)], k), val[k])
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, scalar("!!str", k), child)
		}
		if len(val) == 0 {
			m.Style = yaml.FlowStyle
		}
		return m, nil
	}
	return nil, &UnsupportedValueError{Path: path, Value: v}
}
