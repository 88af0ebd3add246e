package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts an integer face count or none/null.
func (l *SimplifyLevel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidLevel, node.Line)
	}
	parsed, err := ParseSimplifyLevel(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// MarshalYAML writes the sentinel as "none".
func (l SimplifyLevel) MarshalYAML() (interface{}, error) {
	if l.None() {
		return "none", nil
	}
	return l.Faces, nil
}
