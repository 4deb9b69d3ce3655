package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"pyglue-generator/internal/common"
)

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// UnmarshalTOML implements toml.Unmarshaler with the same rules as YAML.
func (s *StringOrArray) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		if val != "" {
			*s = StringOrArray{val}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case []any:
		arr := make([]string, 0, len(val))

		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("element %d: expected string, got %T", i, item)
			}

			arr = append(arr, str)
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %T", v)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}
