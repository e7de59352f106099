package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option is a raw command-line option: a key without the leading dash and
// an optional value.
type Option struct {
	Key      string
	Value    string
	HasValue bool
}

// ParseOption parses "key=value" or a bare "key". A leading dash is dropped.
func ParseOption(s string) (Option, error) {
	key, value, hasValue := strings.Cut(strings.TrimSpace(s), "=")
	key = strings.TrimPrefix(strings.TrimSpace(key), "-")
	if key == "" {
		return Option{}, fmt.Errorf("invalid option %q: empty key", s)
	}
	return Option{Key: key, Value: value, HasValue: hasValue}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used for TOML string arrays).
func (o *Option) UnmarshalText(text []byte) error {
	parsed, err := ParseOption(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Option) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o Option) String() string {
	if !o.HasValue {
		return o.Key
	}
	return o.Key + "=" + o.Value
}

// Options is an ordered list of raw options.
type Options []Option

// UnmarshalYAML accepts either a mapping (order preserved, null values are
// bare flags) or a sequence of "key=value" strings.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	var out Options
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			opt := Option{Key: strings.TrimPrefix(k.Value, "-")}
			if v.Tag != "!!null" {
				opt.Value = v.Value
				opt.HasValue = true
			}
			if opt.Key == "" {
				return fmt.Errorf("line %d: empty option key", k.Line)
			}
			out = append(out, opt)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			opt, err := ParseOption(item.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}
			out = append(out, opt)
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*o = nil
			return nil
		}
		return fmt.Errorf("line %d: options must be a mapping or a list", node.Line)
	default:
		return fmt.Errorf("line %d: options must be a mapping or a list", node.Line)
	}
	*o = out
	return nil
}

// MarshalYAML writes options as a list of "key=value" strings.
func (o Options) MarshalYAML() (interface{}, error) {
	items := make([]string, len(o))
	for i, opt := range o {
		items[i] = opt.String()
	}
	return items, nil
}

// ParseOptions parses every "key=value" string.
func ParseOptions(items []string) (Options, error) {
	out := make(Options, 0, len(items))
	for _, item := range items {
		opt, err := ParseOption(item)
		if err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, nil
}
