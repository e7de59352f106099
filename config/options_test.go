package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		input    string
		expected Option
		wantErr  bool
	}{
		{"ss=5", Option{Key: "ss", Value: "5", HasValue: true}, false},
		{"-hwaccel=auto", Option{Key: "hwaccel", Value: "auto", HasValue: true}, false},
		{"shortest", Option{Key: "shortest"}, false},
		{"metadata=title=x", Option{Key: "metadata", Value: "title=x", HasValue: true}, false},
		{"empty=", Option{Key: "empty", HasValue: true}, false},
		{"=5", Option{}, true},
	}

	for _, tt := range tests {
		opt, err := ParseOption(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOption(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if opt != tt.expected {
			t.Errorf("ParseOption(%q) = %+v, expected %+v", tt.input, opt, tt.expected)
		}
	}
}

func TestOptionsYAMLMappingKeepsOrder(t *testing.T) {
	var doc struct {
		Opts Options `yaml:"opts"`
	}
	data := `opts:
  tune: film
  g: 240
  shortest:
  aq-mode: 2
`
	if err := yaml.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	expected := []string{"tune=film", "g=240", "shortest", "aq-mode=2"}
	if len(doc.Opts) != len(expected) {
		t.Fatalf("Expected %d options, got %d", len(expected), len(doc.Opts))
	}
	for i, want := range expected {
		if doc.Opts[i].String() != want {
			t.Errorf("Option %d: expected %q, got %q", i, want, doc.Opts[i].String())
		}
	}
}

func TestOptionsYAMLSequence(t *testing.T) {
	var doc struct {
		Opts Options `yaml:"opts"`
	}
	if err := yaml.Unmarshal([]byte("opts: [\"ss=5\", \"-re\"]\n"), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(doc.Opts) != 2 || doc.Opts[0].String() != "ss=5" || doc.Opts[1].String() != "re" {
		t.Errorf("Unexpected options: %+v", doc.Opts)
	}
}

func TestOptionsYAMLRejectsScalar(t *testing.T) {
	var doc struct {
		Opts Options `yaml:"opts"`
	}
	if err := yaml.Unmarshal([]byte("opts: 5\n"), &doc); err == nil {
		t.Error("Expected error for scalar options, got nil")
	}
}

func TestOptionsTOML(t *testing.T) {
	var doc struct {
		Opts Options `toml:"opts"`
	}
	if err := toml.Unmarshal([]byte(`opts = ["ss=5", "an"]`), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(doc.Opts) != 2 || doc.Opts[0].Value != "5" || doc.Opts[1].HasValue {
		t.Errorf("Unexpected options: %+v", doc.Opts)
	}
}
