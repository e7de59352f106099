package ffmpeg

import (
	"testing"

	"mediapass/config"
)

func TestPolicyFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ProcessConfig
		expected ProcessPolicy
		wantErr  bool
	}{
		{"defaults", config.ProcessConfig{}, ProcessPolicy{}, false},
		{"below normal", config.ProcessConfig{Priority: "BelowNormal"}, ProcessPolicy{Nice: 10}, false},
		{"idle with mask", config.ProcessConfig{Priority: "idle", Affinity: "0b101"}, ProcessPolicy{Nice: 19, Affinity: 5}, false},
		{"core count", config.ProcessConfig{Affinity: "4"}, ProcessPolicy{Affinity: 15}, false},
		{"bad priority", config.ProcessConfig{Priority: "turbo"}, ProcessPolicy{}, true},
		{"bad affinity", config.ProcessConfig{Affinity: "0b0"}, ProcessPolicy{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PolicyFromConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestProcessPolicy_String(t *testing.T) {
	if got := (ProcessPolicy{Nice: 10}).String(); got != "nice=10" {
		t.Errorf("Expected nice=10, got %s", got)
	}
	if got := (ProcessPolicy{Nice: 0, Affinity: 0b110}).String(); got != "nice=0 cpus=[1 2]" {
		t.Errorf("Expected nice=0 cpus=[1 2], got %s", got)
	}
	if !(ProcessPolicy{}).IsZero() {
		t.Error("Expected zero policy")
	}
}
