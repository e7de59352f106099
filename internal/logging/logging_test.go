package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		verbose  bool
		expected logrus.Level
	}{
		{"default", "", false, logrus.InfoLevel},
		{"warn", "warn", false, logrus.WarnLevel},
		{"verbose raises", "info", true, logrus.DebugLevel},
		{"verbose keeps trace", "trace", true, logrus.TraceLevel},
		{"upper case", "ERROR", false, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			if err := Setup(logger, &bytes.Buffer{}, tt.level, tt.verbose); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}
			if logger.GetLevel() != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, logger.GetLevel())
			}
		})
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	if err := Setup(logrus.New(), &bytes.Buffer{}, "loud", false); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestSetup_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	if err := Setup(logger, &buf, "info", false); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger.WithField("input", "a.mkv").Info("Conversion finished")

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Expected no color codes for a buffer, got %q", out)
	}
	if !strings.Contains(out, `msg="Conversion finished"`) || !strings.Contains(out, "input=a.mkv") {
		t.Errorf("Unexpected log line %q", out)
	}
}
