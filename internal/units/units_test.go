package units

import (
	"strings"
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Bits
	}{
		{"Plain bits", "1000", 1000},
		{"Explicit bits", "1000b", 1000},
		{"Bytes", "100B", 800},
		{"Decimal kilo", "8k", 8000},
		{"Upper kilo", "8K", 8000},
		{"Binary kibi", "1Ki", 1024},
		{"Binary kibibytes", "160KiB", 160 * 1024 * 8},
		{"Binary mebi", "10Mi", 10 * 1024 * 1024},
		{"Decimal mega bytes", "2MB", 16_000_000},
		{"Gibi", "1Gi", 1 << 30},
		{"Fraction", "1.5Ki", 1536},
		{"Whitespace", " 64k ", 64000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if err != nil {
				t.Fatalf("ParseSize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "10Xi", "10MiX", "-5k", "1.2.3M"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseSize(input); err == nil {
				t.Errorf("Expected error for %q", input)
			}
		})
	}
}

func TestFormatBitrate(t *testing.T) {
	tests := []struct {
		name     string
		bps      float64
		expected string
	}{
		{"Small keeps two decimals", 12.5, "12.50"},
		{"Hundreds one decimal", 512.4, "512.4"},
		{"Thousands no decimals", 5000, "5000"},
		{"Exactly threshold stays", 9999, "9999"},
		{"Just above threshold scales", 10000, "9.77Ki"},
		{"Ki one decimal", 104857.6, "102.4Ki"},
		{"Ki no decimals", 2_000_000, "1953Ki"},
		{"Mi", 20 * 1024 * 1024, "20.00Mi"},
		{"Mi stops below threshold", 3 * 1024 * 1024 * 1024, "3072Mi"},
		{"Gi", 12 * 1024 * 1024 * 1024, "12.00Gi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBitrate(tt.bps); got != tt.expected {
				t.Errorf("FormatBitrate(%v) = %s; want %s", tt.bps, got, tt.expected)
			}
		})
	}
}

func TestTargetBitrate(t *testing.T) {
	got, err := TargetBitrate("10Mi", 100*time.Second, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "102.4Ki" {
		t.Errorf("Expected 102.4Ki, got %s", got)
	}

	// 8 MiB over 60s minus 128Ki audio.
	got, err = TargetBitrate("8MiB", time.Minute, 128*1024)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "964.3Ki" {
		t.Errorf("Expected 964.3Ki, got %s", got)
	}
}

func TestTargetBitrate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		size     string
		duration time.Duration
		reserve  Bits
		contains string
	}{
		{"Zero duration", "10Mi", 0, 0, "positive duration"},
		{"Audio eats budget", "1Ki", time.Second, 2048, "no room"},
		{"Bad size", "ten", time.Second, 0, "invalid size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TargetBitrate(tt.size, tt.duration, tt.reserve)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}
