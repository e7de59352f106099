package tiles

import (
	"math"
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name     string
		pixels   int
		log      bool
		expected int
	}{
		{"Small log", 1080, true, 0},
		{"Small linear", 1080, false, 1},
		{"Threshold minus one log", 1365, true, 0},
		{"Threshold linear", 1366, false, 2},
		{"1440 log", 1440, true, 1},
		{"1920 log", 1920, true, 1},
		{"1920 linear", 1920, false, 2},
		{"2160 log", 2160, true, 1},
		{"3840 log", 3840, true, 2},
		{"3840 linear", 3840, false, 4},
		{"7680 log", 7680, true, 3},
		{"5000 linear", 5000, false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.pixels, tt.log); got != tt.expected {
				t.Errorf("Count(%d, %v) = %d; want %d", tt.pixels, tt.log, got, tt.expected)
			}
		})
	}
}

func TestCount_ChoiceIsLocallyBest(t *testing.T) {
	for _, log := range []bool{false, true} {
		for pixels := MinPixels; pixels <= 16384; pixels += 7 {
			n := Count(pixels, log)
			best := math.Abs(Size(pixels, n, log) - TargetSize)

			min := 1
			if log {
				min = 0
			}
			for _, alt := range []int{n - 1, n + 1} {
				if alt < min {
					continue
				}
				if d := math.Abs(Size(pixels, alt, log) - TargetSize); d < best {
					t.Fatalf("pixels=%d log=%v: count %d gives %.1f but %d gives %.1f", pixels, log, n, best, alt, d)
				}
			}
		}
	}
}

func TestCapped(t *testing.T) {
	if got := Capped(7680, true, 2); got != 2 {
		t.Errorf("Expected cap at 2, got %d", got)
	}
	if got := Capped(7680, true, -1); got != 3 {
		t.Errorf("Expected uncapped 3, got %d", got)
	}
}
