// Package timeutil provides time parsing and formatting for ffmpeg options.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatSeconds converts seconds to HH:MM:SS.MS format for FFmpeg.
//
// This format is used for FFmpeg time parameters like -ss (seek start)
// and -t (duration). Supports fractional seconds for precise timing.
//
// Example:
//
//	FormatSeconds(0)      // "00:00:00.00"
//	FormatSeconds(90)     // "00:01:30.00"
//	FormatSeconds(3661)   // "01:01:01.00"
//	FormatSeconds(30.53)  // "00:00:30.53"
func FormatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// Format renders d with FormatSeconds.
func Format(d time.Duration) string {
	return FormatSeconds(d.Seconds())
}

// Parse reads a time position or length written as plain seconds ("90",
// "12.5"), MM:SS, HH:MM:SS(.fff), or a Go duration ("1m30s").
// An empty string parses to zero.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.ContainsAny(s, "hms") && !strings.Contains(s, ":") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("invalid time %q: negative", s)
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: too many fields", s)
	}

	var total float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		if i < len(parts)-1 && v != float64(int(v)) {
			return 0, fmt.Errorf("invalid time %q: fractional field", s)
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), nil
}
