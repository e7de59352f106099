// Package units parses human size strings and formats bitrates in the
// binary-prefixed notation ffmpeg accepts (e.g. "160KiB", "102.4Ki").
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Bits is a quantity of bits.
type Bits float64

var magnitudes = map[byte]int{
	'k': 1, 'K': 1,
	'M': 2,
	'G': 3,
	'T': 4,
}

// ParseSize parses a number followed by an optional magnitude (k, M, G, T),
// an optional "i" selecting binary (1024) instead of decimal (1000) steps,
// and an optional unit: "B" for bytes or "b"/nothing for bits.
//
// Examples:
//
//	ParseSize("10Mi")   // 10 * 1024^2 bits
//	ParseSize("160KiB") // 160 * 1024 * 8 bits
//	ParseSize("8M")     // 8_000_000 bits
func ParseSize(s string) (Bits, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty size")
	}

	end := len(raw)
	for end > 0 && strings.IndexByte("0123456789.", raw[end-1]) < 0 {
		end--
	}
	number, suffix := raw[:end], raw[end:]

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", s)
	}

	multiplier := 1.0
	if suffix != "" {
		if power, ok := magnitudes[suffix[0]]; ok {
			base := 1000.0
			suffix = suffix[1:]
			if strings.HasPrefix(suffix, "i") {
				base = 1024
				suffix = suffix[1:]
			}
			multiplier = math.Pow(base, float64(power))
		}
	}

	switch suffix {
	case "", "b":
	case "B":
		multiplier *= 8
	default:
		return 0, fmt.Errorf("invalid size %q: unknown suffix %q", s, suffix)
	}

	return Bits(value * multiplier), nil
}

// TargetBitrate derives the video bitrate needed to fit size into duration,
// after reserving audioReserve bits per second for the audio stream.
func TargetBitrate(size string, duration time.Duration, audioReserve Bits) (string, error) {
	total, err := ParseSize(size)
	if err != nil {
		return "", err
	}
	seconds := duration.Seconds()
	if seconds <= 0 {
		return "", fmt.Errorf("target size %q needs a positive duration", size)
	}

	rate := float64(total)/seconds - float64(audioReserve)
	if rate <= 0 {
		return "", fmt.Errorf("target size %q leaves no room for video over %s", size, duration)
	}
	return FormatBitrate(rate), nil
}

var binarySuffixes = []string{"", "Ki", "Mi", "Gi"}

// FormatBitrate renders bitsPerSecond with a binary suffix. The value is
// divided by 1024 while it exceeds 9999; the number of decimals shrinks as
// the scaled value grows (0 from 1000, 1 from 100, otherwise 2).
func FormatBitrate(bitsPerSecond float64) string {
	value := bitsPerSecond
	i := 0
	for value > 9999 && i < len(binarySuffixes)-1 {
		value /= 1024
		i++
	}

	precision := 2
	switch {
	case value >= 1000:
		precision = 0
	case value >= 100:
		precision = 1
	}
	return strconv.FormatFloat(value, 'f', precision, 64) + binarySuffixes[i]
}
