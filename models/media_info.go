// Package models provides core data structures for the mediapass system.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rational is a fraction such as an ffprobe frame rate ("30000/1001").
type Rational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// ParseRational parses "N/D", "N" or a decimal like "29.97".
//
// Example:
//
//	r, err := models.ParseRational("30000/1001")
//	fmt.Println(r.Float()) // 29.97002997
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		d, err2 := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err1 != nil || err2 != nil {
			return Rational{}, fmt.Errorf("invalid rational %q", s)
		}
		if d == 0 {
			return Rational{}, fmt.Errorf("invalid rational %q: zero denominator", s)
		}
		return Rational{Num: n, Den: d}, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Rational{Num: n, Den: 1}, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("invalid rational %q", s)
	}
	const scale = 1000
	return Rational{Num: int64(f*scale + 0.5), Den: scale}, nil
}

// Float returns the value as float64. A zero denominator yields 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsZero reports whether r carries no usable value.
func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Color range names used throughout mediapass (ffprobe reports pc/tv).
const (
	ColorRangeUnknown = "unknown"
	ColorRangeFull    = "full"
	ColorRangeLimited = "limited"
)

// MediaInfo holds the facts about a source file that command synthesis needs.
//
// RealValues is false when the numbers are the documented fallback because
// the file could not be probed.
type MediaInfo struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	FrameRate  Rational      `json:"frame_rate"`
	Duration   time.Duration `json:"duration"`
	ColorRange string        `json:"color_range"`
	RealValues bool          `json:"real_values"`
}

// FallbackMediaInfo returns the facts assumed when probing fails:
// 2560x1440 at 60 fps, unknown color range and zero duration.
func FallbackMediaInfo() MediaInfo {
	return MediaInfo{
		Width:      2560,
		Height:     1440,
		FrameRate:  Rational{Num: 60, Den: 1},
		ColorRange: ColorRangeUnknown,
	}
}

// NormalizeColorRange maps ffprobe's range names onto full/limited.
func NormalizeColorRange(value string) string {
	switch value {
	case "pc", "jpeg":
		return ColorRangeFull
	case "tv", "mpeg":
		return ColorRangeLimited
	case "":
		return ColorRangeUnknown
	default:
		return value
	}
}
