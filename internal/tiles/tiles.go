// Package tiles derives encoder tile counts from frame dimensions so each
// tile is close to 1024 pixels wide (or tall).
package tiles

import "math"

const (
	// MinPixels is the smallest dimension that is split at all.
	MinPixels = 1366
	// TargetSize is the tile size the heuristic aims for.
	TargetSize = 1024
)

// Count returns the tile count for a dimension of pixels. In log mode the
// result is a log2 exponent (what libvpx and libaom expect for
// -tile-columns/-tile-rows), otherwise a plain count.
//
// Below MinPixels the dimension is not split: 0 in log mode, 1 otherwise.
// Above it the candidate pixels/1024 (or its floor log2) is compared with the
// next count up, and whichever gives a tile size closer to 1024 wins.
func Count(pixels int, log bool) int {
	if pixels < MinPixels {
		if log {
			return 0
		}
		return 1
	}

	var candidate int
	if log {
		candidate = int(math.Floor(math.Log2(float64(pixels) / TargetSize)))
	} else {
		candidate = pixels / TargetSize
	}

	if distance(pixels, candidate+1, log) < distance(pixels, candidate, log) {
		return candidate + 1
	}
	return candidate
}

// Size returns the tile size produced by count tiles over pixels.
func Size(pixels, count int, log bool) float64 {
	if log {
		return float64(pixels) / math.Exp2(float64(count))
	}
	return float64(pixels) / float64(count)
}

func distance(pixels, count int, log bool) float64 {
	return math.Abs(Size(pixels, count, log) - TargetSize)
}

// Capped applies Count and clamps the result to max. A negative max means no cap.
func Capped(pixels int, log bool, max int) int {
	n := Count(pixels, log)
	if max >= 0 && n > max {
		return max
	}
	return n
}
