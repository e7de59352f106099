package models

import (
	"fmt"
	"time"
)

// Progress holds the latest statistics ffmpeg reported for a running pass.
type Progress struct {
	Frame   int64
	FPS     float64
	Time    time.Duration // Position reached in the output
	Bitrate string        // e.g. "128.0kbits/s"
	Speed   float64       // Multiple of realtime
	Size    string        // e.g. "1024kB"

	Total   time.Duration // Expected output duration, 0 if unknown
	Percent float64       // 0-100, only meaningful when Total is set

	StartTime time.Time
	UpdatedAt time.Time
}

// NewProgress creates a tracker for a pass expected to produce total worth of
// media. A zero total disables percentage calculation.
func NewProgress(total time.Duration) *Progress {
	now := time.Now()
	return &Progress{
		Total:     total,
		StartTime: now,
		UpdatedAt: now,
	}
}

// SetTime records the current output position and updates Percent.
func (p *Progress) SetTime(pos time.Duration) {
	p.Time = pos
	if p.Total > 0 {
		p.Percent = float64(pos) / float64(p.Total) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	p.UpdatedAt = time.Now()
}

// Remaining estimates the time left from the elapsed time and Percent.
func (p *Progress) Remaining() time.Duration {
	if p.Percent <= 0 {
		return 0
	}
	elapsed := p.UpdatedAt.Sub(p.StartTime)
	remaining := time.Duration(float64(elapsed)/(p.Percent/100)) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Summary returns a one-line human readable summary.
func (p *Progress) Summary() string {
	if p.Total <= 0 {
		return fmt.Sprintf("frame %d | time %s | speed %.2fx | size %s",
			p.Frame, p.Time.Truncate(time.Second), p.Speed, p.Size)
	}
	return fmt.Sprintf("%.1f%% | speed %.2fx | bitrate %s | size %s | eta %s",
		p.Percent, p.Speed, p.Bitrate, p.Size, formatRemaining(p.Remaining()))
}

func formatRemaining(d time.Duration) string {
	if d == 0 {
		return "calculating..."
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	seconds %= 60
	if minutes < 60 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh%dm%ds", minutes/60, minutes%60, seconds)
}
