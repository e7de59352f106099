package ffmpeg

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"mediapass/internal/timeutil"
	"mediapass/models"
)

// ProgressParser reads ffmpeg's -stats lines.
type ProgressParser struct {
	frameRegex   *regexp.Regexp
	fpsRegex     *regexp.Regexp
	sizeRegex    *regexp.Regexp
	timeRegex    *regexp.Regexp
	bitrateRegex *regexp.Regexp
	speedRegex   *regexp.Regexp
}

// NewProgressParser creates a new parser for ffmpeg progress output
func NewProgressParser() *ProgressParser {
	return &ProgressParser{
		// "frame=123" and "frame= 123" both occur
		frameRegex:   regexp.MustCompile(`(?:^|\s)frame=\s*(\d+)`),
		fpsRegex:     regexp.MustCompile(`(?:^|\s)fps=\s*([0-9.]+)`),
		sizeRegex:    regexp.MustCompile(`(?:^|\s)L?size=\s*([0-9]+)\s*([kKMG]i?B)`),
		timeRegex:    regexp.MustCompile(`(?:^|\s)time=\s*(\d+:\d+:[0-9.]+)`),
		bitrateRegex: regexp.MustCompile(`(?:^|\s)bitrate=\s*([0-9.]+\s*[kM]?bits/s)`),
		speedRegex:   regexp.MustCompile(`(?:^|\s)speed=\s*([0-9.]+)x`),
	}
}

// ParseLine updates progress from one stderr line and reports whether the
// line carried any statistics.
func (pp *ProgressParser) ParseLine(line string, progress *models.Progress) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	updated := false

	if m := pp.frameRegex.FindStringSubmatch(line); m != nil {
		if frame, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			progress.Frame = frame
			updated = true
		}
	}

	if m := pp.fpsRegex.FindStringSubmatch(line); m != nil {
		if fps, err := strconv.ParseFloat(m[1], 64); err == nil {
			progress.FPS = fps
			updated = true
		}
	}

	if m := pp.sizeRegex.FindStringSubmatch(line); m != nil {
		progress.Size = m[1] + m[2]
		updated = true
	}

	if m := pp.timeRegex.FindStringSubmatch(line); m != nil {
		if pos, err := timeutil.Parse(m[1]); err == nil {
			progress.SetTime(pos)
			updated = true
		}
	}

	if m := pp.bitrateRegex.FindStringSubmatch(line); m != nil {
		progress.Bitrate = strings.ReplaceAll(m[1], " ", "")
		updated = true
	}

	if m := pp.speedRegex.FindStringSubmatch(line); m != nil {
		if speed, err := strconv.ParseFloat(m[1], 64); err == nil {
			progress.Speed = speed
			updated = true
		}
	}

	return updated
}

// scanLines splits on \n, \r\n and the bare \r ffmpeg uses to redraw its
// stats line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		} else if data[i] == '\r' && i+1 == len(data) && !atEOF {
			// \r may be the first half of \r\n
			return 0, nil, nil
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
