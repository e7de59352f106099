// Package ffprobe extracts the source facts mediapass needs from media files
// using the ffprobe command-line tool.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"mediapass/models"
)

// Stream is one media stream as reported by ffprobe.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	RFrameRate   string `json:"r_frame_rate,omitempty"`
	ColorRange   string `json:"color_range,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Disposition  struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
}

// Format is the container information.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

// ProbeResult holds the parsed ffprobe output.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// GetDuration returns the container duration, falling back to the first
// stream that reports one.
func (pr *ProbeResult) GetDuration() (time.Duration, error) {
	raw := pr.Format.Duration
	if raw == "" || raw == "N/A" {
		for _, s := range pr.Streams {
			if s.Duration != "" && s.Duration != "N/A" {
				raw = s.Duration
				break
			}
		}
	}
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("duration not available")
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", raw, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// VideoStream returns the first real video stream. Cover art is skipped.
func (pr *ProbeResult) VideoStream() (Stream, bool) {
	for _, s := range pr.Streams {
		if s.CodecType == "video" && s.Disposition.AttachedPic == 0 {
			return s, true
		}
	}
	return Stream{}, false
}

// GetAudioStreams returns all audio streams.
func (pr *ProbeResult) GetAudioStreams() []Stream {
	var audio []Stream
	for _, s := range pr.Streams {
		if s.CodecType == "audio" {
			audio = append(audio, s)
		}
	}
	return audio
}

// MediaInfo converts the probe result into the facts used for command
// synthesis. A file without a video stream yields zero geometry.
func (pr *ProbeResult) MediaInfo() (models.MediaInfo, error) {
	info := models.MediaInfo{
		ColorRange: models.ColorRangeUnknown,
		RealValues: true,
	}

	if d, err := pr.GetDuration(); err == nil {
		info.Duration = d
	}

	v, ok := pr.VideoStream()
	if !ok {
		return info, nil
	}
	info.Width = v.Width
	info.Height = v.Height
	info.ColorRange = models.NormalizeColorRange(v.ColorRange)

	rate := v.AvgFrameRate
	if rate == "" || rate == "0/0" {
		rate = v.RFrameRate
	}
	if rate != "" && rate != "0/0" {
		fps, err := models.ParseRational(rate)
		if err != nil {
			return models.MediaInfo{}, fmt.Errorf("frame rate: %w", err)
		}
		info.FrameRate = fps
	}
	return info, nil
}

// ParseOutput decodes ffprobe's JSON output.
func ParseOutput(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON output: %w", err)
	}
	return &result, nil
}

// Probe runs ffprobe on sourcePath and parses its output.
//
// Example:
//
//	result, err := ffprobe.Probe(ctx, "ffprobe", "/path/to/video.mkv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info, _ := result.MediaInfo()
//	fmt.Printf("%dx%d @ %s\n", info.Width, info.Height, info.FrameRate)
func Probe(ctx context.Context, ffprobePath, sourcePath string) (*ProbeResult, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source path cannot be empty")
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		sourcePath,
	}

	output, err := exec.CommandContext(ctx, ffprobePath, args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %w (output: %s)", err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return ParseOutput(output)
}

// MediaInfoOrFallback probes sourcePath and converts the result. Any failure
// is logged as a warning and the documented fallback facts are returned.
func MediaInfoOrFallback(ctx context.Context, ffprobePath, sourcePath string, log logrus.FieldLogger) models.MediaInfo {
	result, err := Probe(ctx, ffprobePath, sourcePath)
	if err == nil {
		var info models.MediaInfo
		if info, err = result.MediaInfo(); err == nil {
			return info
		}
	}

	fallback := models.FallbackMediaInfo()
	if log != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"input":    sourcePath,
			"fallback": fmt.Sprintf("%dx%d@%s", fallback.Width, fallback.Height, fallback.FrameRate),
		}).Warn("Probe failed, using fallback values")
	}
	return fallback
}
