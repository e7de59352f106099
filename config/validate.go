package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mediapass/command"
	"mediapass/command/compare"
	"mediapass/command/video"
	"mediapass/internal/timeutil"
	"mediapass/internal/units"
	"mediapass/models"
)

// Validate checks if the configuration is valid. Every problem is
// collected so the user can fix them in one go.
func (c *Config) Validate() error {
	var errors []string

	if c.FFmpeg == "" {
		errors = append(errors, "ffmpeg executable is required")
	}

	if len(c.Inputs) == 0 {
		errors = append(errors, "at least one input is required")
	}

	if !c.VideoEnabled() && !c.AudioEnabled() {
		errors = append(errors, "video and audio are both disabled, nothing to encode")
	}

	if err := c.Output.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("output config: %v", err))
	}

	if err := c.Video.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("video config: %v", err))
	}

	if err := c.Filters.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("filter config: %v", err))
	}

	if err := c.Audio.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("audio config: %v", err))
	}

	if err := c.Compare.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("compare config: %v", err))
	}
	if c.Compare.Metric != "" && !c.VideoEnabled() {
		errors = append(errors, fmt.Sprintf("compare config: metric %s needs a video stream", c.Compare.Metric))
	}

	if _, err := ParsePriority(c.Process.Priority); err != nil {
		errors = append(errors, fmt.Sprintf("process config: %v", err))
	}
	if _, err := ParseAffinity(c.Process.Affinity); err != nil {
		errors = append(errors, fmt.Sprintf("process config: %v", err))
	}

	for _, opt := range append(append(Options(nil), c.InputOptions...), c.OutputOptions...) {
		if opt.Key == "" {
			errors = append(errors, "raw options cannot have an empty key")
			break
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks if output configuration is valid
func (oc *OutputConfig) Validate() error {
	if strings.ContainsAny(oc.Prefix+oc.Suffix, `/\`) {
		return fmt.Errorf("prefix and suffix cannot contain path separators")
	}
	if strings.ContainsAny(oc.Extension, `/\`) {
		return fmt.Errorf("extension cannot contain path separators")
	}
	return nil
}

// Validate checks if video configuration is valid
func (vc *VideoConfig) Validate() error {
	var errors []string

	if vc.Quality != nil && *vc.Quality < 0 {
		errors = append(errors, "quality cannot be negative")
	}

	if vc.Speed != nil && *vc.Speed < 0 {
		errors = append(errors, "speed cannot be negative")
	}

	if vc.Bitrate != "" {
		if _, err := units.ParseSize(vc.Bitrate); err != nil {
			errors = append(errors, fmt.Sprintf("bitrate: %v", err))
		}
	}

	if vc.TargetSize != "" {
		if _, err := units.ParseSize(vc.TargetSize); err != nil {
			errors = append(errors, fmt.Sprintf("target size: %v", err))
		}
	}

	if vc.TwoPass && (vc.Encoder == "" || vc.Encoder == command.Copy) {
		errors = append(errors, "two-pass encoding requires a video encoder")
	}

	if vc.Lossless && vc.Encoder != "" && vc.Encoder != command.Copy && !video.DetectFamily(vc.Encoder).SupportsLossless() {
		errors = append(errors, fmt.Sprintf("encoder %s has no lossless mode", vc.Encoder))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if filter configuration is valid
func (fc *FilterConfig) Validate() error {
	var errors []string

	switch fc.ColorRange {
	case "", models.ColorRangeFull, models.ColorRangeLimited:
	default:
		errors = append(errors, fmt.Sprintf("invalid color range '%s', must be full or limited", fc.ColorRange))
	}

	for _, field := range []struct{ name, value string }{
		{"start", fc.Start}, {"duration", fc.Duration}, {"end", fc.End},
	} {
		if _, err := timeutil.Parse(field.value); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", field.name, err))
		}
	}

	if fc.Crop.Width < 0 || fc.Crop.Height < 0 || fc.Crop.Left < 0 || fc.Crop.Top < 0 {
		errors = append(errors, "crop values cannot be negative")
	}

	if fc.Scale.Width < 0 || fc.Scale.Height < 0 {
		errors = append(errors, "scale dimensions cannot be negative")
	}

	if fc.FrameRate != "" {
		if r, err := models.ParseRational(fc.FrameRate); err != nil || r.Float() <= 0 {
			errors = append(errors, fmt.Sprintf("invalid frame rate '%s'", fc.FrameRate))
		}
	}

	if fc.Tempo < 0 || fc.Tempo > 100 {
		errors = append(errors, "tempo must be between 0 and 100 (0 = unchanged)")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if audio configuration is valid
func (ac *AudioConfig) Validate() error {
	var errors []string

	if ac.Bitrate != "" {
		if _, err := units.ParseSize(ac.Bitrate); err != nil {
			errors = append(errors, fmt.Sprintf("bitrate: %v", err))
		}
	}

	if ac.Channels < 0 {
		errors = append(errors, "channels cannot be negative (use 0 to keep)")
	} else if ac.Channels > 8 {
		errors = append(errors, "channels cannot exceed 8")
	}

	if ac.Loudness != nil {
		if ac.Loudness.Integrated >= 0 || ac.Loudness.Integrated < -70 {
			errors = append(errors, "loudness target must be between -70 and 0 LUFS")
		}
		if ac.Loudness.TruePeak > 0 || ac.Loudness.TruePeak < -9 {
			errors = append(errors, "true peak must be between -9 and 0 dBTP")
		}
		if ac.Encoder == command.Copy {
			errors = append(errors, "loudness normalization cannot be applied to copied audio")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if compare configuration is valid
func (cc *CompareConfig) Validate() error {
	var errors []string

	if !IsValidMetric(cc.Metric) {
		errors = append(errors, fmt.Sprintf("invalid metric '%s', must be one of: %s",
			cc.Metric, strings.Join(compare.Metrics(), ", ")))
	}

	switch cc.Sync {
	case "", compare.SyncFrameRate, compare.SyncNearest:
	default:
		errors = append(errors, fmt.Sprintf("invalid sync mode '%s', must be framerate or nearest", cc.Sync))
	}

	if cc.Subsample < 0 {
		errors = append(errors, "subsample cannot be negative")
	}

	if cc.Threads < 0 {
		errors = append(errors, "threads cannot be negative (use 0 for auto-detect)")
	}

	if cc.Metric == compare.MetricSSIMULACRA2 && cc.Tool == "" {
		errors = append(errors, "ssimulacra2 requires a tool executable")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// CheckResources verifies that the executables and inputs the run needs
// exist. Executables are only checked when commands will actually run.
func (c *Config) CheckResources() error {
	var errors []string

	if !c.Simulate {
		tools := []string{c.FFmpeg}
		if c.FFprobe != "" {
			tools = append(tools, c.FFprobe)
		}
		if c.Compare.Metric == compare.MetricSSIMULACRA2 {
			tools = append(tools, c.Compare.Tool)
		}
		for _, tool := range tools {
			if _, err := exec.LookPath(tool); err != nil {
				errors = append(errors, fmt.Sprintf("executable not found: %s", tool))
			}
		}
	}

	for _, input := range c.Inputs {
		if _, err := os.Stat(input); err != nil {
			errors = append(errors, fmt.Sprintf("input does not exist: %s", input))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n  - "))
	}

	return nil
}
