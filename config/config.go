package config

import (
	"mediapass/command"
	"mediapass/command/compare"
)

// Config holds every mediapass setting. A loaded Config is treated as an
// immutable snapshot for the duration of a run.
type Config struct {
	// Executables
	FFmpeg  string `yaml:"ffmpeg" toml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe" toml:"ffprobe"`

	// Files or directories to convert. Directories are walked recursively.
	Inputs []string `yaml:"inputs" toml:"inputs"`

	Output  OutputConfig  `yaml:"output" toml:"output"`
	Video   VideoConfig   `yaml:"video" toml:"video"`
	Filters FilterConfig  `yaml:"filters" toml:"filters"`
	Audio   AudioConfig   `yaml:"audio" toml:"audio"`
	Strip   StripConfig   `yaml:"strip" toml:"strip"`
	Compare CompareConfig `yaml:"compare" toml:"compare"`
	Process ProcessConfig `yaml:"process" toml:"process"`

	// Raw options merged verbatim into the input/output argument lists
	// after everything else, so they can override generated values.
	InputOptions  Options `yaml:"input_options" toml:"input_options"`
	OutputOptions Options `yaml:"output_options" toml:"output_options"`

	// Behavioral flags
	Overwrite bool   `yaml:"overwrite" toml:"overwrite"` // -y instead of -n
	Simulate  bool   `yaml:"simulate" toml:"simulate"`   // Print commands instead of running them
	LogLevel  string `yaml:"log_level" toml:"log_level"` // logrus level name
	Verbose   bool   `yaml:"verbose" toml:"verbose"`     // Shortcut for debug logging and ffmpeg info output

	// Config files applied, in order. Not serialized.
	Sources []string `yaml:"-" toml:"-"`
}

// OutputConfig controls where outputs go and how they are named.
type OutputConfig struct {
	Directory       string `yaml:"directory" toml:"directory"`               // Empty = next to the input
	CreateDirectory bool   `yaml:"create_directory" toml:"create_directory"` // Create missing output directories
	Prefix          string `yaml:"prefix" toml:"prefix"`
	Suffix          string `yaml:"suffix" toml:"suffix"`
	Extension       string `yaml:"extension" toml:"extension"` // Without dot; empty = keep input extension
}

// VideoConfig holds video encoding settings.
type VideoConfig struct {
	Encoder     string `yaml:"encoder" toml:"encoder"`         // Empty disables video, "copy" copies the stream
	Lossless    bool   `yaml:"lossless" toml:"lossless"`       // Highest priority quality mode
	Quality     *int   `yaml:"quality" toml:"quality"`         // crf/qp/cq value; nil = unset
	Bitrate     string `yaml:"bitrate" toml:"bitrate"`         // e.g. "2Mi"
	TargetSize  string `yaml:"target_size" toml:"target_size"` // e.g. "8MiB"; derives the bitrate
	Speed       *int   `yaml:"speed" toml:"speed"`             // Encoder-neutral speed, higher = faster
	TwoPass     bool   `yaml:"two_pass" toml:"two_pass"`
	PixelFormat string `yaml:"pixel_format" toml:"pixel_format"`
}

// FilterConfig holds the filter chain settings, applied in a fixed order.
type FilterConfig struct {
	Prepend    string      `yaml:"prepend" toml:"prepend"`         // Raw filter placed first
	ColorRange string      `yaml:"color_range" toml:"color_range"` // "", "full" or "limited"
	Start      string      `yaml:"start" toml:"start"`
	Duration   string      `yaml:"duration" toml:"duration"` // Takes precedence over End
	End        string      `yaml:"end" toml:"end"`
	Crop       CropConfig  `yaml:"crop" toml:"crop"`
	Scale      ScaleConfig `yaml:"scale" toml:"scale"`
	FrameRate  string      `yaml:"frame_rate" toml:"frame_rate"` // Output frame rate, e.g. "30" or "24000/1001"
	Tempo      float64     `yaml:"tempo" toml:"tempo"`           // Playback speed multiplier; 0 or 1 = unchanged
	Append     string      `yaml:"append" toml:"append"`         // Raw filter placed last
}

// CropConfig crops before scaling. Zero values are unset.
type CropConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	Left   int `yaml:"left" toml:"left"`
	Top    int `yaml:"top" toml:"top"`
}

// ScaleConfig resizes the frame. A zero dimension preserves aspect ratio.
type ScaleConfig struct {
	Width  int  `yaml:"width" toml:"width"`
	Height int  `yaml:"height" toml:"height"`
	Dither bool `yaml:"dither" toml:"dither"`
}

// AudioConfig holds audio encoding settings.
type AudioConfig struct {
	Encoder  string          `yaml:"encoder" toml:"encoder"`   // Empty disables audio, "copy" copies the stream
	Bitrate  string          `yaml:"bitrate" toml:"bitrate"`   // e.g. "128Ki"
	Channels int             `yaml:"channels" toml:"channels"` // 0 = keep
	Loudness *LoudnessTarget `yaml:"loudness" toml:"loudness"` // nil = no normalization
}

// LoudnessTarget is the loudness normalization goal.
type LoudnessTarget struct {
	Integrated float64 `yaml:"integrated" toml:"integrated"` // LUFS, e.g. -14
	TruePeak   float64 `yaml:"true_peak" toml:"true_peak"`   // dBTP ceiling for the limiter, e.g. -1
}

// StripConfig removes streams or metadata from the output.
type StripConfig struct {
	Subtitles bool `yaml:"subtitles" toml:"subtitles"`
	Metadata  bool `yaml:"metadata" toml:"metadata"`
	Chapters  bool `yaml:"chapters" toml:"chapters"`
}

// CompareConfig selects an optional quality comparison after encoding.
type CompareConfig struct {
	Metric    string `yaml:"metric" toml:"metric"`       // "", libvmaf, ssim, xpsnr, ssimulacra2
	Sync      string `yaml:"sync" toml:"sync"`           // "", "framerate" or "nearest"
	Subsample int    `yaml:"subsample" toml:"subsample"` // Compare every Nth frame; 0/1 = all
	Threads   int    `yaml:"threads" toml:"threads"`     // libvmaf threads; 0 = NumCPU
	Tool      string `yaml:"tool" toml:"tool"`           // ssimulacra2 executable
}

// ProcessConfig is the resource policy applied to every spawned process.
type ProcessConfig struct {
	Priority string `yaml:"priority" toml:"priority"` // Idle, BelowNormal, Normal, AboveNormal, High, RealTime
	Affinity string `yaml:"affinity" toml:"affinity"` // "0b1011" mask or a core count; empty = all cores
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	quality := 21
	speed := 1
	return &Config{
		FFmpeg:  "ffmpeg",
		FFprobe: "ffprobe",

		Output: OutputConfig{
			CreateDirectory: true,
			Suffix:          " out",
			Extension:       "webm",
		},

		// VP9 constant quality, slow and small
		Video: VideoConfig{
			Encoder: "libvpx-vp9",
			Quality: &quality,
			Speed:   &speed,
		},

		Audio: AudioConfig{
			Encoder: "libopus",
			Bitrate: "128Ki",
		},

		Compare: CompareConfig{
			Tool: "ssimulacra2_rs",
		},

		Process: ProcessConfig{
			Priority: "BelowNormal",
		},

		Overwrite: true,
		LogLevel:  "info",
	}
}

// Copy creates a deep copy of the config
func (c *Config) Copy() *Config {
	cp := *c
	cp.Inputs = append([]string(nil), c.Inputs...)
	cp.Sources = append([]string(nil), c.Sources...)
	cp.InputOptions = append(Options(nil), c.InputOptions...)
	cp.OutputOptions = append(Options(nil), c.OutputOptions...)
	if c.Video.Quality != nil {
		q := *c.Video.Quality
		cp.Video.Quality = &q
	}
	if c.Video.Speed != nil {
		s := *c.Video.Speed
		cp.Video.Speed = &s
	}
	if c.Audio.Loudness != nil {
		l := *c.Audio.Loudness
		cp.Audio.Loudness = &l
	}
	return &cp
}

// VideoEnabled reports whether a video stream is produced.
func (c *Config) VideoEnabled() bool {
	return c.Video.Encoder != ""
}

// AudioEnabled reports whether an audio stream is produced.
func (c *Config) AudioEnabled() bool {
	return c.Audio.Encoder != ""
}

// AudioEncoded reports whether audio is re-encoded (enabled and not copied).
func (c *Config) AudioEncoded() bool {
	return c.AudioEnabled() && c.Audio.Encoder != command.Copy
}

// IsValidMetric checks if metric is valid ("" disables comparison)
func IsValidMetric(metric string) bool {
	if metric == "" {
		return true
	}
	for _, valid := range compare.Metrics() {
		if metric == valid {
			return true
		}
	}
	return false
}
