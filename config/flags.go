package config

import (
	"github.com/spf13/pflag"
)

// Flags holds the values bound to command-line flags. Only flags the user
// actually set are merged into a Config.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFile string // Extra config layer applied after the discovered file
	DryRun     bool   // Show configuration without encoding
	SaveConfig string // Write the effective configuration to a file and exit

	ffmpeg, ffprobe string

	outputDir, prefix, suffix, extension string
	createDir                            bool

	videoEncoder, videoBitrate, targetSize, pixelFormat string
	quality, speed                                      int
	lossless, twoPass                                   bool

	prependFilter, appendFilter, colorRange string
	start, duration, end                    string
	cropWidth, cropHeight, cropLeft, cropTop int
	scaleWidth, scaleHeight                 int
	dither                                  bool
	frameRate                               string
	tempo                                   float64

	audioEncoder, audioBitrate string
	channels                   int
	loudness, truePeak         float64

	stripSubtitles, stripMetadata, stripChapters bool

	metric, sync, compareTool string
	subsample, threads        int

	priority, affinity string

	inputOptions, outputOptions []string

	overwrite, simulate, verbose bool
	logLevel                     string
}

// RegisterFlags defines every mediapass flag on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	// Configuration
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Config file applied on top of the discovered one (YAML or TOML)")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Show effective configuration without encoding")
	fs.StringVar(&f.SaveConfig, "save-config", "", "Write the effective configuration to this file and exit")

	// Executables
	fs.StringVar(&f.ffmpeg, "ffmpeg", "", "ffmpeg executable")
	fs.StringVar(&f.ffprobe, "ffprobe", "", "ffprobe executable (empty disables probing)")

	// Output
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "Output directory (default: next to each input)")
	fs.BoolVar(&f.createDir, "create-dir", true, "Create missing output directories")
	fs.StringVar(&f.prefix, "prefix", "", "Output file name prefix")
	fs.StringVar(&f.suffix, "suffix", "", "Output file name suffix")
	fs.StringVarP(&f.extension, "extension", "e", "", "Output extension without dot (empty keeps the input's)")

	// Video
	fs.StringVar(&f.videoEncoder, "video-encoder", "", "Video encoder, \"copy\", or \"\" to drop video")
	fs.IntVarP(&f.quality, "quality", "q", -1, "Constant quality value (-1 unsets it)")
	fs.BoolVar(&f.lossless, "lossless", false, "Lossless video encoding")
	fs.StringVar(&f.videoBitrate, "video-bitrate", "", "Video bitrate, e.g. 2Mi")
	fs.StringVar(&f.targetSize, "target-size", "", "Target output size, e.g. 8MiB (derives the bitrate)")
	fs.IntVarP(&f.speed, "speed", "s", -1, "Encoder speed, higher is faster (-1 unsets it)")
	fs.BoolVar(&f.twoPass, "two-pass", false, "Two-pass video encoding")
	fs.StringVar(&f.pixelFormat, "pix-fmt", "", "Output pixel format")

	// Filters
	fs.StringVar(&f.prependFilter, "prepend-filter", "", "Raw video filter placed first")
	fs.StringVar(&f.appendFilter, "append-filter", "", "Raw video filter placed last")
	fs.StringVar(&f.colorRange, "color-range", "", "Output color range: full or limited")
	fs.StringVar(&f.start, "start", "", "Start time (seconds, HH:MM:SS or Go duration)")
	fs.StringVar(&f.duration, "duration", "", "Duration to encode (wins over --end)")
	fs.StringVar(&f.end, "end", "", "End time")
	fs.IntVar(&f.cropWidth, "crop-width", 0, "Crop width")
	fs.IntVar(&f.cropHeight, "crop-height", 0, "Crop height")
	fs.IntVar(&f.cropLeft, "crop-left", 0, "Crop left offset")
	fs.IntVar(&f.cropTop, "crop-top", 0, "Crop top offset")
	fs.IntVar(&f.scaleWidth, "width", 0, "Output width (0 keeps aspect ratio)")
	fs.IntVar(&f.scaleHeight, "height", 0, "Output height (0 keeps aspect ratio)")
	fs.BoolVar(&f.dither, "dither", false, "Error-diffusion dithering when scaling")
	fs.StringVarP(&f.frameRate, "framerate", "r", "", "Output frame rate, e.g. 30 or 24000/1001")
	fs.Float64Var(&f.tempo, "tempo", 0, "Playback speed multiplier")

	// Audio
	fs.StringVar(&f.audioEncoder, "audio-encoder", "", "Audio encoder, \"copy\", or \"\" to drop audio")
	fs.StringVar(&f.audioBitrate, "audio-bitrate", "", "Audio bitrate, e.g. 128Ki")
	fs.IntVar(&f.channels, "channels", 0, "Audio channel count (0 keeps)")
	fs.Float64Var(&f.loudness, "loudness", 0, "Normalize integrated loudness to this LUFS value")
	fs.Float64Var(&f.truePeak, "true-peak", -1, "True peak ceiling in dBTP for --loudness")

	// Stripping
	fs.BoolVar(&f.stripSubtitles, "strip-subtitles", false, "Drop subtitle streams")
	fs.BoolVar(&f.stripMetadata, "strip-metadata", false, "Drop global metadata")
	fs.BoolVar(&f.stripChapters, "strip-chapters", false, "Drop chapters")

	// Comparison
	fs.StringVar(&f.metric, "compare", "", "Quality metric after encoding: libvmaf, ssim, xpsnr, ssimulacra2")
	fs.StringVar(&f.sync, "compare-sync", "", "Frame sync: framerate or nearest")
	fs.IntVar(&f.subsample, "compare-subsample", 0, "Compare every Nth frame")
	fs.IntVar(&f.threads, "compare-threads", 0, "libvmaf threads (0 = auto-detect)")
	fs.StringVar(&f.compareTool, "compare-tool", "", "ssimulacra2 executable")

	// Process policy
	fs.StringVar(&f.priority, "priority", "", "Process priority: Idle, BelowNormal, Normal, AboveNormal, High, RealTime")
	fs.StringVar(&f.affinity, "affinity", "", "CPU affinity: 0b mask or core count")

	// Raw options
	fs.StringArrayVar(&f.inputOptions, "input-option", nil, "Raw input option key=value (repeatable)")
	fs.StringArrayVar(&f.outputOptions, "output-option", nil, "Raw output option key=value (repeatable)")

	// Behavioral flags
	fs.BoolVar(&f.overwrite, "overwrite", true, "Overwrite existing outputs")
	fs.BoolVarP(&f.simulate, "simulate", "n", false, "Print commands instead of running them")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose logging")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return f
}

// MergeFromFlags overrides config values with the flags the user set
func (c *Config) MergeFromFlags(f *Flags) error {
	changed := f.fs.Changed

	if changed("ffmpeg") {
		c.FFmpeg = f.ffmpeg
	}
	if changed("ffprobe") {
		c.FFprobe = f.ffprobe
	}

	// Output
	if changed("output-dir") {
		c.Output.Directory = f.outputDir
	}
	if changed("create-dir") {
		c.Output.CreateDirectory = f.createDir
	}
	if changed("prefix") {
		c.Output.Prefix = f.prefix
	}
	if changed("suffix") {
		c.Output.Suffix = f.suffix
	}
	if changed("extension") {
		c.Output.Extension = f.extension
	}

	// Video
	if changed("video-encoder") {
		c.Video.Encoder = f.videoEncoder
	}
	if changed("quality") {
		c.Video.Quality = optionalInt(f.quality)
	}
	if changed("lossless") {
		c.Video.Lossless = f.lossless
	}
	if changed("video-bitrate") {
		c.Video.Bitrate = f.videoBitrate
	}
	if changed("target-size") {
		c.Video.TargetSize = f.targetSize
	}
	if changed("speed") {
		c.Video.Speed = optionalInt(f.speed)
	}
	if changed("two-pass") {
		c.Video.TwoPass = f.twoPass
	}
	if changed("pix-fmt") {
		c.Video.PixelFormat = f.pixelFormat
	}

	// Filters
	if changed("prepend-filter") {
		c.Filters.Prepend = f.prependFilter
	}
	if changed("append-filter") {
		c.Filters.Append = f.appendFilter
	}
	if changed("color-range") {
		c.Filters.ColorRange = f.colorRange
	}
	if changed("start") {
		c.Filters.Start = f.start
	}
	if changed("duration") {
		c.Filters.Duration = f.duration
	}
	if changed("end") {
		c.Filters.End = f.end
	}
	if changed("crop-width") {
		c.Filters.Crop.Width = f.cropWidth
	}
	if changed("crop-height") {
		c.Filters.Crop.Height = f.cropHeight
	}
	if changed("crop-left") {
		c.Filters.Crop.Left = f.cropLeft
	}
	if changed("crop-top") {
		c.Filters.Crop.Top = f.cropTop
	}
	if changed("width") {
		c.Filters.Scale.Width = f.scaleWidth
	}
	if changed("height") {
		c.Filters.Scale.Height = f.scaleHeight
	}
	if changed("dither") {
		c.Filters.Scale.Dither = f.dither
	}
	if changed("framerate") {
		c.Filters.FrameRate = f.frameRate
	}
	if changed("tempo") {
		c.Filters.Tempo = f.tempo
	}

	// Audio
	if changed("audio-encoder") {
		c.Audio.Encoder = f.audioEncoder
	}
	if changed("audio-bitrate") {
		c.Audio.Bitrate = f.audioBitrate
	}
	if changed("channels") {
		c.Audio.Channels = f.channels
	}
	if changed("loudness") {
		if c.Audio.Loudness == nil {
			c.Audio.Loudness = &LoudnessTarget{TruePeak: f.truePeak}
		}
		c.Audio.Loudness.Integrated = f.loudness
	}
	if changed("true-peak") && c.Audio.Loudness != nil {
		c.Audio.Loudness.TruePeak = f.truePeak
	}

	// Stripping
	if changed("strip-subtitles") {
		c.Strip.Subtitles = f.stripSubtitles
	}
	if changed("strip-metadata") {
		c.Strip.Metadata = f.stripMetadata
	}
	if changed("strip-chapters") {
		c.Strip.Chapters = f.stripChapters
	}

	// Comparison
	if changed("compare") {
		c.Compare.Metric = f.metric
	}
	if changed("compare-sync") {
		c.Compare.Sync = f.sync
	}
	if changed("compare-subsample") {
		c.Compare.Subsample = f.subsample
	}
	if changed("compare-threads") {
		c.Compare.Threads = f.threads
	}
	if changed("compare-tool") {
		c.Compare.Tool = f.compareTool
	}

	// Process policy
	if changed("priority") {
		c.Process.Priority = f.priority
	}
	if changed("affinity") {
		c.Process.Affinity = f.affinity
	}

	// Raw options extend whatever the config files listed
	if changed("input-option") {
		opts, err := ParseOptions(f.inputOptions)
		if err != nil {
			return err
		}
		c.InputOptions = append(c.InputOptions, opts...)
	}
	if changed("output-option") {
		opts, err := ParseOptions(f.outputOptions)
		if err != nil {
			return err
		}
		c.OutputOptions = append(c.OutputOptions, opts...)
	}

	// Behavioral flags
	if changed("overwrite") {
		c.Overwrite = f.overwrite
	}
	if changed("simulate") {
		c.Simulate = f.simulate
	}
	if changed("verbose") {
		c.Verbose = f.verbose
	}
	if changed("log-level") {
		c.LogLevel = f.logLevel
	}

	return nil
}

// optionalInt maps the -1 flag sentinel to nil.
func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}
