package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mediapass/command"
	"mediapass/command/audio"
	"mediapass/command/filter"
	"mediapass/command/video"
	"mediapass/config"
	"mediapass/internal/timeutil"
	"mediapass/internal/units"
	"mediapass/models"
	"mediapass/naming"
)

// Build assembles the main pass converting in to outputPath. It never
// spawns a process; the same inputs always produce the same pass. When
// two-pass encoding is enabled the returned pass carries its first pass as
// Prerequisite.
func Build(cfg *config.Config, info models.MediaInfo, in naming.Input, outputPath string) (*command.Pass, error) {
	return BuildWithLogger(cfg, info, in, outputPath, logrus.StandardLogger())
}

// BuildWithLogger is Build reporting ignored settings to log.
func BuildWithLogger(cfg *config.Config, info models.MediaInfo, in naming.Input, outputPath string, log logrus.FieldLogger) (*command.Pass, error) {
	pass := command.NewPass(cfg.FFmpeg, command.TaskTypeEncode)

	pass.Global.Add("hide_banner")
	if cfg.Overwrite {
		pass.Global.Add("y")
	} else {
		pass.Global.Add("n")
	}
	pass.Global.AddValue("loglevel", ffmpegLogLevel(cfg))

	input := pass.AddInput(in.Path)
	out := pass.Output

	// Filters
	fb, trim, err := filterBuilder(cfg.Filters, info)
	if err != nil {
		return nil, err
	}
	filters, err := fb.Build(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := checkFilterTargets(cfg, &filters); err != nil {
		return nil, err
	}
	filters.Apply(out)

	// Video
	vb := video.NewVideoBuilder(cfg.Video.Encoder).
		SetLossless(cfg.Video.Lossless).
		SetQuality(cfg.Video.Quality).
		SetSpeed(cfg.Video.Speed).
		SetFrameSize(filters.Width, filters.Height).
		SetFrameRate(outputFrameRate(cfg.Filters, info)).
		SetPixelFormat(cfg.Video.PixelFormat).
		SetLogger(log)

	bitrate, err := videoBitrate(cfg, info, trim, log)
	if err != nil {
		return nil, err
	}
	vb.SetBitrate(bitrate)

	if err := vb.Apply(out); err != nil {
		return nil, fmt.Errorf("%w: video: %v", ErrConfig, err)
	}

	// Audio
	ab := audio.NewAudioBuilder(cfg.Audio.Encoder).
		SetBitrate(cfg.Audio.Bitrate).
		SetChannels(cfg.Audio.Channels)
	ab.Apply(out)

	// Stripping
	if cfg.Strip.Subtitles {
		out.Add("sn")
	}
	if cfg.Strip.Metadata {
		out.Replace("map_metadata", "-1", true)
	}
	if cfg.Strip.Chapters {
		out.Replace("map_chapters", "-1", true)
	}

	// Raw options win over everything generated
	mergeOptions(input, cfg.InputOptions)
	mergeOptions(out, cfg.OutputOptions)

	pass.Target = outputPath

	if cfg.Video.TwoPass {
		if !cfg.VideoEnabled() || cfg.Video.Encoder == command.Copy {
			return nil, fmt.Errorf("%w: two-pass encoding needs a video encoder, got %q", ErrConfig, cfg.Video.Encoder)
		}
		ChainTwoPass(pass, vb.PresetKey(), ab.Family().TuningKeys())
	}

	return pass, nil
}

// Geometry returns the crop and scale stages Build applies for cfg, so a
// reference stream can be brought to the encoded frame size.
func Geometry(cfg *config.Config, info models.MediaInfo) ([]string, error) {
	fb, _, err := filterBuilder(cfg.Filters, info)
	if err != nil {
		return nil, err
	}
	res, err := fb.Build(command.NewArgList())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return res.Geometry, nil
}

// ffmpegLogLevel keeps ffmpeg quiet unless mediapass itself logs verbosely.
func ffmpegLogLevel(cfg *config.Config) string {
	if cfg.Verbose {
		return "info"
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "trace":
		return "info"
	}
	return "warning"
}

func filterBuilder(fc config.FilterConfig, info models.MediaInfo) (*filter.Builder, filter.Trim, error) {
	var trim filter.Trim
	for _, t := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"start", fc.Start, &trim.Start},
		{"duration", fc.Duration, &trim.Duration},
		{"end", fc.End, &trim.End},
	} {
		d, err := timeutil.Parse(t.value)
		if err != nil {
			return nil, trim, fmt.Errorf("%w: %s: %v", ErrConfig, t.name, err)
		}
		*t.dst = d
	}

	var rate models.Rational
	if fc.FrameRate != "" {
		r, err := models.ParseRational(fc.FrameRate)
		if err != nil || r.Float() <= 0 {
			return nil, trim, fmt.Errorf("%w: frame rate %q", ErrConfig, fc.FrameRate)
		}
		rate = r
	}

	fb := filter.NewBuilder(info).
		Prepend(fc.Prepend).
		ColorRange(fc.ColorRange).
		Trim(trim).
		Crop(filter.Crop{
			Width:  fc.Crop.Width,
			Height: fc.Crop.Height,
			Left:   fc.Crop.Left,
			Top:    fc.Crop.Top,
		}).
		Scale(filter.Scale{
			Width:  fc.Scale.Width,
			Height: fc.Scale.Height,
			Dither: fc.Scale.Dither,
		}).
		FrameRate(rate).
		Tempo(fc.Tempo).
		Append(fc.Append)
	return fb, trim, nil
}

// checkFilterTargets drops chains for disabled streams and rejects chains
// on copied streams, which ffmpeg cannot filter.
func checkFilterTargets(cfg *config.Config, res *filter.Result) error {
	switch cfg.Video.Encoder {
	case "":
		res.Video = nil
	case command.Copy:
		if len(res.Video) > 0 {
			return fmt.Errorf("%w: video filters %q need a video encoder, not copy", ErrConfig, res.VideoGraph())
		}
	}
	switch cfg.Audio.Encoder {
	case "":
		res.Audio = nil
	case command.Copy:
		if len(res.Audio) > 0 {
			return fmt.Errorf("%w: audio filters %q need an audio encoder, not copy", ErrConfig, res.AudioGraph())
		}
	}
	return nil
}

// outputFrameRate is the configured rate, or the source rate sped up by
// the tempo.
func outputFrameRate(fc config.FilterConfig, info models.MediaInfo) float64 {
	if fc.FrameRate != "" {
		if r, err := models.ParseRational(fc.FrameRate); err == nil {
			return r.Float()
		}
	}
	fps := info.FrameRate.Float()
	if fc.Tempo > 0 {
		fps *= fc.Tempo
	}
	return fps
}

// videoBitrate returns the explicit bitrate, or the one derived from the
// target size when no higher priority quality mode is set. An unknown
// duration leaves the bitrate to the encoder's defaults.
func videoBitrate(cfg *config.Config, info models.MediaInfo, trim filter.Trim, log logrus.FieldLogger) (string, error) {
	v := cfg.Video
	if v.Bitrate != "" || v.TargetSize == "" || v.Lossless || v.Quality != nil {
		return v.Bitrate, nil
	}
	if _, err := units.ParseSize(v.TargetSize); err != nil {
		return "", fmt.Errorf("%w: target size: %v", ErrConfig, err)
	}

	duration := encodedDuration(info, trim, cfg.Filters.Tempo)
	if duration <= 0 {
		if log != nil {
			log.WithField("target_size", v.TargetSize).Warn("Source duration unknown, ignoring target size")
		}
		return "", nil
	}

	var reserve units.Bits
	if cfg.AudioEncoded() && cfg.Audio.Bitrate != "" && !audio.DetectFamily(cfg.Audio.Encoder).Lossless() {
		r, err := units.ParseSize(cfg.Audio.Bitrate)
		if err != nil {
			return "", fmt.Errorf("%w: audio bitrate: %v", ErrConfig, err)
		}
		reserve = r
	}

	rate, err := units.TargetBitrate(v.TargetSize, duration, reserve)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return rate, nil
}

// OutputDuration is the expected length of the converted output, or 0
// when the source duration is unknown.
func OutputDuration(cfg *config.Config, info models.MediaInfo) (time.Duration, error) {
	_, trim, err := filterBuilder(cfg.Filters, info)
	if err != nil {
		return 0, err
	}
	d := encodedDuration(info, trim, cfg.Filters.Tempo)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// encodedDuration is the length of the output: the trim window of the
// source, shortened or stretched by the tempo.
func encodedDuration(info models.MediaInfo, trim filter.Trim, tempo float64) time.Duration {
	d := info.Duration - trim.Start
	switch {
	case trim.Duration > 0:
		d = trim.Duration
	case trim.End > 0:
		d = trim.End - trim.Start
	}
	if info.Duration > 0 && trim.Start+d > info.Duration {
		d = info.Duration - trim.Start
	}
	if tempo > 0 {
		d = time.Duration(float64(d) / tempo)
	}
	return d
}

func mergeOptions(dst *command.ArgList, opts config.Options) {
	for _, o := range opts {
		if o.HasValue {
			dst.Replace(o.Key, o.Value, true)
		} else {
			dst.Add(o.Key)
		}
	}
}
