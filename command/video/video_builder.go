// Package video maps encoder-neutral video settings onto the arguments of
// a specific ffmpeg encoder.
package video

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"mediapass/command"
	"mediapass/internal/tiles"
)


// Maximum GOP length for libaom, in frames.
const maxAOMKeyframeInterval = 1440

// VideoBuilder writes the video part of an ffmpeg output argument list.
//
// Quality modes are tried in priority order: lossless, constant quality,
// then bitrate. The first one set wins.
type VideoBuilder struct {
	encoder string
	family  Family

	// Quality settings
	lossless bool
	quality  *int
	bitrate  string

	// Encoder-neutral speed, higher is faster
	speed *int

	// Output frame properties, used for tiling and GOP length
	width, height int
	frameRate     float64

	pixelFormat string

	logger logrus.FieldLogger
}

// NewVideoBuilder creates a video builder for encoder. An empty encoder
// disables video and "copy" copies the stream.
func NewVideoBuilder(encoder string) *VideoBuilder {
	return &VideoBuilder{
		encoder: encoder,
		family:  DetectFamily(encoder),
		logger:  logrus.StandardLogger(),
	}
}

// Family returns the detected encoder family.
func (v *VideoBuilder) Family() Family {
	return v.family
}

// SetLossless enables lossless encoding
func (v *VideoBuilder) SetLossless(lossless bool) *VideoBuilder {
	v.lossless = lossless
	return v
}

// SetQuality sets the constant quality value (crf, qp or cq depending on the family)
func (v *VideoBuilder) SetQuality(quality *int) *VideoBuilder {
	v.quality = quality
	return v
}

// SetBitrate sets the video bitrate (e.g., "2Mi", "160KiB")
func (v *VideoBuilder) SetBitrate(bitrate string) *VideoBuilder {
	v.bitrate = bitrate
	return v
}

// SetSpeed sets the encoder-neutral speed
func (v *VideoBuilder) SetSpeed(speed *int) *VideoBuilder {
	v.speed = speed
	return v
}

// SetFrameSize sets the output frame size after crop and scale
func (v *VideoBuilder) SetFrameSize(width, height int) *VideoBuilder {
	v.width = width
	v.height = height
	return v
}

// SetFrameRate sets the output frame rate
func (v *VideoBuilder) SetFrameRate(fps float64) *VideoBuilder {
	v.frameRate = fps
	return v
}

// SetPixelFormat sets the pixel format (e.g., "yuv420p", "yuv420p10le")
func (v *VideoBuilder) SetPixelFormat(pixfmt string) *VideoBuilder {
	v.pixelFormat = pixfmt
	return v
}

// SetLogger sets the logger used for ignored settings
func (v *VideoBuilder) SetLogger(logger logrus.FieldLogger) *VideoBuilder {
	v.logger = logger
	return v
}

// PresetKey returns the output option that carries the speed preset, or ""
// when the family ignores speed.
func (v *VideoBuilder) PresetKey() string {
	if v.encoder == "" || v.encoder == command.Copy {
		return ""
	}
	return v.family.SpeedKey()
}

// Apply writes the video arguments into out.
func (v *VideoBuilder) Apply(out *command.ArgList) error {
	switch v.encoder {
	case "":
		out.Add("vn")
		return nil
	case command.Copy:
		out.Replace("c:v", command.Copy, true)
		return nil
	}

	spec := families[v.family]
	out.Replace("c:v", v.encoder, true)

	if err := v.applyQuality(out, spec); err != nil {
		return err
	}

	if v.speed != nil {
		if spec.speedKey == "" {
			v.logger.WithField("encoder", v.encoder).Debug("Speed is not mapped for this encoder, ignoring")
		} else {
			preset, err := spec.preset(*v.speed)
			if err != nil {
				return fmt.Errorf("%s: %w", v.encoder, err)
			}
			out.Replace(spec.speedKey, preset, true)
		}
	}

	v.applyTiles(out, spec.tiles)

	if v.pixelFormat != "" {
		out.Replace("pix_fmt", v.pixelFormat, true)
	}

	return nil
}

func (v *VideoBuilder) applyQuality(out *command.ArgList, spec familySpec) error {
	switch {
	case v.lossless:
		if !v.family.SupportsLossless() {
			return fmt.Errorf("%s has no lossless mode", v.encoder)
		}
		for _, kv := range spec.lossless {
			out.Replace(kv[0], kv[1], true)
		}
	case v.quality != nil:
		out.Replace(spec.qualityKey, strconv.Itoa(*v.quality), true)
		for _, kv := range spec.rateControl {
			out.Replace(kv[0], kv[1], true)
		}
	case v.bitrate != "":
		out.Replace("b:v", v.bitrate, true)
	}
	return nil
}

func (v *VideoBuilder) applyTiles(out *command.ArgList, mode tileMode) {
	if mode == tilesNone || v.width <= 0 || v.height <= 0 {
		return
	}

	switch mode {
	case tilesVPX:
		out.Replace("tile-columns", strconv.Itoa(tiles.Capped(v.width, true, 6)), true)
		out.Replace("tile-rows", strconv.Itoa(tiles.Capped(v.height, true, 2)), true)
	case tilesAOM:
		out.Replace("tile-columns", strconv.Itoa(tiles.Count(v.width, true)), true)
		out.Replace("tile-rows", strconv.Itoa(tiles.Count(v.height, true)), true)
		if v.frameRate > 0 {
			gop := int(math.Min(math.Round(v.frameRate*12), maxAOMKeyframeInterval))
			out.Replace("g", strconv.Itoa(gop), true)
		}
	}
	out.Replace("row-mt", "1", true)
}
