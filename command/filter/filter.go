// Package filter assembles the video and audio filter chains of an encode.
//
// Stages are always emitted in the same order regardless of the order the
// builder methods are called in:
//
//	prepend, color range, trim, crop, scale, frame blend, tempo, frame rate, append
//
// Trim is not a filter stage: it becomes -ss/-t on the input argument list.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mediapass/command"
	"mediapass/internal/timeutil"
	"mediapass/models"
)

// Minimum frame multiplier before consecutive frames are blended.
const blendThreshold = 1.5

// Trim selects a window of the input. Duration wins over End.
type Trim struct {
	Start    time.Duration
	Duration time.Duration
	End      time.Duration
}

// Crop removes borders. Zero fields are unset.
type Crop struct {
	Width, Height, Left, Top int
}

// Scale resizes the frame. A zero dimension keeps the aspect ratio.
type Scale struct {
	Width, Height int
	Dither        bool
}

// Result is the outcome of Build.
type Result struct {
	Video []string // Video filter stages in order
	Audio []string // Audio filter stages in order

	// Geometry is the crop and scale stages alone, used to bring a
	// reference stream to the encoded frame size.
	Geometry []string

	// Output frame size after crop and scale. Zero when unknown.
	Width, Height int
}

// VideoGraph joins the video stages into one filter expression.
func (r Result) VideoGraph() string { return strings.Join(r.Video, ",") }

// AudioGraph joins the audio stages into one filter expression.
func (r Result) AudioGraph() string { return strings.Join(r.Audio, ",") }

// Apply writes vf/af to the output list when the chains are non-empty.
func (r Result) Apply(out *command.ArgList) {
	if len(r.Video) > 0 {
		out.Replace("vf", r.VideoGraph(), true)
	}
	if len(r.Audio) > 0 {
		out.Replace("af", r.AudioGraph(), true)
	}
}

// Builder collects filter settings for one input.
type Builder struct {
	info models.MediaInfo

	prepend    string
	append     string
	colorRange string
	trim       Trim
	crop       Crop
	scale      Scale
	frameRate  models.Rational
	tempo      float64
}

// NewBuilder creates a filter builder for a probed input.
func NewBuilder(info models.MediaInfo) *Builder {
	return &Builder{info: info, tempo: 1}
}

// Prepend sets a raw filter placed before every generated stage.
func (b *Builder) Prepend(filter string) *Builder {
	b.prepend = filter
	return b
}

// Append sets a raw filter placed after every generated stage.
func (b *Builder) Append(filter string) *Builder {
	b.append = filter
	return b
}

// ColorRange converts to "full" or "limited" when the source differs.
func (b *Builder) ColorRange(target string) *Builder {
	b.colorRange = target
	return b
}

// Trim sets the input window.
func (b *Builder) Trim(t Trim) *Builder {
	b.trim = t
	return b
}

// Crop sets the crop rectangle.
func (b *Builder) Crop(c Crop) *Builder {
	b.crop = c
	return b
}

// Scale sets the output size.
func (b *Builder) Scale(s Scale) *Builder {
	b.scale = s
	return b
}

// FrameRate sets the output frame rate. A zero rational keeps the source rate.
func (b *Builder) FrameRate(r models.Rational) *Builder {
	b.frameRate = r
	return b
}

// Tempo sets the playback speed multiplier. 0 and 1 leave speed unchanged.
func (b *Builder) Tempo(t float64) *Builder {
	if t == 0 {
		t = 1
	}
	b.tempo = t
	return b
}

// Build emits the trim options into input and returns the filter chains.
func (b *Builder) Build(input *command.ArgList) (Result, error) {
	res := Result{Width: b.info.Width, Height: b.info.Height}

	if b.prepend != "" {
		res.Video = append(res.Video, b.prepend)
	}

	if stage := b.colorRangeStage(); stage != "" {
		res.Video = append(res.Video, stage)
	}

	if err := b.applyTrim(input); err != nil {
		return Result{}, err
	}

	if stage := b.cropStage(&res); stage != "" {
		res.Video = append(res.Video, stage)
		res.Geometry = append(res.Geometry, stage)
	}

	if stage := b.scaleStage(&res); stage != "" {
		res.Video = append(res.Video, stage)
		res.Geometry = append(res.Geometry, stage)
	}

	if frames := b.blendFrames(); frames > 0 {
		res.Video = append(res.Video, fmt.Sprintf("tmix=frames=%d", frames))
	}

	if b.tempo != 1 {
		res.Video = append(res.Video, "setpts=PTS/"+formatFloat(b.tempo))
		res.Audio = append(res.Audio, TempoChain(b.tempo)...)
	}

	if !b.frameRate.IsZero() {
		res.Video = append(res.Video, "fps="+b.frameRate.String())
	}

	if b.append != "" {
		res.Video = append(res.Video, b.append)
	}

	return res, nil
}

func (b *Builder) colorRangeStage() string {
	if b.colorRange == "" || b.colorRange == b.info.ColorRange {
		return ""
	}
	src := b.info.ColorRange
	if src == "" || src == models.ColorRangeUnknown {
		src = "auto"
	}
	return fmt.Sprintf("scale=in_range=%s:out_range=%s", src, b.colorRange)
}

func (b *Builder) applyTrim(input *command.ArgList) error {
	t := b.trim
	if t.Start > 0 {
		input.Replace("ss", timeutil.Format(t.Start), true)
	}

	length := t.Duration
	if length == 0 && t.End > 0 {
		if t.End <= t.Start {
			return fmt.Errorf("trim end %s is not after start %s", timeutil.Format(t.End), timeutil.Format(t.Start))
		}
		length = t.End - t.Start
	}
	if length > 0 {
		input.Replace("t", timeutil.Format(length), true)
	}
	return nil
}

func (b *Builder) cropStage(res *Result) string {
	c := b.crop
	if c.Width == 0 && c.Height == 0 && c.Left == 0 && c.Top == 0 {
		return ""
	}

	var params []string
	switch {
	case c.Width > 0:
		params = append(params, "w="+strconv.Itoa(c.Width))
		res.Width = c.Width
	case c.Left > 0:
		params = append(params, fmt.Sprintf("w=iw-%d", c.Left))
		if res.Width > 0 {
			res.Width -= c.Left
		}
	}
	switch {
	case c.Height > 0:
		params = append(params, "h="+strconv.Itoa(c.Height))
		res.Height = c.Height
	case c.Top > 0:
		params = append(params, fmt.Sprintf("h=ih-%d", c.Top))
		if res.Height > 0 {
			res.Height -= c.Top
		}
	}
	if c.Left > 0 {
		params = append(params, "x="+strconv.Itoa(c.Left))
	}
	if c.Top > 0 {
		params = append(params, "y="+strconv.Itoa(c.Top))
	}
	return "crop=" + strings.Join(params, ":")
}

func (b *Builder) scaleStage(res *Result) string {
	s := b.scale
	if s.Width == 0 && s.Height == 0 {
		return ""
	}

	w, h := "-2", "-2"
	switch {
	case s.Width > 0 && s.Height > 0:
		res.Width, res.Height = s.Width, s.Height
	case s.Width > 0:
		res.Height = aspectSide(s.Width, res.Height, res.Width)
		res.Width = s.Width
	default:
		res.Width = aspectSide(s.Height, res.Width, res.Height)
		res.Height = s.Height
	}
	if s.Width > 0 {
		w = strconv.Itoa(s.Width)
	}
	if s.Height > 0 {
		h = strconv.Itoa(s.Height)
	}

	stage := "scale=" + w + ":" + h
	if s.Dither {
		stage += ":sws_dither=ed"
	}
	return stage
}

// aspectSide scales other by given/side, rounded to an even number like
// ffmpeg's -2.
func aspectSide(given, other, side int) int {
	if side <= 0 || other <= 0 {
		return 0
	}
	v := float64(given) * float64(other) / float64(side)
	return int(math.Round(v/2)) * 2
}

// blendFrames returns how many frames tmix should blend, or 0. Only real
// probe values are trusted.
func (b *Builder) blendFrames() int {
	if !b.info.RealValues {
		return 0
	}
	src := b.info.FrameRate.Float()
	if src <= 0 {
		return 0
	}
	dst := src
	if !b.frameRate.IsZero() {
		dst = b.frameRate.Float()
	}
	multiplier := b.tempo / (src / dst)
	if multiplier <= blendThreshold {
		return 0
	}
	return int(math.Round(multiplier))
}

// TempoChain splits a tempo factor into atempo stages. atempo only accepts
// 0.5..100 per instance, so factors below 0.5 are reached by chaining 0.5
// stages and a final residual stage.
func TempoChain(tempo float64) []string {
	if tempo <= 0 {
		return nil
	}
	var stages []string
	residual := tempo
	for residual < 0.5 {
		stages = append(stages, "atempo=0.5")
		residual *= 2
	}
	return append(stages, "atempo="+formatFloat(residual))
}

// formatFloat prints f with at most six decimals and no trailing zeros.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
