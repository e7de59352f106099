// Package audio maps encoder-neutral audio settings onto ffmpeg output
// arguments.
package audio

import (
	"strconv"
	"strings"

	"mediapass/command"
)


// Family groups audio encoders by their tuning needs.
type Family int

const (
	FamilyGeneric Family = iota
	FamilyOpus
	FamilyFLAC
	FamilyMP3
	FamilyPCM
)

type familySpec struct {
	name     string
	lossless bool        // No meaningful bitrate
	tuning   [][2]string // Fixed options appended after the bitrate
}

var families = map[Family]familySpec{
	FamilyGeneric: {name: "generic"},
	FamilyOpus: {
		name:   "opus",
		tuning: [][2]string{{"frame_duration", "60"}},
	},
	FamilyFLAC: {
		name:     "flac",
		lossless: true,
		tuning:   [][2]string{{"compression_level", "12"}},
	},
	FamilyMP3: {
		name:   "mp3",
		tuning: [][2]string{{"abr", "1"}, {"compression_level", "0"}},
	},
	FamilyPCM: {
		name:     "pcm",
		lossless: true,
	},
}

// DetectFamily maps an ffmpeg audio encoder name onto its family.
func DetectFamily(encoder string) Family {
	switch {
	case encoder == "libopus" || encoder == "opus":
		return FamilyOpus
	case encoder == "flac":
		return FamilyFLAC
	case encoder == "libmp3lame":
		return FamilyMP3
	case strings.HasPrefix(encoder, "pcm_"):
		return FamilyPCM
	default:
		return FamilyGeneric
	}
}

func (f Family) String() string {
	return families[f].name
}

// Lossless reports whether the family ignores bitrate.
func (f Family) Lossless() bool {
	return families[f].lossless
}

// TuningKeys lists the fixed options the family adds.
func (f Family) TuningKeys() []string {
	var keys []string
	for _, kv := range families[f].tuning {
		keys = append(keys, kv[0])
	}
	return keys
}

// AudioBuilder writes the audio part of an ffmpeg output argument list.
type AudioBuilder struct {
	encoder  string
	family   Family
	bitrate  string
	channels int
}

// NewAudioBuilder creates an audio builder for encoder. An empty encoder
// disables audio and "copy" copies the stream.
func NewAudioBuilder(encoder string) *AudioBuilder {
	return &AudioBuilder{
		encoder: encoder,
		family:  DetectFamily(encoder),
	}
}

// Family returns the detected encoder family.
func (a *AudioBuilder) Family() Family {
	return a.family
}

// SetBitrate sets the audio bitrate (e.g., "128Ki", "192k").
func (a *AudioBuilder) SetBitrate(bitrate string) *AudioBuilder {
	a.bitrate = bitrate
	return a
}

// SetChannels sets the number of audio channels (0 keeps the source layout).
func (a *AudioBuilder) SetChannels(channels int) *AudioBuilder {
	a.channels = channels
	return a
}

// Apply writes the audio arguments into out.
func (a *AudioBuilder) Apply(out *command.ArgList) {
	switch a.encoder {
	case "":
		out.Add("an")
		return
	case command.Copy:
		out.Replace("c:a", command.Copy, true)
		return
	}

	spec := families[a.family]
	out.Replace("c:a", a.encoder, true)

	if a.bitrate != "" && !spec.lossless {
		out.Replace("b:a", a.bitrate, true)
	}

	if a.channels > 0 {
		out.Replace("ac", strconv.Itoa(a.channels), true)
	}

	for _, kv := range spec.tuning {
		out.Replace(kv[0], kv[1], true)
	}
}
