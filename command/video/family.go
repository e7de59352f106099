package video

import (
	"fmt"
	"strconv"
	"strings"
)

// Family groups encoders that share an argument convention.
type Family int

const (
	FamilyGeneric Family = iota
	FamilyVPX            // libvpx-vp9
	FamilyAOM            // libaom-av1
	FamilySVT            // libsvtav1
	FamilyX264           // libx264
	FamilyX265           // libx265
	FamilyVVenC          // libvvenc
	FamilyNVENC          // *_nvenc
	FamilyAMF            // *_amf
)

// tileMode selects how tile parameters are injected.
type tileMode int

const (
	tilesNone tileMode = iota
	tilesVPX           // log2 columns capped at 6, rows at 2
	tilesAOM           // log2 uncapped, plus a GOP bound
)

// familySpec is everything that differs between families, as data.
type familySpec struct {
	name string

	// Constant quality: qualityKey <q>, plus rateControl when set
	qualityKey  string
	rateControl [][2]string

	// Lossless arguments; nil means the family has no lossless mode
	lossless [][2]string

	// Speed mapping; speedKey "" means speed is ignored
	speedKey string
	preset   func(speed int) (string, error)

	tiles tileMode
}

var (
	x26xPresets  = []string{"ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow", "placebo"}
	vvencPresets = []string{"faster", "fast", "medium", "slow", "slower"}
	amfQuality   = []string{"high_quality", "quality", "balanced", "speed"}
)

var families = map[Family]familySpec{
	FamilyVPX: {
		name:        "vpx",
		qualityKey:  "crf",
		rateControl: [][2]string{{"b:v", "0"}},
		lossless:    [][2]string{{"lossless", "1"}},
		speedKey:    "cpu-used",
		preset:      direct(0, 8),
		tiles:       tilesVPX,
	},
	FamilyAOM: {
		name:       "aom",
		qualityKey: "crf",
		lossless:   [][2]string{{"aom-params", "lossless=1"}},
		speedKey:   "cpu-used",
		preset:     direct(0, 8),
		tiles:      tilesAOM,
	},
	FamilySVT: {
		name:       "svt",
		qualityKey: "crf",
		lossless:   [][2]string{{"svtav1-params", "lossless=1"}},
		speedKey:   "preset",
		preset:     direct(0, 13),
	},
	FamilyX264: {
		name:       "x264",
		qualityKey: "crf",
		lossless:   [][2]string{{"qp", "0"}},
		speedKey:   "preset",
		preset:     reversed(x26xPresets, 9),
	},
	FamilyX265: {
		name:       "x265",
		qualityKey: "crf",
		lossless:   [][2]string{{"x265-params", "lossless=1"}},
		speedKey:   "preset",
		preset:     reversed(x26xPresets, 9),
	},
	FamilyVVenC: {
		name:       "vvenc",
		qualityKey: "qp",
		speedKey:   "preset",
		preset:     reversed(vvencPresets, 4),
	},
	FamilyNVENC: {
		name:        "nvenc",
		qualityKey:  "cq",
		rateControl: [][2]string{{"rc", "vbr"}},
		lossless:    [][2]string{{"tune", "lossless"}},
		speedKey:    "preset",
		preset:      nvencPreset,
	},
	FamilyAMF: {
		name:        "amf",
		qualityKey:  "qvbr_quality_level",
		rateControl: [][2]string{{"rc", "qvbr"}},
		speedKey:    "quality",
		preset:      reversed(amfQuality, 0),
	},
	FamilyGeneric: {
		name:       "generic",
		qualityKey: "crf",
	},
}

// DetectFamily maps an ffmpeg encoder name onto its family.
func DetectFamily(encoder string) Family {
	switch {
	case encoder == "libvpx-vp9":
		return FamilyVPX
	case encoder == "libaom-av1":
		return FamilyAOM
	case encoder == "libsvtav1":
		return FamilySVT
	case encoder == "libx264":
		return FamilyX264
	case encoder == "libx265":
		return FamilyX265
	case encoder == "libvvenc":
		return FamilyVVenC
	case strings.HasSuffix(encoder, "_nvenc"):
		return FamilyNVENC
	case strings.HasSuffix(encoder, "_amf"):
		return FamilyAMF
	default:
		return FamilyGeneric
	}
}

func (f Family) String() string {
	return families[f].name
}

// SpeedKey returns the output option the family's speed maps to, or "".
func (f Family) SpeedKey() string {
	return families[f].speedKey
}

// SupportsLossless reports whether the family has a lossless mode.
func (f Family) SupportsLossless() bool {
	return families[f].lossless != nil
}

// Preset maps an encoder-neutral speed (higher = faster) onto the family's
// preset value.
func (f Family) Preset(speed int) (string, error) {
	spec := families[f]
	if spec.preset == nil {
		return "", fmt.Errorf("%s encoders have no speed setting", spec.name)
	}
	return spec.preset(speed)
}

// direct passes the speed through when it lies in [min, max].
func direct(min, max int) func(int) (string, error) {
	return func(speed int) (string, error) {
		if speed < min || speed > max {
			return "", fmt.Errorf("speed %d out of range %d-%d", speed, min, max)
		}
		return strconv.Itoa(speed), nil
	}
}

// reversed picks names[offset-speed]. An offset of 0 indexes names[speed]
// directly, for tables already ordered slowest first.
func reversed(names []string, offset int) func(int) (string, error) {
	return func(speed int) (string, error) {
		i := speed
		if offset > 0 {
			i = offset - speed
		}
		if i < 0 || i >= len(names) {
			return "", fmt.Errorf("speed %d out of range 0-%d", speed, len(names)-1)
		}
		return names[i], nil
	}
}

// nvencPreset maps speed 0..6 onto p7 (slowest) .. p1 (fastest).
func nvencPreset(speed int) (string, error) {
	if speed < 0 || speed > 6 {
		return "", fmt.Errorf("speed %d out of range 0-6", speed)
	}
	return "p" + strconv.Itoa(7-speed), nil
}
