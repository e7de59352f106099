package video

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"mediapass/command"
)

func intPtr(v int) *int { return &v }

func apply(t *testing.T, b *VideoBuilder) []string {
	t.Helper()
	out := command.NewArgList()
	if err := b.Apply(out); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return out.Args()
}

func TestDetectFamily(t *testing.T) {
	tests := map[string]Family{
		"libvpx-vp9": FamilyVPX,
		"libaom-av1": FamilyAOM,
		"libsvtav1":  FamilySVT,
		"libx264":    FamilyX264,
		"libx265":    FamilyX265,
		"libvvenc":   FamilyVVenC,
		"hevc_nvenc": FamilyNVENC,
		"av1_nvenc":  FamilyNVENC,
		"h264_amf":   FamilyAMF,
		"libvpx":     FamilyGeneric,
		"prores_ks":  FamilyGeneric,
	}

	for encoder, expected := range tests {
		if got := DetectFamily(encoder); got != expected {
			t.Errorf("DetectFamily(%q) = %v, expected %v", encoder, got, expected)
		}
	}
}

func TestFamilyPreset(t *testing.T) {
	tests := []struct {
		family   Family
		speed    int
		expected string
		wantErr  bool
	}{
		{FamilyVPX, 0, "0", false},
		{FamilyVPX, 8, "8", false},
		{FamilyVPX, 9, "", true},
		{FamilyAOM, 4, "4", false},
		{FamilySVT, 13, "13", false},
		{FamilySVT, 14, "", true},
		{FamilyX264, 0, "placebo", false},
		{FamilyX264, 1, "veryslow", false},
		{FamilyX264, 4, "medium", false},
		{FamilyX264, 9, "ultrafast", false},
		{FamilyX264, 10, "", true},
		{FamilyX265, 3, "slow", false},
		{FamilyVVenC, 0, "slower", false},
		{FamilyVVenC, 2, "medium", false},
		{FamilyVVenC, 4, "faster", false},
		{FamilyVVenC, 5, "", true},
		{FamilyNVENC, 0, "p7", false},
		{FamilyNVENC, 6, "p1", false},
		{FamilyNVENC, 7, "", true},
		{FamilyAMF, 0, "high_quality", false},
		{FamilyAMF, 1, "quality", false},
		{FamilyAMF, 2, "balanced", false},
		{FamilyAMF, 3, "speed", false},
		{FamilyAMF, 4, "", true},
		{FamilyGeneric, 1, "", true},
		{FamilyVPX, -1, "", true},
	}

	for _, tt := range tests {
		got, err := tt.family.Preset(tt.speed)
		if (err != nil) != tt.wantErr {
			t.Errorf("%v.Preset(%d) error = %v, wantErr %v", tt.family, tt.speed, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("%v.Preset(%d) = %q, expected %q", tt.family, tt.speed, got, tt.expected)
		}
	}
}

func TestVideoBuilder_Disabled(t *testing.T) {
	args := apply(t, NewVideoBuilder("").SetQuality(intPtr(20)).SetSpeed(intPtr(2)).SetBitrate("1M"))
	if !reflect.DeepEqual(args, []string{"-vn"}) {
		t.Errorf("Expected only -vn, got %v", args)
	}
}

func TestVideoBuilder_Copy(t *testing.T) {
	args := apply(t, NewVideoBuilder("copy").SetQuality(intPtr(20)).SetSpeed(intPtr(2)))
	if !reflect.DeepEqual(args, []string{"-c:v", "copy"}) {
		t.Errorf("Expected only -c:v copy, got %v", args)
	}
}

func TestVideoBuilder_Quality(t *testing.T) {
	tests := []struct {
		encoder  string
		expected []string
	}{
		{"libvpx-vp9", []string{"-c:v", "libvpx-vp9", "-crf", "30", "-b:v", "0"}},
		{"libaom-av1", []string{"-c:v", "libaom-av1", "-crf", "30"}},
		{"libsvtav1", []string{"-c:v", "libsvtav1", "-crf", "30"}},
		{"libx264", []string{"-c:v", "libx264", "-crf", "30"}},
		{"libvvenc", []string{"-c:v", "libvvenc", "-qp", "30"}},
		{"hevc_nvenc", []string{"-c:v", "hevc_nvenc", "-cq", "30", "-rc", "vbr"}},
		{"hevc_amf", []string{"-c:v", "hevc_amf", "-qvbr_quality_level", "30", "-rc", "qvbr"}},
		{"mpeg4", []string{"-c:v", "mpeg4", "-crf", "30"}},
	}

	for _, tt := range tests {
		args := apply(t, NewVideoBuilder(tt.encoder).SetQuality(intPtr(30)).SetBitrate("2M"))
		if !reflect.DeepEqual(args, tt.expected) {
			t.Errorf("%s: expected %v, got %v", tt.encoder, tt.expected, args)
		}
	}
}

func TestVideoBuilder_Lossless(t *testing.T) {
	tests := []struct {
		encoder  string
		expected []string
		wantErr  bool
	}{
		{"libvpx-vp9", []string{"-c:v", "libvpx-vp9", "-lossless", "1"}, false},
		{"libaom-av1", []string{"-c:v", "libaom-av1", "-aom-params", "lossless=1"}, false},
		{"libsvtav1", []string{"-c:v", "libsvtav1", "-svtav1-params", "lossless=1"}, false},
		{"libx264", []string{"-c:v", "libx264", "-qp", "0"}, false},
		{"libx265", []string{"-c:v", "libx265", "-x265-params", "lossless=1"}, false},
		{"h264_nvenc", []string{"-c:v", "h264_nvenc", "-tune", "lossless"}, false},
		{"libvvenc", nil, true},
		{"av1_amf", nil, true},
		{"mpeg4", nil, true},
	}

	for _, tt := range tests {
		out := command.NewArgList()
		// Lossless outranks quality
		err := NewVideoBuilder(tt.encoder).SetLossless(true).SetQuality(intPtr(30)).Apply(out)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.encoder, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !strings.Contains(err.Error(), tt.encoder) {
				t.Errorf("%s: expected error to name the encoder, got %v", tt.encoder, err)
			}
			continue
		}
		if !reflect.DeepEqual(out.Args(), tt.expected) {
			t.Errorf("%s: expected %v, got %v", tt.encoder, tt.expected, out.Args())
		}
	}
}

func TestVideoBuilder_Bitrate(t *testing.T) {
	args := apply(t, NewVideoBuilder("libx265").SetBitrate("964.3Ki"))
	expected := []string{"-c:v", "libx265", "-b:v", "964.3Ki"}
	if !reflect.DeepEqual(args, expected) {
		t.Errorf("Expected %v, got %v", expected, args)
	}
}

func TestVideoBuilder_SpeedAndPixelFormat(t *testing.T) {
	args := apply(t, NewVideoBuilder("libx264").SetQuality(intPtr(18)).SetSpeed(intPtr(2)).SetPixelFormat("yuv420p10le"))
	expected := []string{"-c:v", "libx264", "-crf", "18", "-preset", "slower", "-pix_fmt", "yuv420p10le"}
	if !reflect.DeepEqual(args, expected) {
		t.Errorf("Expected %v, got %v", expected, args)
	}
}

func TestVideoBuilder_InvalidSpeed(t *testing.T) {
	err := NewVideoBuilder("libsvtav1").SetSpeed(intPtr(20)).Apply(command.NewArgList())
	if err == nil {
		t.Fatal("Expected error for speed 20, got nil")
	}
	if !strings.Contains(err.Error(), "libsvtav1") {
		t.Errorf("Expected error to name the encoder, got %v", err)
	}
}

func TestVideoBuilder_GenericIgnoresSpeed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	args := apply(t, NewVideoBuilder("mpeg4").SetSpeed(intPtr(3)).SetLogger(logger))
	if !reflect.DeepEqual(args, []string{"-c:v", "mpeg4"}) {
		t.Errorf("Expected only the encoder, got %v", args)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.DebugLevel {
		t.Error("Expected a debug entry about the ignored speed")
	}
}

func TestVideoBuilder_VPXTiles(t *testing.T) {
	out := command.NewArgList()
	err := NewVideoBuilder("libvpx-vp9").SetQuality(intPtr(31)).SetSpeed(intPtr(1)).SetFrameSize(3840, 2160).Apply(out)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	checks := map[string]string{"cpu-used": "1", "tile-columns": "2", "tile-rows": "1", "row-mt": "1"}
	for key, expected := range checks {
		if v, ok := out.Value(key); !ok || v != expected {
			t.Errorf("Expected -%s %s, got %q (present %v)", key, expected, v, ok)
		}
	}
	if out.Contains("g") {
		t.Error("VP9 should not get a GOP bound")
	}
}

func TestVideoBuilder_VPXTileCaps(t *testing.T) {
	out := command.NewArgList()
	// 2^20 px wide would want 10 log2 columns
	if err := NewVideoBuilder("libvpx-vp9").SetFrameSize(1<<20, 1<<20).Apply(out); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if v, _ := out.Value("tile-columns"); v != "6" {
		t.Errorf("Expected tile-columns capped at 6, got %s", v)
	}
	if v, _ := out.Value("tile-rows"); v != "2" {
		t.Errorf("Expected tile-rows capped at 2, got %s", v)
	}
}

func TestVideoBuilder_AOMTilesAndGOP(t *testing.T) {
	tests := []struct {
		fps      float64
		expected string
	}{
		{30, "360"},
		{60, "720"},
		{144, "1440"},
		{240, "1440"},
	}

	for _, tt := range tests {
		out := command.NewArgList()
		if err := NewVideoBuilder("libaom-av1").SetFrameSize(7680, 4320).SetFrameRate(tt.fps).Apply(out); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if v, _ := out.Value("g"); v != tt.expected {
			t.Errorf("fps %g: expected -g %s, got %s", tt.fps, tt.expected, v)
		}
		if v, _ := out.Value("tile-columns"); v != "3" {
			t.Errorf("Expected tile-columns 3 for 7680, got %s", v)
		}
		if !out.Contains("row-mt") {
			t.Error("Expected -row-mt")
		}
	}
}

func TestVideoBuilder_NoTilesWithoutFrameSize(t *testing.T) {
	out := command.NewArgList()
	if err := NewVideoBuilder("libvpx-vp9").Apply(out); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Contains("tile-columns") || out.Contains("row-mt") {
		t.Errorf("Expected no tiling without a frame size, got %v", out.Args())
	}
}

func TestVideoBuilder_PresetKey(t *testing.T) {
	tests := map[string]string{
		"libvpx-vp9": "cpu-used",
		"libsvtav1":  "preset",
		"h264_amf":   "quality",
		"mpeg4":      "",
		"copy":       "",
		"":           "",
	}
	for encoder, expected := range tests {
		if got := NewVideoBuilder(encoder).PresetKey(); got != expected {
			t.Errorf("PresetKey(%q) = %q, expected %q", encoder, got, expected)
		}
	}
}
