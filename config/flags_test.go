package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := pflag.NewFlagSet("mediapass", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func TestMergeFromFlags_OnlyChangedFlags(t *testing.T) {
	f := parseFlags(t, "--video-encoder", "libx264")

	cfg := DefaultConfig()
	cfg.Output.Suffix = " from file"
	if err := cfg.MergeFromFlags(f); err != nil {
		t.Fatalf("MergeFromFlags failed: %v", err)
	}

	if cfg.Video.Encoder != "libx264" {
		t.Errorf("Expected encoder 'libx264', got %s", cfg.Video.Encoder)
	}
	// Unset flags leave file values alone, including bool defaults
	if cfg.Output.Suffix != " from file" {
		t.Errorf("Expected suffix ' from file', got %q", cfg.Output.Suffix)
	}
	if !cfg.Output.CreateDirectory || !cfg.Overwrite {
		t.Error("Expected bool defaults to survive")
	}
	if *cfg.Video.Quality != 21 {
		t.Errorf("Expected quality 21, got %d", *cfg.Video.Quality)
	}
}

func TestMergeFromFlags_AllFlags(t *testing.T) {
	f := parseFlags(t,
		"-o", "/tmp/out",
		"--prefix", "x-",
		"--suffix", "",
		"-e", "mkv",
		"-q", "30",
		"-s", "4",
		"--two-pass",
		"--start", "10",
		"--duration", "1:00",
		"--width", "1280",
		"-r", "24000/1001",
		"--tempo", "1.5",
		"--audio-encoder", "",
		"--strip-metadata",
		"--compare", "ssim",
		"--priority", "Idle",
		"--affinity", "0b11",
		"--input-option", "hwaccel=auto",
		"--output-option", "shortest",
		"--overwrite=false",
		"-n",
		"-v",
	)

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(f); err != nil {
		t.Fatalf("MergeFromFlags failed: %v", err)
	}

	if cfg.Output.Directory != "/tmp/out" || cfg.Output.Prefix != "x-" || cfg.Output.Suffix != "" || cfg.Output.Extension != "mkv" {
		t.Errorf("Unexpected output config: %+v", cfg.Output)
	}
	if *cfg.Video.Quality != 30 || *cfg.Video.Speed != 4 || !cfg.Video.TwoPass {
		t.Errorf("Unexpected video config: %+v", cfg.Video)
	}
	if cfg.Filters.Start != "10" || cfg.Filters.Duration != "1:00" || cfg.Filters.Scale.Width != 1280 {
		t.Errorf("Unexpected filter config: %+v", cfg.Filters)
	}
	if cfg.Filters.FrameRate != "24000/1001" || cfg.Filters.Tempo != 1.5 {
		t.Errorf("Unexpected rate config: %+v", cfg.Filters)
	}
	if cfg.AudioEnabled() {
		t.Error("Expected empty audio encoder to disable audio")
	}
	if !cfg.Strip.Metadata || cfg.Compare.Metric != "ssim" {
		t.Errorf("Unexpected strip/compare config: %+v %+v", cfg.Strip, cfg.Compare)
	}
	if cfg.Process.Priority != "Idle" || cfg.Process.Affinity != "0b11" {
		t.Errorf("Unexpected process config: %+v", cfg.Process)
	}
	if len(cfg.InputOptions) != 1 || len(cfg.OutputOptions) != 1 {
		t.Errorf("Expected one raw option each, got %+v / %+v", cfg.InputOptions, cfg.OutputOptions)
	}
	if cfg.Overwrite || !cfg.Simulate || !cfg.Verbose {
		t.Errorf("Unexpected behavioral flags: overwrite=%v simulate=%v verbose=%v", cfg.Overwrite, cfg.Simulate, cfg.Verbose)
	}
}

func TestMergeFromFlags_QualitySentinelUnsets(t *testing.T) {
	f := parseFlags(t, "--quality", "-1", "--video-bitrate", "3Mi")

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(f); err != nil {
		t.Fatalf("MergeFromFlags failed: %v", err)
	}
	if cfg.Video.Quality != nil {
		t.Errorf("Expected quality unset, got %d", *cfg.Video.Quality)
	}
	if cfg.Video.Bitrate != "3Mi" {
		t.Errorf("Expected bitrate '3Mi', got %s", cfg.Video.Bitrate)
	}
}

func TestMergeFromFlags_Loudness(t *testing.T) {
	f := parseFlags(t, "--loudness", "-14")

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(f); err != nil {
		t.Fatalf("MergeFromFlags failed: %v", err)
	}
	if cfg.Audio.Loudness == nil {
		t.Fatal("Expected loudness target")
	}
	if cfg.Audio.Loudness.Integrated != -14 || cfg.Audio.Loudness.TruePeak != -1 {
		t.Errorf("Unexpected loudness: %+v", cfg.Audio.Loudness)
	}

	// --true-peak alone does nothing without a target
	f = parseFlags(t, "--true-peak", "-2")
	cfg = DefaultConfig()
	if err := cfg.MergeFromFlags(f); err != nil {
		t.Fatalf("MergeFromFlags failed: %v", err)
	}
	if cfg.Audio.Loudness != nil {
		t.Errorf("Expected no loudness target, got %+v", cfg.Audio.Loudness)
	}
}

func TestMergeFromFlags_BadRawOption(t *testing.T) {
	f := parseFlags(t, "--output-option", "=oops")

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(f); err == nil {
		t.Error("Expected error for empty option key, got nil")
	}
}
