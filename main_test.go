package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediapass/pipeline"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Simulate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := execute(t, "--simulate", "--ffprobe", filepath.Join(dir, "missing-ffprobe"), input)
	if err != nil {
		t.Fatalf("Expected no error, got %v (stderr %q)", err, stderr)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 printed command, got %d: %q", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "ffmpeg -hide_banner -y -loglevel warning -i ") {
		t.Errorf("Unexpected command %q", lines[0])
	}
	if !strings.Contains(lines[0], "clip out.webm") {
		t.Errorf("Expected output name in %q", lines[0])
	}
	if !strings.Contains(stderr, "Probe failed") {
		t.Errorf("Expected probe fallback warning, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "clip out.webm")); !os.IsNotExist(err) {
		t.Error("Expected no output file in simulate mode")
	}
}

func TestRootCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "--dry-run", "--video-encoder", "libx264", input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(stdout, "Effective Configuration") || !strings.Contains(stdout, "libx264") {
		t.Errorf("Expected configuration table, got %q", stdout)
	}
}

func TestRootCommand_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "saved", "mediapass.toml")

	if _, _, err := execute(t, "--save-config", path, "--quality", "30", input); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected saved config, got %v", err)
	}
	if !strings.Contains(string(data), "30") {
		t.Errorf("Expected quality in saved config, got %q", data)
	}
}

func TestRootCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		expected error
	}{
		{"no inputs", []string{"--simulate"}, pipeline.ErrConfig},
		{"bad log level", []string{"--simulate", "--log-level", "loud", input}, pipeline.ErrConfig},
		{"missing input", []string{"--simulate", filepath.Join(dir, "nope.mkv")}, pipeline.ErrMissingResource},
		{"missing ffmpeg", []string{"--ffmpeg", filepath.Join(dir, "no-ffmpeg"), input}, pipeline.ErrMissingResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}
