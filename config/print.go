package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"mediapass/command"
)

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Effective Configuration")
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Setting", "Value"})

	section := func(name string) {
		t.AppendSeparator()
		t.AppendRow(table.Row{strings.ToUpper(name), ""})
	}

	t.AppendRow(table.Row{"Config files", orNone(strings.Join(c.Sources, ", "))})
	t.AppendRow(table.Row{"Inputs", orNone(strings.Join(c.Inputs, ", "))})
	t.AppendRow(table.Row{"ffmpeg", c.FFmpeg})
	t.AppendRow(table.Row{"ffprobe", orNone(c.FFprobe)})

	section("output")
	t.AppendRow(table.Row{"Directory", orNone(c.Output.Directory)})
	t.AppendRow(table.Row{"Name", fmt.Sprintf("%q + <name> + %q", c.Output.Prefix, c.Output.Suffix)})
	t.AppendRow(table.Row{"Extension", orNone(c.Output.Extension)})

	section("video")
	t.AppendRow(table.Row{"Encoder", disabled(c.Video.Encoder)})
	if c.VideoEnabled() && c.Video.Encoder != command.Copy {
		switch {
		case c.Video.Lossless:
			t.AppendRow(table.Row{"Mode", "lossless"})
		case c.Video.Quality != nil:
			t.AppendRow(table.Row{"Quality", *c.Video.Quality})
		case c.Video.TargetSize != "":
			t.AppendRow(table.Row{"Target size", c.Video.TargetSize})
		case c.Video.Bitrate != "":
			t.AppendRow(table.Row{"Bitrate", c.Video.Bitrate})
		}
		if c.Video.Speed != nil {
			t.AppendRow(table.Row{"Speed", *c.Video.Speed})
		}
		t.AppendRow(table.Row{"Two-pass", c.Video.TwoPass})
	}

	section("audio")
	t.AppendRow(table.Row{"Encoder", disabled(c.Audio.Encoder)})
	if c.AudioEncoded() {
		t.AppendRow(table.Row{"Bitrate", orNone(c.Audio.Bitrate)})
		if c.Audio.Channels > 0 {
			t.AppendRow(table.Row{"Channels", c.Audio.Channels})
		}
		if l := c.Audio.Loudness; l != nil {
			t.AppendRow(table.Row{"Loudness", fmt.Sprintf("%g LUFS, %g dBTP", l.Integrated, l.TruePeak)})
		}
	}

	section("filters")
	if c.Filters.Start != "" || c.Filters.Duration != "" || c.Filters.End != "" {
		t.AppendRow(table.Row{"Trim", fmt.Sprintf("start=%s duration=%s end=%s",
			orNone(c.Filters.Start), orNone(c.Filters.Duration), orNone(c.Filters.End))})
	}
	if c.Filters.Scale.Width > 0 || c.Filters.Scale.Height > 0 {
		t.AppendRow(table.Row{"Scale", fmt.Sprintf("%dx%d", c.Filters.Scale.Width, c.Filters.Scale.Height)})
	}
	if c.Filters.FrameRate != "" {
		t.AppendRow(table.Row{"Frame rate", c.Filters.FrameRate})
	}
	if c.Filters.Tempo != 0 && c.Filters.Tempo != 1 {
		t.AppendRow(table.Row{"Tempo", c.Filters.Tempo})
	}

	section("run")
	t.AppendRow(table.Row{"Compare", orNone(c.Compare.Metric)})
	t.AppendRow(table.Row{"Priority", c.Process.Priority})
	t.AppendRow(table.Row{"Affinity", orNone(c.Process.Affinity)})
	t.AppendRow(table.Row{"Overwrite", c.Overwrite})
	t.AppendRow(table.Row{"Simulate", c.Simulate})

	t.Render()
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func disabled(encoder string) string {
	if encoder == "" {
		return "disabled"
	}
	return encoder
}
