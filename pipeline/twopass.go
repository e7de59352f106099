package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"mediapass/command"
)

// ChainTwoPass turns main into the second pass of a two-pass encode and
// attaches a derived first pass as its prerequisite. The first pass keeps
// the video settings, drops speed presets and everything audio, and
// writes to the null muxer. Both passes share the statistics file next to
// the output.
func ChainTwoPass(main *command.Pass, presetKey string, audioTuningKeys []string) *command.Pass {
	main.Output.Replace("pass", "2", true)
	main.Output.Replace("passlogfile", PassLogFile(main.Target), true)

	first := main.Clone()
	first.SetTaskType(command.TaskTypeFirstPass)

	out := first.Output
	out.Replace("pass", "1", true)
	if presetKey != "" {
		out.Remove(presetKey)
	}
	for _, key := range append([]string{"b:a", "ac", "af"}, audioTuningKeys...) {
		out.Remove(key)
	}
	if !out.ReplaceKey("c:a", "an") {
		out.Add("an")
	}
	out.Add("sn")
	out.Replace("map_metadata", "-1", true)
	out.Replace("map_chapters", "-1", true)
	out.Replace("f", "null", true)
	first.Target = os.DevNull

	main.Prerequisite = first
	return first
}

// PassLogFile is the statistics file prefix for an output: the output path
// without its extension.
func PassLogFile(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
}
