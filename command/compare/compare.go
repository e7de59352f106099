// Package compare builds the passes that score an encoded output against
// its source.
package compare

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"mediapass/command"
)

// Supported metrics.
const (
	MetricVMAF        = "libvmaf"
	MetricSSIM        = "ssim"
	MetricXPSNR       = "xpsnr"
	MetricSSIMULACRA2 = "ssimulacra2"
)

// Sync modes.
const (
	SyncFrameRate = "framerate" // Force both inputs to 1 fps
	SyncNearest   = "nearest"   // Pair frames by nearest timestamp
)

// Metrics lists the supported metrics.
func Metrics() []string {
	return []string{MetricVMAF, MetricSSIM, MetricXPSNR, MetricSSIMULACRA2}
}

// Model used for VMAF scoring.
const vmafModel = "vmaf_v0.6.1"

// Settings selects the comparison.
type Settings struct {
	Metric    string
	Sync      string
	Subsample int    // Compare every Nth frame; 0 or 1 compares all
	Threads   int    // libvmaf threads; 0 = NumCPU
	Tool      string // ssimulacra2 executable

	// Crop/scale stages applied to the reference so both frames match
	Geometry []string
}

// NewPass builds the comparison for a finished main pass. For ssimulacra2
// it returns an ExternalCommand, for every other metric a dual-input
// ffmpeg pass writing to the null muxer.
func NewPass(main *command.Pass, s Settings) (command.Command, error) {
	inputs := main.InputPaths()
	if len(inputs) == 0 || main.Target == "" {
		return nil, fmt.Errorf("compare: main pass needs an input and an output")
	}
	source, distorted := inputs[0], main.Target

	if s.Metric == MetricSSIMULACRA2 {
		return NewExternalCommand(s.Tool, source, distorted, s.Subsample), nil
	}

	metric, err := metricFilter(s)
	if err != nil {
		return nil, err
	}

	pass := command.NewPass(main.Executable(), command.TaskTypeCompare)
	main.Global.CopyTo(pass.Global)
	// Scores are printed at info level
	pass.Global.Replace("loglevel", "info", true)
	pass.Global.Add("nostats")

	dist := pass.AddInput(distorted)
	ref := pass.AddInput(source)

	// The reference covers the same window as the encode
	if mainIn, ok := main.Input(source); ok {
		for _, key := range []string{"ss", "t"} {
			if v, ok := mainIn.Value(key); ok {
				ref.Replace(key, v, true)
			}
		}
	}

	if s.Sync == SyncFrameRate {
		dist.Replace("r", "1", true)
		ref.Replace("r", "1", true)
	}

	var selectStages []string
	if s.Subsample > 1 {
		selectStages = []string{fmt.Sprintf(`select='not(mod(n\,%d))'`, s.Subsample)}
	}

	var graph []string
	distPad, stmt := branch("0:v", "dist", selectStages)
	if stmt != "" {
		graph = append(graph, stmt)
	}
	refPad, stmt := branch("1:v", "ref", append(append([]string(nil), s.Geometry...), selectStages...))
	if stmt != "" {
		graph = append(graph, stmt)
	}
	graph = append(graph, distPad+refPad+metric)

	pass.Output.AddValue("filter_complex", strings.Join(graph, ";"))
	pass.Output.Add("an")
	pass.Output.AddValue("f", "null")
	pass.Target = os.DevNull

	return pass, nil
}

// branch labels a filtered input stream. With no stages the input pad is
// used directly.
func branch(input, label string, stages []string) (pad, stmt string) {
	if len(stages) == 0 {
		return "[" + input + "]", ""
	}
	return "[" + label + "]", "[" + input + "]" + strings.Join(stages, ",") + "[" + label + "]"
}

func metricFilter(s Settings) (string, error) {
	var opts []string
	switch s.Metric {
	case MetricVMAF:
		threads := s.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		opts = append(opts, "model=version="+vmafModel, "n_threads="+strconv.Itoa(threads))
	case MetricSSIM, MetricXPSNR:
	default:
		return "", fmt.Errorf("unsupported comparison metric %q", s.Metric)
	}

	if s.Sync == SyncNearest {
		opts = append(opts, "ts_sync_mode=nearest")
	}

	if len(opts) == 0 {
		return s.Metric, nil
	}
	return s.Metric + "=" + strings.Join(opts, ":"), nil
}

// ExternalCommand runs a standalone comparison tool:
// <tool> <reference> <distorted> <interval>.
type ExternalCommand struct {
	tool      string
	reference string
	distorted string
	interval  int
}

// NewExternalCommand creates the ssimulacra2 invocation. An interval below
// 1 compares every frame.
func NewExternalCommand(tool, reference, distorted string, interval int) *ExternalCommand {
	if interval < 1 {
		interval = 1
	}
	return &ExternalCommand{tool: tool, reference: reference, distorted: distorted, interval: interval}
}

func (e *ExternalCommand) Executable() string { return e.tool }

func (e *ExternalCommand) BuildArgs() []string {
	return []string{e.reference, e.distorted, strconv.Itoa(e.interval)}
}

func (e *ExternalCommand) String() string {
	return command.FormatCommandLine(e.tool, e.BuildArgs())
}

func (e *ExternalCommand) GetTaskType() command.TaskType { return command.TaskTypeCompare }

func (e *ExternalCommand) GetInputPath() string { return e.reference }

// GetOutputPath returns "" since the tool writes nothing.
func (e *ExternalCommand) GetOutputPath() string { return "" }

var scorePatterns = map[string]*regexp.Regexp{
	MetricVMAF:        regexp.MustCompile(`VMAF score[:=]\s*(-?[\d.]+)`),
	MetricSSIM:        regexp.MustCompile(`All:\s*(-?[\d.]+)`),
	MetricXPSNR:       regexp.MustCompile(`minimum:\s*(-?[\d.]+|inf)`),
	MetricSSIMULACRA2: regexp.MustCompile(`Mean:\s*(-?[\d.]+)`),
}

// ParseScore extracts the final score of metric from one output line.
func ParseScore(metric, line string) (float64, bool) {
	re, ok := scorePatterns[metric]
	if !ok {
		return 0, false
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ScoreParser remembers the last score seen in streamed output.
type ScoreParser struct {
	Metric string
	score  float64
	found  bool
}

// ParseLine consumes one line of tool output.
func (p *ScoreParser) ParseLine(line string) {
	if v, ok := ParseScore(p.Metric, line); ok {
		p.score, p.found = v, true
	}
}

// Score returns the last score and whether one was seen.
func (p *ScoreParser) Score() (float64, bool) {
	return p.score, p.found
}
