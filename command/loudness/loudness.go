// Package loudness measures the integrated loudness of an input with
// ffmpeg's loudnorm filter and derives a corrective audio filter.
package loudness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"mediapass/command"
)

// Filter appended to the audio chain to print the measurement report.
const analysisFilter = "loudnorm=print_format=summary"

// Report line prefixes, printed on consecutive lines by loudnorm.
const (
	integratedPrefix = "Input Integrated:"
	truePeakPrefix   = "Input True Peak:"
)

// ErrNoReport is returned when the analysis output contains no report.
var ErrNoReport = errors.New("no loudness report in analysis output")

// Target is the desired integrated loudness (LUFS) and true peak (dBTP).
type Target struct {
	Integrated float64
	TruePeak   float64
}

// Measurement is what the analysis pass reported for the input.
type Measurement struct {
	Integrated float64 // LUFS
	TruePeak   float64 // dBTP
}

// AnalysisPass derives the measurement pass from the main pass: same
// executable, same input with its trim window, the measurement filter
// after any existing audio filter, and every other stream discarded.
func AnalysisPass(main *command.Pass) (*command.Pass, error) {
	inputs := main.InputPaths()
	if len(inputs) == 0 {
		return nil, fmt.Errorf("loudness analysis: main pass has no input")
	}

	pass := command.NewPass(main.Executable(), command.TaskTypeLoudness)
	main.Global.CopyTo(pass.Global)
	// loudnorm prints its report at info level
	pass.Global.Replace("loglevel", "info", true)
	pass.Global.Add("nostats")

	src, _ := main.Input(inputs[0])
	src.CopyTo(pass.AddInput(inputs[0]))

	af := analysisFilter
	if existing, ok := main.Output.Value("af"); ok && existing != "" {
		af = existing + "," + analysisFilter
	}

	out := pass.Output
	out.AddValue("af", af)
	out.Add("vn")
	out.Add("sn")
	out.Add("dn")
	out.AddValue("map_metadata", "-1")
	out.AddValue("map_chapters", "-1")
	out.AddValue("f", "null")
	pass.Target = os.DevNull

	return pass, nil
}

// ReportParser extracts a Measurement from analysis output fed one line at
// a time.
type ReportParser struct {
	integrated *float64
	result     Measurement
	found      bool
}

// ParseLine consumes one line of ffmpeg stderr.
func (p *ReportParser) ParseLine(line string) {
	line = strings.TrimSpace(line)

	if p.integrated != nil {
		integrated := *p.integrated
		p.integrated = nil
		if v, ok := reportValue(line, truePeakPrefix); ok {
			p.result = Measurement{Integrated: integrated, TruePeak: v}
			p.found = true
			return
		}
	}

	if v, ok := reportValue(line, integratedPrefix); ok {
		p.integrated = &v
	}
}

// Measurement returns the last complete report seen.
func (p *ReportParser) Measurement() (Measurement, error) {
	if !p.found {
		return Measurement{}, ErrNoReport
	}
	return p.result, nil
}

// reportValue parses "<prefix> <number> <unit>".
func reportValue(line, prefix string) (float64, bool) {
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseReport scans r for a loudnorm summary.
func ParseReport(r io.Reader) (Measurement, error) {
	var p ReportParser
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.ParseLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Measurement{}, fmt.Errorf("read loudness report: %w", err)
	}
	return p.Measurement()
}

// Decide picks the corrective filter. A gain that fits in the measured
// headroom is applied statically; a larger boost goes through dynaudnorm
// so the peaks stay under the true peak ceiling.
func Decide(target Target, m Measurement) string {
	gain := target.Integrated - m.Integrated
	headroom := math.Max(0, -m.TruePeak)

	if gain <= 0 || gain <= headroom {
		return "volume=" + formatFloat(gain) + "dB"
	}

	peak := math.Pow(10, target.TruePeak/20)
	boost := math.Pow(10, gain/20)
	return fmt.Sprintf("dynaudnorm=f=500:g=31:p=%s:m=%s:b=1", formatFloat(peak), formatFloat(boost))
}

// Apply appends filter after the main pass's existing audio filter.
func Apply(main *command.Pass, filter string) {
	af := filter
	if existing, ok := main.Output.Value("af"); ok && existing != "" {
		af = existing + "," + filter
	}
	main.Output.Replace("af", af, true)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
