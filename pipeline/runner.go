package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mediapass/command"
	"mediapass/command/compare"
	"mediapass/command/loudness"
	"mediapass/config"
	"mediapass/ffmpeg"
	"mediapass/ffprobe"
	"mediapass/models"
	"mediapass/naming"
	"mediapass/orchestrator"
)

const passLockRetry = 500 * time.Millisecond

// ProbeFunc returns the facts of a source file. It never fails: unreadable
// files yield the fallback facts.
type ProbeFunc func(ctx context.Context, path string) models.MediaInfo

// Result is the outcome of one input.
type Result struct {
	Input    string
	Output   string
	Passes   []*models.PassResult
	Stats    orchestrator.Stats // Pass counts of the encode sequence
	Loudness string  // Filter applied by loudness normalization
	Score    float64 // Comparison score, valid when HasScore
	HasScore bool
	Size     int64 // Output size in bytes, 0 in simulate mode
	Elapsed  time.Duration
	Err      error
}

// Runner converts a batch of inputs one at a time.
type Runner struct {
	cfg   *config.Config
	exec  ffmpeg.Executor
	log   logrus.FieldLogger
	probe ProbeFunc
	out   io.Writer
	runID string
}

// NewRunner creates a runner executing through exec. The summary table is
// written to out; nil disables it.
func NewRunner(cfg *config.Config, exec ffmpeg.Executor, log logrus.FieldLogger, out io.Writer) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	runID := uuid.NewString()
	r := &Runner{
		cfg:   cfg,
		exec:  exec,
		log:   log.WithField("run", runID),
		out:   out,
		runID: runID,
	}
	r.probe = func(ctx context.Context, path string) models.MediaInfo {
		return ffprobe.MediaInfoOrFallback(ctx, cfg.FFprobe, path, r.log)
	}
	return r
}

// SetProber replaces the ffprobe based prober.
func (r *Runner) SetProber(probe ProbeFunc) {
	r.probe = probe
}

// RunID identifies this batch in the logs.
func (r *Runner) RunID() string {
	return r.runID
}

// Run resolves every output, checks the whole batch for collisions, then
// converts the inputs in order. The first failure stops the batch; the
// results of the inputs handled so far are returned with it.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	inputs, err := naming.Discover(paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingResource, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no media files in %v", ErrMissingResource, paths)
	}

	outputs := make([]string, len(inputs))
	for i, in := range inputs {
		outputs[i] = naming.OutputPath(r.cfg.Output, in)
	}
	if err := naming.CheckCollisions(inputs, outputs); err != nil {
		return nil, err
	}

	r.log.WithField("inputs", len(inputs)).Info("Starting batch")

	results := make([]Result, 0, len(inputs))
	var runErr error
	for i, in := range inputs {
		res := r.process(ctx, in, outputs[i])
		results = append(results, res)
		if res.Err != nil {
			runErr = fmt.Errorf("%s: %w", in.Path, res.Err)
			break
		}
	}

	if r.out != nil && !r.cfg.Simulate {
		PrintSummary(r.out, results)
	}
	return results, runErr
}

func (r *Runner) process(ctx context.Context, in naming.Input, output string) Result {
	start := time.Now()
	res := Result{Input: in.Path, Output: output}
	log := r.log.WithField("input", in.Path)

	res.Err = r.convert(ctx, in, output, log, &res)
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		log.WithError(res.Err).Error("Conversion failed")
		return res
	}
	if !r.cfg.Simulate {
		if info, err := os.Stat(output); err == nil {
			res.Size = info.Size()
		}
	}
	log.WithFields(logrus.Fields{
		"output":  output,
		"elapsed": res.Elapsed.Round(time.Millisecond),
	}).Info("Conversion finished")
	return res
}

func (r *Runner) convert(ctx context.Context, in naming.Input, output string, log logrus.FieldLogger, res *Result) error {
	info := r.probe(ctx, in.Path)
	log.WithFields(logrus.Fields{
		"size":        fmt.Sprintf("%dx%d", info.Width, info.Height),
		"fps":         info.FrameRate.String(),
		"color_range": info.ColorRange,
		"probed":      info.RealValues,
	}).Debug("Source facts")

	pass, err := BuildWithLogger(r.cfg, info, in, output, log)
	if err != nil {
		return err
	}
	duration, err := OutputDuration(r.cfg, info)
	if err != nil {
		return err
	}
	r.exec.SetExpectedDuration(duration)

	if err := naming.EnsureDir(filepath.Dir(output), r.cfg.Output.CreateDirectory, r.cfg.Simulate); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingResource, err)
	}

	if r.cfg.Audio.Loudness != nil && r.cfg.AudioEncoded() && !r.cfg.Simulate {
		filter, err := r.normalizeLoudness(ctx, pass, log)
		if err != nil {
			return err
		}
		res.Loudness = filter
	}

	passes, stats, err := r.encode(ctx, in, pass, log)
	res.Passes, res.Stats = passes, stats
	if err != nil {
		return err
	}

	if r.cfg.Compare.Metric != "" {
		score, ok, err := r.compare(ctx, pass, info, log)
		if err != nil {
			return err
		}
		res.Score, res.HasScore = score, ok
	}
	return nil
}

func (r *Runner) normalizeLoudness(ctx context.Context, main *command.Pass, log logrus.FieldLogger) (string, error) {
	analysis, err := loudness.AnalysisPass(main)
	if err != nil {
		return "", err
	}

	var parser loudness.ReportParser
	if err := r.exec.RunLines(ctx, analysis, parser.ParseLine); err != nil {
		return "", fmt.Errorf("loudness analysis: %w", err)
	}
	m, err := parser.Measurement()
	if err != nil {
		return "", err
	}

	target := loudness.Target{
		Integrated: r.cfg.Audio.Loudness.Integrated,
		TruePeak:   r.cfg.Audio.Loudness.TruePeak,
	}
	filter := loudness.Decide(target, m)
	loudness.Apply(main, filter)

	log.WithFields(logrus.Fields{
		"integrated": m.Integrated,
		"true_peak":  m.TruePeak,
		"filter":     filter,
	}).Info("Loudness measured")
	return filter, nil
}

// encode runs the first pass (if any) and the main pass. Two-pass encodes
// hold an exclusive lock on the statistics file so concurrent runs writing
// the same output cannot clobber each other's statistics.
func (r *Runner) encode(ctx context.Context, in naming.Input, main *command.Pass, log logrus.FieldLogger) ([]*models.PassResult, orchestrator.Stats, error) {
	seq := orchestrator.NewSequence(r.exec)
	if err := seq.AddPass(in.Path+"#", main); err != nil {
		return nil, orchestrator.Stats{}, err
	}
	seq.SetProgressCallback(func(completed, total int, task *orchestrator.Task) {
		entry := log.WithFields(logrus.Fields{
			"pass":   fmt.Sprintf("%d/%d", completed, total),
			"task":   task.Command.GetTaskType(),
			"status": task.Status,
		})
		if task.Status == orchestrator.TaskCompleted {
			entry.WithField("elapsed", task.EndTime.Sub(task.StartTime).Round(time.Millisecond)).Info("Pass finished")
		} else {
			entry.WithError(task.Error).Debug("Pass did not complete")
		}
	})

	if main.Prerequisite != nil && !r.cfg.Simulate {
		logFile := PassLogFile(main.Target)
		lock := flock.New(logFile + ".lock")
		locked, err := lock.TryLockContext(ctx, passLockRetry)
		if err != nil {
			return nil, orchestrator.Stats{}, fmt.Errorf("lock two-pass statistics: %w", err)
		}
		if !locked {
			return nil, orchestrator.Stats{}, fmt.Errorf("lock two-pass statistics: %s is held by another process", lock.Path())
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.log.WithError(err).Warn("Failed to release two-pass lock")
			}
			os.Remove(lock.Path())
			removePassLogs(logFile)
		}()
	}

	passes, err := seq.Execute(ctx)
	return passes, seq.GetStats(), err
}

// removePassLogs deletes the statistics files ffmpeg writes for a
// passlogfile prefix.
func removePassLogs(prefix string) {
	matches, _ := filepath.Glob(prefix + "-*.log*")
	for _, m := range matches {
		os.Remove(m)
	}
}

func (r *Runner) compare(ctx context.Context, main *command.Pass, info models.MediaInfo, log logrus.FieldLogger) (float64, bool, error) {
	geometry, err := Geometry(r.cfg, info)
	if err != nil {
		return 0, false, err
	}

	cc := r.cfg.Compare
	cmd, err := compare.NewPass(main, compare.Settings{
		Metric:    cc.Metric,
		Sync:      cc.Sync,
		Subsample: cc.Subsample,
		Threads:   cc.Threads,
		Tool:      cc.Tool,
		Geometry:  geometry,
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	parser := compare.ScoreParser{Metric: cc.Metric}
	if err := r.exec.RunLines(ctx, cmd, parser.ParseLine); err != nil {
		return 0, false, fmt.Errorf("comparison: %w", err)
	}

	score, ok := parser.Score()
	if ok {
		log.WithFields(logrus.Fields{"metric": cc.Metric, "score": score}).Info("Comparison finished")
	} else if !r.cfg.Simulate {
		log.WithField("metric", cc.Metric).Warn("Comparison produced no score")
	}
	return score, ok, nil
}
