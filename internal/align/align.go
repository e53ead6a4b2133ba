// Package align bins speed observations and ground truth records into a
// fixed schedule of evaluation windows and produces index-aligned series.
package align

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/estimation.report/internal/evallog"
	"github.com/banshee-data/estimation.report/internal/groundtruth"
)

// Schedule describes the evaluation window protocol. The defaults are a
// protocol constant shared with prior evaluation runs and must not be derived
// from data.
type Schedule struct {
	// StartSeconds is the start of the first window, video-relative.
	StartSeconds int
	// StopSeconds bounds the schedule: no window starts at or after it.
	StopSeconds int
	// StepSeconds is both the window length and the stride.
	StepSeconds int
	// FramesPerSecond converts window bounds from seconds to frame units.
	FramesPerSecond float64
}

// DefaultSchedule returns the reference protocol: 60 s windows ending at
// 360, 420, ..., 1800 s, with 50 frames per second-unit.
func DefaultSchedule() Schedule {
	return Schedule{
		StartSeconds:    300,
		StopSeconds:     1800,
		StepSeconds:     60,
		FramesPerSecond: 50,
	}
}

// Window is one evaluation interval. Means over a window use exclusive-start
// and inclusive-end bounds so a record exactly on a boundary is counted in
// one window only.
type Window struct {
	Start float64
	End   float64
}

// Windows expands the schedule into its ordered window sequence.
func (s Schedule) Windows() []Window {
	var windows []Window
	for start := s.StartSeconds; start < s.StopSeconds; start += s.StepSeconds {
		windows = append(windows, Window{
			Start: float64(start),
			End:   float64(start + s.StepSeconds),
		})
	}
	return windows
}

// TruthMean returns the mean reference speed over one window: records with
// Start > w.Start and End <= w.End. An empty selection yields NaN.
func TruthMean(records []groundtruth.Record, w Window) float64 {
	var speeds []float64
	for _, rec := range records {
		if rec.Start > w.Start && rec.End <= w.End {
			speeds = append(speeds, rec.Speed)
		}
	}
	if len(speeds) == 0 {
		return math.NaN()
	}
	return stat.Mean(speeds, nil)
}

// EstimationMean returns the mean estimated speed over one window, with the
// window bounds scaled from seconds to frame units: observations with
// FrameID > w.Start*fps and FrameID <= w.End*fps. An empty selection yields
// NaN.
func EstimationMean(observations []evallog.Observation, w Window, framesPerSecond float64) float64 {
	frameStart := w.Start * framesPerSecond
	frameEnd := w.End * framesPerSecond

	var speeds []float64
	for _, obs := range observations {
		frame := float64(obs.FrameID)
		if frame > frameStart && frame <= frameEnd {
			speeds = append(speeds, obs.AvgSpeedTowards)
		}
	}
	if len(speeds) == 0 {
		return math.NaN()
	}
	return stat.Mean(speeds, nil)
}

// Aligned holds the parallel per-window series for one evaluation. All
// slices share the same length and index as Timestamps.
type Aligned struct {
	// RunIDs preserves the input run order.
	RunIDs []string
	// Truth is the per-window ground truth mean.
	Truth []float64
	// Estimations maps run id to its per-window mean sequence.
	Estimations map[string][]float64
	// Timestamps holds the window end times in seconds.
	Timestamps []float64
}

// Run drives the window means across the full schedule for the ground truth
// and every run, producing index-aligned series. Windows with no data are
// NaN entries; dropping them is the table assembler's concern.
func Run(s Schedule, runs []*evallog.RunResult, truth []groundtruth.Record) Aligned {
	windows := s.Windows()
	aligned := Aligned{
		Estimations: make(map[string][]float64, len(runs)),
	}

	for _, w := range windows {
		aligned.Truth = append(aligned.Truth, TruthMean(truth, w))
		aligned.Timestamps = append(aligned.Timestamps, w.End)
	}

	for _, run := range runs {
		aligned.RunIDs = append(aligned.RunIDs, run.RunID)
		series := make([]float64, 0, len(windows))
		for _, w := range windows {
			series = append(series, EstimationMean(run.Observations, w, s.FramesPerSecond))
		}
		aligned.Estimations[run.RunID] = series
	}

	return aligned
}
