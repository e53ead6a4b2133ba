// Package report orchestrates a full evaluation: load estimation logs, check
// they share one video, align them against the ground truth table, and emit
// comparison charts plus an error summary.
package report

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/banshee-data/estimation.report/internal/align"
	"github.com/banshee-data/estimation.report/internal/evallog"
	"github.com/banshee-data/estimation.report/internal/groundtruth"
	"github.com/banshee-data/estimation.report/internal/monitoring"
	"github.com/banshee-data/estimation.report/internal/report/chart"
	"github.com/banshee-data/estimation.report/internal/store"
	"github.com/banshee-data/estimation.report/internal/units"
)

// ErrVideoMismatch is returned when the supplied logs reference different
// source videos. It is a precondition failure, raised before any aggregation.
var ErrVideoMismatch = errors.New("can only evaluate logs of the same video in one call")

// Renderer is the chart rendering capability the builder delegates to.
type Renderer interface {
	SaveChart(v chart.View, path string) error
	DisplayCharts(views ...chart.View) error
}

// Options configures one evaluation.
type Options struct {
	// OutputDir receives the chart images and the error summary CSV. Empty
	// selects interactive display mode: nothing is written.
	OutputDir string
	// Schedule defaults to align.DefaultSchedule() when zero.
	Schedule align.Schedule
	// Units selects the display unit for chart axes. Values stay in the
	// dataset's native km/h in the summary CSV regardless.
	Units string
	// Renderer defaults to chart.Studio{}.
	Renderer Renderer
	// Store, when non-nil, receives one RunSummary per run in file mode.
	Store *store.Store
}

// Summary reports what an evaluation produced.
type Summary struct {
	VideoID    string
	VideoPath  string
	ArtifactID string
	Table      ComparisonTable
	MeanErrors map[string]float64

	// Artifact paths; empty in display mode.
	EstimationsChart string
	ErrorChart       string
	ErrorSummaryCSV  string
}

// Evaluate runs the full evaluation over the given log files. Any failure
// aborts the whole call with no artifacts generated.
func Evaluate(logPaths []string, opts Options) (*Summary, error) {
	if len(logPaths) == 0 {
		return nil, errors.New("no log files supplied")
	}
	if opts.Schedule == (align.Schedule{}) {
		opts.Schedule = align.DefaultSchedule()
	}
	if opts.Renderer == nil {
		opts.Renderer = chart.Studio{}
	}

	runs := make([]*evallog.RunResult, 0, len(logPaths))
	for _, path := range logPaths {
		run, err := evallog.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		runs = append(runs, run)
	}

	videoPath := runs[0].VideoPath
	for _, run := range runs {
		if run.VideoPath != videoPath {
			return nil, fmt.Errorf("%w: %q vs %q", ErrVideoMismatch, videoPath, run.VideoPath)
		}
	}
	if videoPath == "" && len(runs) > 1 {
		// Two logs without a video header compare equal even though they may
		// be entirely different recordings. Known validation gap.
		monitoring.Logf("warning: no video path in any log; cross-run consistency unverifiable")
	}
	disambiguateRunIDs(runs)

	truth, err := groundtruth.Load(videoPath)
	if err != nil {
		return nil, err
	}

	aligned := align.Run(opts.Schedule, runs, truth)
	table := BuildTable(aligned)

	summary := &Summary{
		VideoID:    evallog.VideoID(videoPath),
		VideoPath:  videoPath,
		ArtifactID: newArtifactID(),
		Table:      table,
		MeanErrors: table.MeanErrors(),
	}

	absolute := chart.View{
		Title:  fmt.Sprintf("Absolute Estimations (%s)", videoPath),
		YLabel: units.AxisLabel(opts.Units),
		Table:  absoluteTable(table, opts.Units),
	}
	errView := chart.View{
		Title:  fmt.Sprintf("Mean Absolute Error (%s)", videoPath),
		YLabel: units.AxisLabel(opts.Units),
		Table:  errorTable(table, opts.Units),
	}

	if opts.OutputDir == "" {
		if err := opts.Renderer.DisplayCharts(absolute, errView); err != nil {
			return nil, err
		}
		return summary, nil
	}

	base := summary.VideoID + "_" + summary.ArtifactID
	summary.EstimationsChart = filepath.Join(opts.OutputDir, base+"_estimations.png")
	summary.ErrorChart = filepath.Join(opts.OutputDir, base+"_mae.png")
	summary.ErrorSummaryCSV = filepath.Join(opts.OutputDir, base+"_error.csv")

	if err := opts.Renderer.SaveChart(absolute, summary.EstimationsChart); err != nil {
		return nil, err
	}
	if err := opts.Renderer.SaveChart(errView, summary.ErrorChart); err != nil {
		return nil, err
	}
	if err := writeErrorSummary(summary.ErrorSummaryCSV, table.RunIDs, summary.MeanErrors); err != nil {
		return nil, err
	}

	if opts.Store != nil {
		if err := persistSummary(opts.Store, summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// disambiguateRunIDs bumps the depth tag on colliding run ids so every run
// gets its own comparison column.
func disambiguateRunIDs(runs []*evallog.RunResult) {
	seen := make(map[string]int, len(runs))
	for _, run := range runs {
		n := seen[run.RunID]
		seen[run.RunID] = n + 1
		if n > 0 {
			run.RunID = evallog.DeriveRunID(run.VideoPath, n)
		}
	}
}

// newArtifactID returns the fresh 10-hex-char identifier embedded in
// artifact file names.
func newArtifactID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:10]
}

// absoluteTable builds the raw-means chart table: truth plus one series per
// run, in run order.
func absoluteTable(t ComparisonTable, displayUnits string) chart.Table {
	series := []chart.Series{{Name: "truth", Values: convert(t.Truth, displayUnits)}}
	for _, id := range t.RunIDs {
		series = append(series, chart.Series{Name: id, Values: convert(t.Runs[id], displayUnits)})
	}
	return chart.Table{Timestamps: t.Timestamps, Series: series}
}

// errorTable builds the signed-error chart table: one series per run.
func errorTable(t ComparisonTable, displayUnits string) chart.Table {
	errs := t.Errors()
	var series []chart.Series
	for _, id := range t.RunIDs {
		series = append(series, chart.Series{Name: id, Values: convert(errs[id], displayUnits)})
	}
	return chart.Table{Timestamps: t.Timestamps, Series: series}
}

func convert(values []float64, displayUnits string) []float64 {
	if displayUnits == "" || displayUnits == units.KMH {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = units.ConvertSpeed(v, displayUnits)
	}
	return out
}

// writeErrorSummary writes the per-run mean signed error CSV.
func writeErrorSummary(path string, runIDs []string, means map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"run_id", "mean_error"})
	for _, id := range runIDs {
		w.Write([]string{id, strconv.FormatFloat(means[id], 'f', 6, 64)})
	}
	w.Flush()
	return w.Error()
}

// persistSummary records one RunSummary per run in the history store.
func persistSummary(s *store.Store, summary *Summary) error {
	for _, id := range summary.Table.RunIDs {
		err := s.Insert(&store.RunSummary{
			VideoID:     summary.VideoID,
			VideoPath:   summary.VideoPath,
			RunID:       id,
			ArtifactID:  summary.ArtifactID,
			MeanError:   summary.MeanErrors[id],
			WindowCount: len(summary.Table.Timestamps),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
