package report

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/estimation.report/internal/align"
)

// ComparisonTable holds the per-window comparison rows that survive
// missing-value dropping: one truth column, one column per run, keyed by
// window end timestamp.
type ComparisonTable struct {
	RunIDs     []string
	Timestamps []float64
	Truth      []float64
	Runs       map[string][]float64
}

// BuildTable assembles a ComparisonTable from aligned series, dropping every
// row where the truth or any run has no value for that window.
func BuildTable(aligned align.Aligned) ComparisonTable {
	table := ComparisonTable{
		RunIDs: aligned.RunIDs,
		Runs:   make(map[string][]float64, len(aligned.RunIDs)),
	}

	for i := range aligned.Timestamps {
		if math.IsNaN(aligned.Truth[i]) {
			continue
		}
		complete := true
		for _, id := range aligned.RunIDs {
			if math.IsNaN(aligned.Estimations[id][i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		table.Timestamps = append(table.Timestamps, aligned.Timestamps[i])
		table.Truth = append(table.Truth, aligned.Truth[i])
		for _, id := range aligned.RunIDs {
			table.Runs[id] = append(table.Runs[id], aligned.Estimations[id][i])
		}
	}

	return table
}

// Errors returns the signed per-window difference (estimation minus truth)
// for every run. The column has historically been labelled an absolute
// error; the signed value is the load-bearing behaviour and is kept.
func (t ComparisonTable) Errors() map[string][]float64 {
	errs := make(map[string][]float64, len(t.RunIDs))
	for _, id := range t.RunIDs {
		diffs := make([]float64, len(t.Truth))
		for i, v := range t.Runs[id] {
			diffs[i] = v - t.Truth[i]
		}
		errs[id] = diffs
	}
	return errs
}

// MeanErrors returns the per-run mean of the signed error column. Runs with
// no surviving rows map to NaN.
func (t ComparisonTable) MeanErrors() map[string]float64 {
	means := make(map[string]float64, len(t.RunIDs))
	for id, diffs := range t.Errors() {
		if len(diffs) == 0 {
			means[id] = math.NaN()
			continue
		}
		means[id] = stat.Mean(diffs, nil)
	}
	return means
}
