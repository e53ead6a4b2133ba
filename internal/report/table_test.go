package report

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/estimation.report/internal/align"
)

func sampleAligned() align.Aligned {
	nan := math.NaN()
	return align.Aligned{
		RunIDs:     []string{"videoA_depth_0", "videoA_depth_1"},
		Timestamps: []float64{360, 420, 480, 540},
		Truth:      []float64{40, nan, 44, 46},
		Estimations: map[string][]float64{
			"videoA_depth_0": {42, 41, 45, nan},
			"videoA_depth_1": {39, 40, 43, 47},
		},
	}
}

func TestBuildTable(t *testing.T) {
	table := BuildTable(sampleAligned())

	// Row 420 drops on missing truth, row 540 on a missing estimation.
	assert.Equal(t, []float64{360, 480}, table.Timestamps)
	assert.Equal(t, []float64{40, 44}, table.Truth)
	want := map[string][]float64{
		"videoA_depth_0": {42, 45},
		"videoA_depth_1": {39, 43},
	}
	if diff := cmp.Diff(want, table.Runs); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTableAllRowsMissing(t *testing.T) {
	aligned := align.Aligned{
		RunIDs:     []string{"r"},
		Timestamps: []float64{360},
		Truth:      []float64{40},
		Estimations: map[string][]float64{
			"r": {math.NaN()},
		},
	}
	table := BuildTable(aligned)
	assert.Empty(t, table.Timestamps)
	assert.True(t, math.IsNaN(table.MeanErrors()["r"]))
}

func TestErrorsAreSigned(t *testing.T) {
	table := BuildTable(sampleAligned())
	errs := table.Errors()

	// Signed estimation minus truth, negative values preserved.
	assert.Equal(t, []float64{2, 1}, errs["videoA_depth_0"])
	assert.Equal(t, []float64{-1, -1}, errs["videoA_depth_1"])
}

func TestMeanErrors(t *testing.T) {
	table := BuildTable(sampleAligned())
	means := table.MeanErrors()

	require.InDelta(t, 1.5, means["videoA_depth_0"], 1e-9)
	require.InDelta(t, -1.0, means["videoA_depth_1"], 1e-9)
}
