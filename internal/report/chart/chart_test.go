package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/estimation.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func sampleView(title string) View {
	return View{
		Title: title,
		Table: Table{
			Timestamps: []float64{360, 420, 480},
			Series: []Series{
				{Name: "truth", Values: []float64{40, 41, math.NaN()}},
				{Name: "videoA_depth_0", Values: []float64{42, math.NaN(), 44}},
			},
		},
	}
}

func TestSaveChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videoA_abc_estimations.png")

	err := Studio{}.SaveChart(sampleView("Absolute Estimations (/data/videoA/)"), path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveChartAllNaNSeries(t *testing.T) {
	// A series with no plottable points is skipped, not an error.
	v := View{
		Title: "empty run",
		Table: Table{
			Timestamps: []float64{360, 420},
			Series: []Series{
				{Name: "truth", Values: []float64{40, 41}},
				{Name: "videoA_depth_1", Values: []float64{math.NaN(), math.NaN()}},
			},
		},
	}
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, Studio{}.SaveChart(v, path))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf,
		sampleView("Absolute Estimations (/data/videoA/)"),
		sampleView("Mean Absolute Error (/data/videoA/)"),
	)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Absolute Estimations (/data/videoA/)")
	assert.Contains(t, html, "Mean Absolute Error (/data/videoA/)")
	assert.Contains(t, html, "videoA_depth_0")
}

func TestDisplayCharts(t *testing.T) {
	dir := t.TempDir()
	err := Studio{DisplayDir: dir}.DisplayCharts(sampleView("Absolute Estimations"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "estimation-report-")
}
