// Package chart renders aligned speed series as line charts. It is the
// rendering collaborator of the report builder: PNG files via gonum/plot for
// saved artifacts, an ECharts HTML page for interactive viewing.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/estimation.report/internal/monitoring"
)

// Series is one named line: per-window values index-aligned with the table
// timestamps. NaN entries mark windows without data and are skipped when
// plotting.
type Series struct {
	Name   string
	Values []float64
}

// Table is the tabular structure renderers consume: window end timestamps on
// the X axis plus one or more named series.
type Table struct {
	Timestamps []float64
	Series     []Series
}

// View couples a table with its chart title and axis label.
type View struct {
	Title  string
	YLabel string
	Table  Table
}

// Studio is the default renderer. The zero value is ready to use.
type Studio struct {
	// DisplayDir overrides where the interactive HTML page is written.
	// Empty means the system temp directory.
	DisplayDir string
}

// SaveChart writes a view as a PNG line chart.
func (s Studio) SaveChart(v View, path string) error {
	p := plot.New()
	p.Title.Text = v.Title
	p.X.Label.Text = "Window end (s)"
	p.Y.Label.Text = v.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = "Speed (km/h)"
	}

	colors := palette(len(v.Table.Series))
	for i, series := range v.Table.Series {
		pts := make(plotter.XYs, 0, len(series.Values))
		for j, val := range series.Values {
			if math.IsNaN(val) {
				continue
			}
			pts = append(pts, plotter.XY{X: v.Table.Timestamps[j], Y: val})
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", series.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.Name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// DisplayCharts renders the views as one interactive HTML page and reports
// its location. This stands in for an attached-display mode: the page embeds
// ECharts and can be opened in any browser.
func (s Studio) DisplayCharts(views ...View) error {
	dir := s.DisplayDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "estimation-report-*.html")
	if err != nil {
		return fmt.Errorf("create display page: %w", err)
	}
	defer f.Close()

	if err := WriteHTML(f, views...); err != nil {
		return err
	}
	monitoring.Logf("interactive report written to %s", f.Name())
	return nil
}

// WriteHTML renders the views as a single ECharts page.
func WriteHTML(w io.Writer, views ...View) error {
	page := components.NewPage()
	for _, v := range views {
		page.AddCharts(echartsLine(v))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// echartsLine builds one ECharts line chart from a view.
func echartsLine(v View) *charts.Line {
	line := charts.NewLine()

	yLabel := v.YLabel
	if yLabel == "" {
		yLabel = "Speed (km/h)"
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Speed Estimation Report", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: v.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Window end (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	xAxis := make([]string, len(v.Table.Timestamps))
	for i, ts := range v.Table.Timestamps {
		xAxis[i] = fmt.Sprintf("%.0f", ts)
	}
	line.SetXAxis(xAxis)

	for _, series := range v.Table.Series {
		data := make([]opts.LineData, len(series.Values))
		for i, val := range series.Values {
			if math.IsNaN(val) {
				data[i] = opts.LineData{Value: nil}
				continue
			}
			data[i] = opts.LineData{Value: val}
		}
		line.AddSeries(series.Name, data)
	}

	return line
}

// palette returns n distinct line colours.
func palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
