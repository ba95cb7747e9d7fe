package output

import (
	"fmt"
	"image"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/bufferbench/internal/config"
	"github.com/torosent/bufferbench/internal/runner"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// ResolveChartAxis picks the x axis for a suite chart. An unset axis follows
// whichever field varies across the tests, preferring concurrency.
func ResolveChartAxis(axis config.ChartAxis, tests []runner.Test) config.ChartAxis {
	if axis != config.ChartAxisAuto {
		return axis
	}
	if varies(tests, func(t runner.Test) int { return t.RequestsNumber }) &&
		!varies(tests, func(t runner.Test) int { return t.ConcurrentRequests }) {
		return config.ChartAxisRequestsNumber
	}
	return config.ChartAxisConcurrentRequests
}

func varies(tests []runner.Test, field func(runner.Test) int) bool {
	for _, t := range tests[min(1, len(tests)):] {
		if field(t) != field(tests[0]) {
			return true
		}
	}
	return false
}

// RenderChart draws mean trial time against the chart axis and returns it
// as plain text. Drawing happens off-screen so no terminal is required.
// Points are placed one column per test in suite order, not scaled by their
// x values; the legend below the plot lists the actual x of each point.
func RenderChart(suite runner.SuiteResult, axis config.ChartAxis) string {
	if len(suite.Results) == 0 {
		return ""
	}

	tests := make([]runner.Test, len(suite.Results))
	means := make([]float64, len(suite.Results))
	maxVal := 0.0
	for i, res := range suite.Results {
		tests[i] = res.Test
		means[i] = float64(res.Summary.Mean)
		maxVal = max(maxVal, means[i])
	}
	axis = ResolveChartAxis(axis, tests)

	plot := widgets.NewPlot()
	plot.Title = suite.Title
	plot.Data = [][]float64{means}
	plot.LineColors = []ui.Color{ui.ColorCyan}
	plot.AxesColor = ui.ColorWhite
	plot.HorizontalScale = max(1, (chartWidth-10)/(2*len(means)))
	plot.MaxVal = maxVal * 1.1
	if plot.MaxVal == 0 {
		plot.MaxVal = 1
	}
	// The line renderer needs two points.
	if len(means) < 2 {
		plot.PlotType = widgets.ScatterPlot
	}

	rect := image.Rect(0, 0, chartWidth, chartHeight)
	plot.SetRect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
	buf := ui.NewBuffer(rect)
	plot.Draw(buf)

	var sb strings.Builder
	fmt.Fprintf(&sb, "y = time[s], x = %s (evenly spaced, see x[i] below)\n", axisLabel(axis))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		var line strings.Builder
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r := buf.GetCell(image.Pt(x, y)).Rune
			if r == 0 {
				r = ' '
			}
			line.WriteRune(r)
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteByte('\n')
	}
	for i, t := range tests {
		fmt.Fprintf(&sb, "  x[%d] = %d  mean %.4fs\n", i, axisValue(axis, t), means[i])
	}
	return sb.String()
}

func axisLabel(axis config.ChartAxis) string {
	if axis == config.ChartAxisRequestsNumber {
		return "requests number"
	}
	return "concurrent requests"
}

func axisValue(axis config.ChartAxis, t runner.Test) int {
	if axis == config.ChartAxisRequestsNumber {
		return t.RequestsNumber
	}
	return t.ConcurrentRequests
}
