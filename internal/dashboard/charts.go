package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	colorPrimary   = "#2a537c"
	colorSegments  = "#2b6ef6"
	colorSurface   = "#ffffff"
	engagementYMin = 60
	engagementYMax = 80
	percentTicks   = "{value}%"
)

func tooltipOpts() opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}
}

// newEngagementChart builds the engagement line chart. The y axis stays at
// 60–80 even though jittered values are clamped to 0–20.
func newEngagementChart(labels []string, values []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(tooltipOpts()),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{
			Min:       engagementYMin,
			Max:       engagementYMax,
			AxisLabel: &opts.AxisLabel{Formatter: percentTicks},
		}),
	)
	line.SetXAxis(labels).AddSeries("Engagement", lineData(values),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorPrimary, Opacity: opts.Float(0.08)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorPrimary, Width: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary, BorderColor: colorSurface}),
	)
	return line
}

func updateEngagementChart(line *charts.Line, labels []string, values []float64) {
	line.SetXAxis(labels)
	line.MultiSeries[0].Data = lineData(values)
}

// newPreviewChart builds the small analytics preview with hidden axes.
func newPreviewChart(labels []string, values []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "140px"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(tooltipOpts()),
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{
			Show:      opts.Bool(false),
			Min:       0,
			Max:       100,
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
	)
	bar.SetXAxis(labels).AddSeries("Preview", barData(values),
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "40%"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary}),
	)
	return bar
}

func updateBarChart(bar *charts.Bar, labels []string, values []float64) {
	bar.SetXAxis(labels)
	bar.MultiSeries[0].Data = barData(values)
}

// newSegmentsChart builds the horizontal segments bar chart.
func newSegmentsChart(labels []string, values []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "260px"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(tooltipOpts()),
		charts.WithXAxisOpts(opts.XAxis{
			Max:       100,
			AxisLabel: &opts.AxisLabel{Formatter: percentTicks},
		}),
	)
	bar.SetXAxis(labels).AddSeries("Segments", barData(values),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorSegments}),
	)
	bar.XYReversal()
	return bar
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v}
	}
	return out
}
