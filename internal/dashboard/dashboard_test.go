package dashboard

import (
	"bytes"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpulse/internal/metrics"
)

func sampleMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		Labels:     []string{"2025-08-20", "2025-09-20", "2025-10-20", "2025-11-20"},
		Engagement: []float64{12.1, 13.4, 15.2, 19.8},
		TopSegments: []metrics.Segment{
			{Name: "Irrigation Updates", Rate: 81},
			{Name: "Paddy Farmers", Rate: 64},
		},
		FarmerReadRate: 76.4,
		ActiveSegments: 42,
		UpdatesSent:    5400,
	}
}

func fullLayout() Layout {
	return Layout{Title: "Farmer updates", ShowPreviewChart: true, ShowSegmentsChart: true}
}

func TestRenderTwiceReusesCharts(t *testing.T) {
	d := New(fullLayout(), nil)
	d.Render(sampleMetrics())
	line, preview, segments := d.EngagementChart(), d.PreviewChart(), d.SegmentsChart()
	require.NotNil(t, line)
	require.NotNil(t, preview)
	require.NotNil(t, segments)

	next := sampleMetrics()
	next.Engagement = []float64{1, 2, 3, 4}
	d.Render(next)

	assert.Same(t, line, d.EngagementChart())
	assert.Same(t, preview, d.PreviewChart())
	assert.Same(t, segments, d.SegmentsChart())
	for _, name := range []string{ChartEngagement, ChartPreview, ChartSegments} {
		assert.Equal(t, ChartStats{Created: 1, Updated: 1}, d.Stats(name), name)
	}
	require.Len(t, line.MultiSeries, 1)
	assert.Equal(t, []opts.LineData{{Value: 1.0}, {Value: 2.0}, {Value: 3.0}, {Value: 4.0}}, line.MultiSeries[0].Data)
}

func TestRenderNilKeepsState(t *testing.T) {
	d := New(fullLayout(), nil)
	assert.Equal(t, placeholderCard, d.Cards().ActiveSegments)
	d.Render(nil)
	assert.Nil(t, d.EngagementChart())

	d.Render(sampleMetrics())
	d.Render(nil)
	assert.Equal(t, "42", d.Cards().ActiveSegments)
}

func TestRenderCards(t *testing.T) {
	d := New(fullLayout(), nil)
	d.Render(sampleMetrics())
	assert.Equal(t, Cards{ActiveSegments: "42", UpdatesSent: "5,400", FarmerReadRate: "76.4%"}, d.Cards())

	view := d.View(ScaleFor(1, 1))
	assert.Equal(t, []SegmentRow{{Name: "Irrigation Updates", Rate: "81%"}, {Name: "Paddy Farmers", Rate: "64%"}}, view.Segments)
	assert.True(t, view.HasCharts)
	assert.Len(t, view.Templates, 3)
}

func TestPreviewUsesLastPoints(t *testing.T) {
	layout := fullLayout()
	layout.PreviewPoints = 2
	d := New(layout, nil)
	d.Render(sampleMetrics())

	preview := d.PreviewChart()
	require.NotNil(t, preview)
	assert.Equal(t, []opts.BarData{{Value: 15.2}, {Value: 19.8}}, preview.MultiSeries[0].Data)
}

func TestSegmentsChartClearedWhenHidden(t *testing.T) {
	d := New(fullLayout(), nil)
	d.Render(sampleMetrics())
	require.NotNil(t, d.SegmentsChart())

	d.layout.ShowSegmentsChart = false
	d.Render(sampleMetrics())
	assert.Nil(t, d.SegmentsChart())
	assert.Len(t, d.View(ScaleFor(1, 1)).Segments, 2)
}

func TestPreviewPanicIsRecovered(t *testing.T) {
	d := New(fullLayout(), nil)
	d.newPreview = func([]string, []float64) *charts.Bar { panic("canvas unavailable") }

	assert.NotPanics(t, func() { d.Render(sampleMetrics()) })
	assert.Nil(t, d.PreviewChart())
	assert.NotNil(t, d.SegmentsChart())
}

func TestWriteCharts(t *testing.T) {
	d := New(fullLayout(), nil)
	var buf bytes.Buffer
	assert.ErrorIs(t, d.WriteCharts(&buf), ErrNotRendered)

	d.Render(sampleMetrics())
	require.NoError(t, d.WriteCharts(&buf))
	html := buf.String()
	assert.Contains(t, html, "Irrigation Updates")
	assert.Contains(t, html, "echarts")
}
