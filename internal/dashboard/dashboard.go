// Package dashboard is the view layer: it maps Metrics onto cards, tables and
// go-echarts chart handles that are created once and updated in place.
package dashboard

import (
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fieldpulse/internal/logger"
	"fieldpulse/internal/metrics"
)

const (
	ChartEngagement = "engagement"
	ChartPreview    = "preview"
	ChartSegments   = "segments"

	defaultPreviewPoints = 10
	placeholderCard      = "—"
)

// ErrNotRendered is returned when charts are requested before the first Render.
var ErrNotRendered = errors.New("dashboard has not been rendered yet")

// Layout 控制看板上哪些可选组件存在。
type Layout struct {
	Title             string
	PreviewPoints     int
	ShowPreviewChart  bool
	ShowSegmentsChart bool
}

// Cards holds the formatted text of the three summary cards.
type Cards struct {
	ActiveSegments string `json:"activeSegments"`
	UpdatesSent    string `json:"updatesSent"`
	FarmerReadRate string `json:"farmerReadRate"`
}

type SegmentRow struct {
	Name string `json:"name"`
	Rate string `json:"rate"`
}

// ChartStats counts how often a chart handle was built or updated.
type ChartStats struct {
	Created int
	Updated int
}

type Dashboard struct {
	mu        sync.Mutex
	layout    Layout
	templates []Template
	printer   *message.Printer

	engagement *charts.Line
	preview    *charts.Bar
	segments   *charts.Bar
	newPreview func(labels []string, values []float64) *charts.Bar

	cards       Cards
	segmentRows []SegmentRow
	stats       map[string]ChartStats
}

func New(layout Layout, templates []Template) *Dashboard {
	if layout.PreviewPoints <= 0 {
		layout.PreviewPoints = defaultPreviewPoints
	}
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Dashboard{
		layout:     layout,
		templates:  templates,
		printer:    message.NewPrinter(language.AmericanEnglish),
		newPreview: newPreviewChart,
		cards: Cards{
			ActiveSegments: placeholderCard,
			UpdatesSent:    placeholderCard,
			FarmerReadRate: placeholderCard,
		},
		stats: make(map[string]ChartStats),
	}
}

// Render pushes m into the cards, tables and charts. A nil m leaves the
// previous state untouched. Repeated calls reuse the existing chart handles.
func (d *Dashboard) Render(m *metrics.Metrics) {
	if m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.renderCards(*m)
	d.renderEngagement(*m)
	if d.layout.ShowPreviewChart {
		d.renderPreview(*m)
	}
	d.renderSegments(*m)
}

func (d *Dashboard) renderCards(m metrics.Metrics) {
	d.cards = Cards{
		ActiveSegments: strconv.Itoa(m.ActiveSegments),
		UpdatesSent:    d.printer.Sprintf("%d", m.UpdatesSent),
		FarmerReadRate: formatPercent(m.FarmerReadRate),
	}
}

func (d *Dashboard) renderEngagement(m metrics.Metrics) {
	if d.engagement != nil {
		updateEngagementChart(d.engagement, m.Labels, m.Engagement)
		d.bump(ChartEngagement, false)
		return
	}
	d.engagement = newEngagementChart(m.Labels, m.Engagement)
	d.bump(ChartEngagement, true)
}

func (d *Dashboard) renderPreview(m metrics.Metrics) {
	labels, values := m.Tail(d.layout.PreviewPoints)
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("preview chart failed: %v", r)
			d.preview = nil
		}
	}()
	if d.preview != nil {
		updateBarChart(d.preview, labels, values)
		d.bump(ChartPreview, false)
		return
	}
	d.preview = d.newPreview(labels, values)
	if d.preview != nil {
		d.bump(ChartPreview, true)
	}
}

func (d *Dashboard) renderSegments(m metrics.Metrics) {
	labels := make([]string, len(m.TopSegments))
	values := make([]float64, len(m.TopSegments))
	rows := make([]SegmentRow, len(m.TopSegments))
	for i, seg := range m.TopSegments {
		labels[i] = seg.Name
		values[i] = seg.Rate
		rows[i] = SegmentRow{Name: seg.Name, Rate: formatPercent(seg.Rate)}
	}
	d.segmentRows = rows

	if !d.layout.ShowSegmentsChart {
		d.segments = nil
		return
	}
	if d.segments != nil {
		updateBarChart(d.segments, labels, values)
		d.bump(ChartSegments, false)
		return
	}
	d.segments = newSegmentsChart(labels, values)
	d.bump(ChartSegments, true)
}

func (d *Dashboard) bump(name string, created bool) {
	st := d.stats[name]
	if created {
		st.Created++
	} else {
		st.Updated++
	}
	d.stats[name] = st
}

// Stats reports create/update counts for a chart.
func (d *Dashboard) Stats(name string) ChartStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats[name]
}

func (d *Dashboard) EngagementChart() *charts.Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engagement
}

func (d *Dashboard) PreviewChart() *charts.Bar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preview
}

func (d *Dashboard) SegmentsChart() *charts.Bar {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.segments
}

func (d *Dashboard) Cards() Cards {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cards
}

func (d *Dashboard) Templates() []Template {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Template(nil), d.templates...)
}

// View 返回渲染 HTML 外壳所需的快照。
func (d *Dashboard) View(scale Scale) View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{
		Title:     d.layout.Title,
		Scale:     scale,
		Cards:     d.cards,
		Segments:  append([]SegmentRow(nil), d.segmentRows...),
		Templates: append([]Template(nil), d.templates...),
		HasCharts: d.engagement != nil,
	}
}

// WriteCharts renders the current charts as a standalone go-echarts page.
func (d *Dashboard) WriteCharts(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.engagement == nil {
		return ErrNotRendered
	}
	page := components.NewPage()
	page.PageTitle = d.layout.Title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(d.engagement)
	if d.preview != nil {
		page.AddCharts(d.preview)
	}
	if d.segments != nil {
		page.AddCharts(d.segments)
	}
	return page.Render(w)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
