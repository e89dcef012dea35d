package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 11, 20, 9, 30, 0, 0, time.UTC)
}

func segmentNames(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Name
	}
	return out
}

func TestSynthesizeBaseline(t *testing.T) {
	s := NewSynthesizer(42)
	s.SetClock(fixedClock)

	m := s.Synthesize(nil)
	assert.Equal(t, []string{"2025-08-20", "2025-09-20", "2025-10-20", "2025-11-20"}, m.Labels)
	require.Len(t, m.Engagement, 4)
	for _, v := range m.Engagement {
		assert.GreaterOrEqual(t, v, 60.0)
		assert.LessOrEqual(t, v, 80.0)
	}
	assert.Equal(t, BaselineSegmentNames(), segmentNames(m.TopSegments))
	assert.Len(t, m.TopSegments, 5)
	assert.GreaterOrEqual(t, m.FarmerReadRate, 60.0)
	assert.LessOrEqual(t, m.FarmerReadRate, 92.0)
	assert.GreaterOrEqual(t, m.ActiveSegments, 20)
	assert.LessOrEqual(t, m.ActiveSegments, 65)
	assert.GreaterOrEqual(t, m.UpdatesSent, 1200)
	assert.LessOrEqual(t, m.UpdatesSent, 9800)
}

func TestSynthesizeBaselineMonthOverflow(t *testing.T) {
	s := NewSynthesizer(1)
	s.SetClock(func() time.Time { return time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC) })
	m := s.Synthesize(nil)
	// Feb 31 normalises forward the same way calendar arithmetic does.
	assert.Equal(t, []string{"2025-03-03", "2025-03-31", "2025-05-01", "2025-05-31"}, m.Labels)
}

func TestSynthesizeClampsEngagement(t *testing.T) {
	inputs := [][]float64{{70}, {-5, 0, 19.9, 20, 1000}, {10, 10, 10}}
	for seed := int64(1); seed <= 200; seed++ {
		s := NewSynthesizer(seed)
		for _, eng := range inputs {
			m := s.Synthesize(&Metrics{Labels: []string{"a"}, Engagement: eng})
			require.Len(t, m.Engagement, len(eng))
			for _, v := range m.Engagement {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 20.0)
			}
		}
	}
}

func TestSynthesizeEngagementSeventyClampsToTwenty(t *testing.T) {
	m := NewSynthesizer(7).Synthesize(&Metrics{Engagement: []float64{70}})
	assert.Equal(t, []float64{20}, m.Engagement)
}

func TestSynthesizeClampsSegmentRates(t *testing.T) {
	in := &Metrics{TopSegments: []Segment{
		{Name: "Pest Alerts", Rate: 99},
		{Name: "Market Prices", Rate: 2},
		{Name: "", Rate: 250},
		{Name: "Zero", Rate: 0},
	}}
	for seed := int64(1); seed <= 200; seed++ {
		m := NewSynthesizer(seed).Synthesize(in)
		require.Len(t, m.TopSegments, 4)
		for _, seg := range m.TopSegments {
			assert.GreaterOrEqual(t, seg.Rate, 0.0)
			assert.LessOrEqual(t, seg.Rate, 100.0)
			assert.Equal(t, seg.Rate, float64(int(seg.Rate)))
		}
		assert.Equal(t, "Segment", m.TopSegments[2].Name)
		assert.Equal(t, 100.0, m.TopSegments[2].Rate)
	}
}

func TestSynthesizeFillsMissingFields(t *testing.T) {
	m := NewSynthesizer(3).Synthesize(&Metrics{Labels: []string{"2025-10-20", "2025-11-20"}})
	require.Len(t, m.Engagement, 2)
	for _, v := range m.Engagement {
		assert.GreaterOrEqual(t, v, 60.0)
		assert.LessOrEqual(t, v, 80.0)
	}
	assert.Equal(t, []string{"Segment A", "Segment B", "Segment C", "Segment D", "Segment E"}, segmentNames(m.TopSegments))
	assert.GreaterOrEqual(t, m.FarmerReadRate, 48.0)
	assert.LessOrEqual(t, m.FarmerReadRate, 87.0)
	assert.GreaterOrEqual(t, m.ActiveSegments, 17)
	assert.LessOrEqual(t, m.ActiveSegments, 26)
	assert.GreaterOrEqual(t, m.UpdatesSent, 800)
	assert.LessOrEqual(t, m.UpdatesSent, 1800)
}

func TestSynthesizeJittersScalars(t *testing.T) {
	in := &Metrics{FarmerReadRate: 70, ActiveSegments: 40, UpdatesSent: 5000}
	for seed := int64(1); seed <= 50; seed++ {
		m := NewSynthesizer(seed).Synthesize(in)
		assert.InDelta(t, 70, m.FarmerReadRate, 2.05)
		assert.GreaterOrEqual(t, m.ActiveSegments, 37)
		assert.LessOrEqual(t, m.ActiveSegments, 46)
		assert.GreaterOrEqual(t, m.UpdatesSent, 4800)
		assert.LessOrEqual(t, m.UpdatesSent, 5800)
	}
}

func TestSynthesizeDoesNotMutateInput(t *testing.T) {
	in := &Metrics{Engagement: []float64{5, 6}, TopSegments: []Segment{{Name: "Paddy Farmers", Rate: 50}}}
	_ = NewSynthesizer(9).Synthesize(in)
	assert.Equal(t, []float64{5, 6}, in.Engagement)
	assert.Equal(t, 50.0, in.TopSegments[0].Rate)
}

func TestLoaderFallsBackToBaseline(t *testing.T) {
	synth := NewSynthesizer(5)
	synth.SetClock(fixedClock)
	loader := NewLoader(&countingSource{err: errors.New("404")}, synth)

	m := loader.Load(context.Background())
	assert.Equal(t, BaselineSegmentNames(), segmentNames(m.TopSegments))
	assert.Len(t, m.Labels, 4)
}

func TestLoaderJittersFetchedMetrics(t *testing.T) {
	loader := NewLoader(&countingSource{}, NewSynthesizer(5))
	m := loader.Load(context.Background())
	assert.GreaterOrEqual(t, m.ActiveSegments, 6)
	assert.LessOrEqual(t, m.ActiveSegments, 15)
	assert.Len(t, m.TopSegments, 5)
}

func TestTail(t *testing.T) {
	m := Metrics{Labels: []string{"a", "b", "c"}, Engagement: []float64{1, 2, 3}}
	labels, values := m.Tail(2)
	assert.Equal(t, []string{"b", "c"}, labels)
	assert.Equal(t, []float64{2, 3}, values)

	labels, values = m.Tail(10)
	assert.Len(t, labels, 3)
	assert.Len(t, values, 3)
}
