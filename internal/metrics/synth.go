package metrics

import (
	"math/rand"
	"sync"
	"time"

	"fieldpulse/internal/pkg/convert"
)

const (
	labelLayout     = "2006-01-02"
	baselineMonths  = 4
	engagementMin   = 0
	engagementMax   = 20
	rateMin         = 0
	rateMax         = 100
	defaultActive   = 20
	defaultUpdates  = 1000
	fallbackSegment = "Segment"
)

type segmentRange struct {
	name     string
	min, max float64
}

// Segments used when no metrics document could be fetched.
var baselineSegments = []segmentRange{
	{"Irrigation Updates", 60, 92},
	{"Paddy Farmers", 50, 85},
	{"Pest Alerts", 30, 75},
	{"Water Allocation", 55, 95},
	{"Market Prices", 40, 78},
}

// Segments used when a fetched document carries no topSegments.
var placeholderSegments = []segmentRange{
	{"Segment A", 40, 92},
	{"Segment B", 30, 85},
	{"Segment C", 25, 75},
	{"Segment D", 35, 88},
	{"Segment E", 20, 70},
}

// BaselineSegmentNames lists the segment names produced from an empty source.
func BaselineSegmentNames() []string {
	out := make([]string, len(baselineSegments))
	for i, s := range baselineSegments {
		out[i] = s.name
	}
	return out
}

// Synthesizer fills in and jitters metrics to simulate live figures.
// It is safe for concurrent use.
type Synthesizer struct {
	mu    sync.Mutex
	rng   *rand.Rand
	nowFn func() time.Time
}

// NewSynthesizer seeds the generator; seed 0 picks a time based seed.
func NewSynthesizer(seed int64) *Synthesizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthesizer{rng: rand.New(rand.NewSource(seed)), nowFn: time.Now}
}

// SetClock overrides the clock used for baseline labels.
func (s *Synthesizer) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// Synthesize returns a fully populated copy of in. A nil input yields a fresh
// baseline; otherwise existing values are perturbed. in is never mutated.
func (s *Synthesizer) Synthesize(in *Metrics) Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in == nil {
		return s.baseline()
	}
	out := in.Clone()

	if len(out.Engagement) > 0 {
		for i, v := range out.Engagement {
			jittered := convert.Clamp(v+s.between(-0.8, 1.2), engagementMin, engagementMax)
			out.Engagement[i] = convert.Fixed(jittered, 1)
		}
	} else {
		out.Engagement = s.engagementFor(len(out.Labels))
	}

	if len(out.TopSegments) > 0 {
		for i, seg := range out.TopSegments {
			base := seg.Rate
			if base == 0 {
				base = s.between(40, 80)
			}
			name := seg.Name
			if name == "" {
				name = fallbackSegment
			}
			rate := convert.RoundHalfUp(convert.Clamp(base+s.between(-6, 6), rateMin, rateMax))
			out.TopSegments[i] = Segment{Name: name, Rate: rate}
		}
	} else {
		out.TopSegments = s.segmentsFrom(placeholderSegments)
	}

	readRate := out.FarmerReadRate
	if readRate == 0 {
		readRate = s.between(50, 85)
	}
	out.FarmerReadRate = convert.Fixed(readRate+s.between(-2, 2), 1)

	active := out.ActiveSegments
	if active == 0 {
		active = defaultActive
	}
	out.ActiveSegments = convert.FloatToInt(convert.RoundHalfUp(float64(active) + s.between(-3, 6)))

	updates := out.UpdatesSent
	if updates == 0 {
		updates = defaultUpdates
	}
	out.UpdatesSent = convert.FloatToInt(convert.RoundHalfUp(float64(updates) + s.between(-200, 800)))
	return out
}

func (s *Synthesizer) baseline() Metrics {
	now := s.nowFn()
	labels := make([]string, 0, baselineMonths)
	for i := baselineMonths - 1; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month()-time.Month(i), now.Day(), 0, 0, 0, 0, now.Location())
		labels = append(labels, d.Format(labelLayout))
	}
	return Metrics{
		Labels:         labels,
		Engagement:     s.engagementFor(len(labels)),
		TopSegments:    s.segmentsFrom(baselineSegments),
		FarmerReadRate: convert.Fixed(s.between(60, 92), 1),
		ActiveSegments: int(convert.RoundHalfUp(s.between(20, 65))),
		UpdatesSent:    int(convert.RoundHalfUp(s.between(1200, 9800))),
	}
}

// engagementFor generates unclamped points in 60–80.
func (s *Synthesizer) engagementFor(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = convert.RoundHalfUp(s.between(60, 80))
	}
	return out
}

func (s *Synthesizer) segmentsFrom(ranges []segmentRange) []Segment {
	out := make([]Segment, len(ranges))
	for i, r := range ranges {
		out[i] = Segment{Name: r.name, Rate: convert.RoundHalfUp(s.between(r.min, r.max))}
	}
	return out
}

func (s *Synthesizer) between(min, max float64) float64 {
	return s.rng.Float64()*(max-min) + min
}
