// Package metrics holds the dashboard figures for one render cycle and the
// fetch → synthesize pipeline that produces them.
package metrics

// Segment is a named audience subgroup with its engagement rate (0–100).
type Segment struct {
	Name string  `json:"name" yaml:"name"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// Metrics 是一次渲染周期内的全部看板数据，按值传递，不做持久化。
type Metrics struct {
	Labels         []string  `json:"labels"`
	Engagement     []float64 `json:"engagement"`
	TopSegments    []Segment `json:"topSegments"`
	FarmerReadRate float64   `json:"farmerReadRate"`
	ActiveSegments int       `json:"activeSegments"`
	UpdatesSent    int       `json:"updatesSent"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (m Metrics) Clone() Metrics {
	out := m
	out.Labels = append([]string(nil), m.Labels...)
	out.Engagement = append([]float64(nil), m.Engagement...)
	out.TopSegments = append([]Segment(nil), m.TopSegments...)
	return out
}

// Tail returns the last n labels and engagement points (fewer when shorter).
func (m Metrics) Tail(n int) ([]string, []float64) {
	return tailStrings(m.Labels, n), tailFloats(m.Engagement, n)
}

func tailStrings(items []string, n int) []string {
	if n <= 0 || len(items) <= n {
		return append([]string(nil), items...)
	}
	return append([]string(nil), items[len(items)-n:]...)
}

func tailFloats(items []float64, n int) []float64 {
	if n <= 0 || len(items) <= n {
		return append([]float64(nil), items...)
	}
	return append([]float64(nil), items[len(items)-n:]...)
}
