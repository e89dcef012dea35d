package metrics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFullDocument(t *testing.T) {
	raw := []byte(`{
		"labels": ["2025-08-20", "2025-09-20"],
		"engagement": [12.5, "14.1"],
		"topSegments": [{"name": "Paddy Farmers", "rate": "71%"}, {"rate": 40}],
		"farmerReadRate": "76.4",
		"activeSegments": 42.9,
		"updatesSent": "5,400"
	}`)
	m, err := Decode(raw)
	require.NoError(t, err)

	want := &Metrics{
		Labels:         []string{"2025-08-20", "2025-09-20"},
		Engagement:     []float64{12.5, 14.1},
		TopSegments:    []Segment{{Name: "Paddy Farmers", Rate: 71}, {Name: "", Rate: 40}},
		FarmerReadRate: 76.4,
		ActiveSegments: 42,
		UpdatesSent:    5,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("decoded metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeWrongShapesAreAbsent(t *testing.T) {
	m, err := Decode([]byte(`{"labels": "today", "engagement": {"a": 1}, "topSegments": 7, "farmerReadRate": true}`))
	require.NoError(t, err)
	assert.Empty(t, m.Labels)
	assert.Empty(t, m.Engagement)
	assert.Empty(t, m.TopSegments)
	assert.Zero(t, m.FarmerReadRate)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"empty":      "  ",
		"malformed":  `{"labels": [`,
		"array root": `[1, 2, 3]`,
		"string":     `"metrics"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := Decode([]byte(raw))
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestDecodeOutOfRangeCountsSaturate(t *testing.T) {
	m, err := Decode([]byte(`{"updatesSent": 1e21, "activeSegments": -1e300}`))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, m.UpdatesSent)
	assert.Equal(t, math.MinInt, m.ActiveSegments)

	out := NewSynthesizer(3).Synthesize(m)
	assert.Equal(t, math.MaxInt, out.UpdatesSent)
	assert.Equal(t, math.MinInt, out.ActiveSegments)
}
