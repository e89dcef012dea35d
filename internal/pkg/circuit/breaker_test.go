package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)}
	b := New("metrics", 2, 30*time.Second)
	b.SetClock(clock.Now)

	boom := errors.New("boom")
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)}
	b := New("metrics", 1, 10*time.Second)
	b.SetClock(clock.Now)

	require.Error(t, b.Do(func() error { return errors.New("down") }))
	require.Equal(t, StateOpen, b.State())

	clock.Advance(10 * time.Second)
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 20, 8, 0, 0, 0, time.UTC)}
	b := New("metrics", 1, time.Second)
	b.SetClock(clock.Now)

	_ = b.Do(func() error { return errors.New("down") })
	clock.Advance(2 * time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "HALF-OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
