package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockFirstTickIsZero(t *testing.T) {
	c := NewClock()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, c.Tick(start))
	assert.Equal(t, 0.0, c.Elapsed)

	assert.InDelta(t, 0.5, c.Tick(start.Add(500*time.Millisecond)), 1e-12)
	assert.InDelta(t, 1.0, c.Tick(start.Add(1500*time.Millisecond)), 1e-12)
	assert.InDelta(t, 1.5, c.Elapsed, 1e-12)
}

func TestClockPauseAndSpeed(t *testing.T) {
	c := NewClock()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Tick(now)

	c.Paused = true
	now = now.Add(time.Second)
	assert.Equal(t, 0.0, c.Tick(now))
	assert.Equal(t, 0.0, c.Elapsed)

	c.Paused = false
	c.Speed = 4
	now = now.Add(time.Second)
	assert.InDelta(t, 4, c.Tick(now), 1e-12, "pause does not bank the skipped second")
	assert.InDelta(t, 4, c.Delta, 1e-12)
}

func TestClockIgnoresTimeGoingBackwards(t *testing.T) {
	c := NewClock()
	now := time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)
	c.Tick(now)
	assert.Equal(t, 0.0, c.Tick(now.Add(-time.Second)))
	assert.InDelta(t, 1, c.Tick(now), 1e-12)
}

func TestClockReset(t *testing.T) {
	c := NewClock()
	c.Speed = 3
	now := time.Now()
	c.Tick(now)
	c.Tick(now.Add(time.Second))
	c.Reset()

	assert.Equal(t, 0.0, c.Elapsed)
	assert.Equal(t, 3.0, c.Speed)
	assert.Equal(t, 0.0, c.Tick(now.Add(2*time.Second)), "first tick after reset")
}
