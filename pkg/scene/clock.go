package scene

import "time"

// Clock turns wall-clock ticks into simulated seconds.
type Clock struct {
	// Elapsed is the simulated seconds since the first tick.
	Elapsed float64
	// Delta is the simulated seconds added by the last tick.
	Delta float64
	// Paused stops accumulation; ticks still advance the baseline.
	Paused bool
	// Speed multiplies real time.
	Speed float64

	last    time.Time
	started bool
}

// NewClock returns a running clock at normal speed.
func NewClock() *Clock {
	return &Clock{Speed: 1}
}

// Tick advances the clock to now and returns the simulated delta.
// The first tick only establishes the baseline and returns 0.
func (c *Clock) Tick(now time.Time) float64 {
	if !c.started {
		c.started = true
		c.last = now
		c.Delta = 0
		return 0
	}

	wall := now.Sub(c.last).Seconds()
	c.last = now
	if c.Paused || wall < 0 {
		c.Delta = 0
		return 0
	}
	c.Delta = wall * c.Speed
	c.Elapsed += c.Delta
	return c.Delta
}

// Reset returns the clock to its initial state, keeping Speed.
func (c *Clock) Reset() {
	*c = Clock{Speed: c.Speed}
}
