// Package telemetry collects simulation events into windowed stats and
// writes them to CSV and structured logs.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowSec   float64
	windowStart float64

	// Event counters for the current window
	births       int
	deaths       int
	sounds       int
	disturbances int
	feeds        int
	catches      int
	misses       int
	escapes      int
	eaten        int
	dissolved    int
}

// NewCollector creates a stats collector flushing every windowSec
// simulation seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{windowSec: windowSec}
}

// RecordBirth records a creature entering the world.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a creature death.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordSound records a sound emission.
func (c *Collector) RecordSound() {
	c.sounds++
}

// RecordDisturbance records a disturbance emission.
func (c *Collector) RecordDisturbance() {
	c.disturbances++
}

// RecordFeed records a feed request that was granted energy.
func (c *Collector) RecordFeed() {
	c.feeds++
}

// RecordCatch records a jaw closing on prey.
func (c *Collector) RecordCatch() {
	c.catches++
}

// RecordMiss records a jaw strike that closed on water.
func (c *Collector) RecordMiss() {
	c.misses++
}

// RecordEscape records held prey slipping out of a biting jaw.
func (c *Collector) RecordEscape() {
	c.escapes++
}

// RecordMorselEaten records a morsel consumed by a creature.
func (c *Collector) RecordMorselEaten() {
	c.eaten++
}

// RecordMorselDissolved records a morsel expiring unconsumed.
func (c *Collector) RecordMorselDissolved() {
	c.dissolved++
}

// ShouldFlush returns true once the current window has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats for the elapsed window and resets the
// counters. The caller provides the current population counts and the
// energy values of living creatures.
func (c *Collector) Flush(simTime float64, creatures, morsels int, energies []float64) WindowStats {
	var catchRate float64
	if strikes := c.catches + c.misses; strikes > 0 {
		catchRate = float64(c.catches) / float64(strikes)
	}

	mean, std, p10, p50, p90 := ComputeEnergyStats(energies)

	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   simTime,

		Creatures: creatures,
		Morsels:   morsels,

		Births: c.births,
		Deaths: c.deaths,

		Sounds:       c.sounds,
		Disturbances: c.disturbances,
		Feeds:        c.feeds,

		Catches:   c.catches,
		Misses:    c.misses,
		Escapes:   c.escapes,
		CatchRate: catchRate,

		MorselsEaten:     c.eaten,
		MorselsDissolved: c.dissolved,

		EnergyMean: mean,
		EnergyStd:  std,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,
	}

	c.windowStart = simTime
	c.births = 0
	c.deaths = 0
	c.sounds = 0
	c.disturbances = 0
	c.feeds = 0
	c.catches = 0
	c.misses = 0
	c.escapes = 0
	c.eaten = 0
	c.dissolved = 0

	return stats
}
