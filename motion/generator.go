// Package motion provides the reusable building blocks behavior
// components animate with: the attack/sustain/decay/refractory pattern
// generator that turns declarative motion profiles into smooth scalar
// trajectories, and the moving-average smoother that doubles as a
// twitch detector for disturbance emission.
package motion

import "math"

// Phase of the pattern generator.
type Phase uint8

const (
	PhaseTransition Phase = iota
	PhaseAttack
	PhaseSustain
	PhaseDecay
	PhaseRefractory
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseTransition:
		return "transition"
	case PhaseAttack:
		return "attack"
	case PhaseSustain:
		return "sustain"
	case PhaseDecay:
		return "decay"
	case PhaseRefractory:
		return "refractory"
	default:
		return "finished"
	}
}

// HoldForever makes Sustain never end; the servo profiles use it.
func HoldForever() float64 { return math.Inf(1) }

// RepeatNever parks the generator in Refractory after one cycle instead
// of looping back to Attack. A parked generator reports Finished.
func RepeatNever() float64 { return math.Inf(1) }

// Generator produces a smooth scalar trajectory from a motion profile.
// Create one per module that needs animation, re-arm it with any of the
// profile setters, and call Update once per frame.
type Generator struct {
	begin, end float64
	attack     float64
	sustain    float64
	decay      float64
	refractory float64

	phase Phase
	state float64
	clock float64
}

// State returns the current trajectory value.
func (g *Generator) State() float64 { return g.state }

// Phase returns the current phase.
func (g *Generator) Phase() Phase { return g.phase }

// Finished reports whether the generator has stopped producing motion:
// either explicitly stopped, or parked in an unending refractory.
func (g *Generator) Finished() bool {
	if g.phase == PhaseFinished {
		return true
	}
	return g.phase == PhaseRefractory && math.IsInf(g.refractory, 1)
}

// Set arms a full profile. The trajectory first transitions to begin at
// unit rate, eases to end over the attack period, holds for the sustain
// period, eases back over the decay period, waits out the refractory
// period, and repeats.
func (g *Generator) Set(begin, end, attack, sustain, decay, refractory float64) {
	g.begin, g.end = begin, end
	g.attack, g.sustain, g.decay, g.refractory = attack, sustain, decay, refractory
	g.phase = PhaseTransition
	g.clock = 0
}

// Servo moves to target within the given total period and holds there.
func (g *Generator) Servo(target, period float64) {
	g.Set(g.state, target, period, HoldForever(), 0, RepeatNever())
}

// ServoRate moves to target at the given constant rate (units per
// second) and holds there.
func (g *Generator) ServoRate(target, rate float64) {
	period := 0.0
	if rate > 0 {
		period = math.Abs(target-g.state) / rate
	}
	g.Set(g.state, target, period, HoldForever(), 0, RepeatNever())
}

// SwimStroke arms a repeating two-phase stroke with asymmetric power
// and recovery periods.
func (g *Generator) SwimStroke(begin, end, power, recovery, refractory float64) {
	g.Set(begin, end, power, 0, recovery, refractory)
}

// Sinusoid oscillates between lo and hi with equal rise and fall
// halves of the given period.
func (g *Generator) Sinusoid(lo, hi, period float64) {
	g.Set(lo, hi, period/2, 0, period/2, 0)
}

// Stop freezes the trajectory at its current value. Further updates do
// nothing.
func (g *Generator) Stop() {
	g.begin, g.end = g.state, g.state
	g.phase = PhaseFinished
	g.clock = 0
}

// ease maps a phase fraction through a quarter sine for a sigmoidal
// ramp.
func ease(frac float64) float64 {
	if frac >= 1 {
		return 1
	}
	return math.Sin(frac * math.Pi / 2)
}

// Update advances the trajectory by elapsed seconds and returns the new
// state. Leftover time cascades across phase boundaries so a large
// frame delta still lands where the profile says it should.
func (g *Generator) Update(elapsed float64) float64 {
	for elapsed > 0 {
		switch g.phase {
		case PhaseFinished:
			return g.state

		case PhaseTransition:
			// Approach begin at unit rate.
			gap := g.begin - g.state
			need := math.Abs(gap)
			if need <= elapsed {
				g.state = g.begin
				g.phase = PhaseAttack
				g.clock = 0
				elapsed -= need
				continue
			}
			g.state += math.Copysign(elapsed, gap)
			return g.state

		case PhaseAttack:
			if need := g.attack - g.clock; need <= elapsed {
				g.state = g.end
				g.phase = PhaseSustain
				g.clock = 0
				elapsed -= need
				continue
			}
			g.clock += elapsed
			elapsed = 0
			g.state = g.begin + (g.end-g.begin)*ease(g.clock/g.attack)

		case PhaseSustain:
			g.state = g.end
			if math.IsInf(g.sustain, 1) {
				return g.state
			}
			if need := g.sustain - g.clock; need <= elapsed {
				g.phase = PhaseDecay
				g.clock = 0
				elapsed -= need
				continue
			}
			g.clock += elapsed
			elapsed = 0

		case PhaseDecay:
			if need := g.decay - g.clock; need <= elapsed {
				g.state = g.begin
				g.phase = PhaseRefractory
				g.clock = 0
				elapsed -= need
				continue
			}
			g.clock += elapsed
			elapsed = 0
			g.state = g.end + (g.begin-g.end)*ease(g.clock/g.decay)

		case PhaseRefractory:
			// An unending refractory parks here; Finished() reports it.
			if math.IsInf(g.refractory, 1) {
				return g.state
			}
			if need := g.refractory - g.clock; need <= elapsed {
				g.phase = PhaseAttack
				g.clock = 0
				elapsed -= need
				continue
			}
			g.clock += elapsed
			elapsed = 0
		}
	}
	return g.state
}
