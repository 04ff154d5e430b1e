package motion

import "math"

// Default twitch-detection tuning. The threshold admits ordinary signal
// drift between slow ticks and trips only on genuine snaps; the
// multiplier converts a snap delta into a disturbance range in world
// units.
const (
	DefaultTwitchThreshold  = 0.175
	DefaultTwitchMultiplier = 40.0
)

// Smoother maintains a moving average of an input signal so actuators
// move smoothly, and watches the raw signal on the slow tick for abrupt
// jumps worth broadcasting as a disturbance. Several module types share
// this exact pattern, so it lives here once.
type Smoother struct {
	Avg        float64
	K          float64 // smoothing gain per second
	Threshold  float64
	Multiplier float64

	last float64
}

// NewSmoother creates a smoother with the given gain and default
// twitch tuning.
func NewSmoother(k float64) *Smoother {
	return &Smoother{
		K:          k,
		Threshold:  DefaultTwitchThreshold,
		Multiplier: DefaultTwitchMultiplier,
	}
}

// Update folds the input into the moving average and returns it.
func (s *Smoother) Update(input, elapsed float64) float64 {
	s.Avg += (input - s.Avg) * elapsed * s.K
	return s.Avg
}

// Sample compares the raw input against its value at the previous slow
// tick. When the jump clears the threshold it returns the disturbance
// range to emit and true; otherwise zero and false.
func (s *Smoother) Sample(raw float64) (rng float64, emit bool) {
	delta := math.Abs(raw - s.last)
	s.last = raw
	if delta >= s.Threshold {
		return delta * s.Multiplier, true
	}
	return 0, false
}
