package physiology

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
	"github.com/pelagialabs/pelagia/stimulus"
)

// Whisker channel index.
const WhiskerChanAlarm = 0 // output: smoothed excitement level

// Whisker is the vibration sense: it listens for disturbance stimuli,
// converts proximity into excitement, and publishes the decaying level
// on its alarm output while nudging the adrenaline pool.
type Whisker struct {
	Base

	excitement float64
	decayRate  float64
	sm         *motion.Smoother
}

// NewWhisker creates a whisker with standard tuning.
func NewWhisker() *Whisker {
	return &Whisker{decayRate: 1.4, sm: motion.NewSmoother(10)}
}

func (w *Whisker) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "alarm", Source: channel.EndpointNone, Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0},
	})
}

func (w *Whisker) Update(h Host, elapsed float64) {
	w.excitement -= w.excitement * w.decayRate * elapsed
	if w.excitement < 1e-4 {
		w.excitement = 0
	}
	h.Output(WhiskerChanAlarm, w.excitement)

	if joints := h.Module().Joints; len(joints) > 0 {
		joints[0] = w.sm.Update(w.excitement, elapsed)
	}
}

func (w *Whisker) HandleStimulus(h Host, s *stimulus.Stimulus) bool {
	if s.Type != stimulus.TypeDisturbance {
		return false
	}
	dist := r3.Norm(r3.Sub(h.Self().Location, s.Origin))
	intensity := 0.0
	if s.Range > 0 {
		intensity = clamp01(1 - dist/s.Range)
	}
	w.excitement = math.Max(w.excitement, intensity)
	h.StirChemical(body.ChemAdrenaline, 0.3*intensity)
	return true
}
