package physiology

import (
	"fmt"
	"math"

	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
)

// Fin channel indices.
const (
	FinChanSteer = 0 // input: 0.5 neutral deflection target
	FinChanFlare = 1 // output: current deflection
)

// Fin servos its blade toward the steering input and converts the
// deflection into a lateral force at the blade hotspot. Port and
// starboard fins receive mirrored steering values from the head, which
// is what turns the creature.
type Fin struct {
	Base

	gen    motion.Generator
	sm     *motion.Smoother
	blade  int
	target float64

	maxLateral float64
}

// NewFin creates a fin with standard tuning.
func NewFin() *Fin {
	return &Fin{sm: motion.NewSmoother(8), maxLateral: 9, target: 0.5}
}

func (f *Fin) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "steer", Source: channel.EndpointPlug, Dest: channel.EndpointNone,
			Chemical: -1, Fallback: 0.5},
		{Name: "flare", Source: channel.EndpointNone, Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0.5},
	})
}

func (f *Fin) Init(h Host) error {
	f.blade = h.Module().HotspotIndex("blade")
	if f.blade < 0 {
		return fmt.Errorf("fin: asset %q missing blade hotspot", h.Module().Asset)
	}
	f.gen.Servo(0.5, 0.1)
	return nil
}

func (f *Fin) Update(h Host, elapsed float64) {
	steer := h.Input(FinChanSteer)
	if math.Abs(steer-f.target) > 0.02 {
		f.target = steer
		f.gen.Servo(steer, 0.25)
	}

	pos := f.gen.Update(elapsed)
	if deflect := (pos - 0.5) * 2; math.Abs(deflect) > 0.01 {
		h.Propel(f.blade, deflect*f.maxLateral)
	}

	if joints := h.Module().Joints; len(joints) > 0 {
		joints[0] = clamp01(pos)
	}
	h.Output(FinChanFlare, pos)
}

func (f *Fin) Tick(h Host) {
	if rng, emit := f.sm.Sample(f.gen.State()); emit {
		h.EmitDisturbance(rng)
	}
}
