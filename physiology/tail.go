package physiology

import (
	"fmt"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
)

// Tail channel indices.
const (
	TailChanDrive = 0 // input: swim effort
	TailChanTurn  = 1 // input: 0.5 neutral steering bias
	TailChanBeat  = 2 // output: current stroke state
)

// Tail drives the main swim stroke: a repeating asymmetric power/
// recovery profile whose cadence follows the drive input, thrust along
// the fluke axis, and a disturbance ripple whenever the stroke snaps
// hard between slow ticks.
type Tail struct {
	Base

	gen   motion.Generator
	sm    *motion.Smoother
	fluke int

	maxThrust float64
	prev      float64
}

// NewTail creates a tail with standard tuning.
func NewTail() *Tail {
	return &Tail{sm: motion.NewSmoother(6), maxThrust: 26}
}

// Layouts declares a single layout; every tail variant shares it.
func (t *Tail) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "drive", Source: channel.EndpointPlug, Dest: channel.EndpointNone,
			Chemical: body.ChemStamina, Fallback: 0.3},
		{Name: "turn", Source: channel.EndpointPlug, Dest: channel.EndpointNone,
			Chemical: -1, Fallback: 0.5},
		{Name: "beat", Source: channel.EndpointNone, Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0},
	})
}

func (t *Tail) Init(h Host) error {
	t.fluke = h.Module().HotspotIndex("fluke")
	if t.fluke < 0 {
		return fmt.Errorf("tail: asset %q missing fluke hotspot", h.Module().Asset)
	}
	t.gen.Stop() // parked until the drive input arms a stroke
	return nil
}

func (t *Tail) Update(h Host, elapsed float64) {
	drive := h.Input(TailChanDrive)

	const deadzone = 0.05
	if drive > deadzone && t.gen.Finished() {
		period := 1.3 / (0.4 + drive)
		t.gen.SwimStroke(0, 1, period*0.4, period*0.6, 0.05)
	}
	if drive <= deadzone && !t.gen.Finished() {
		t.gen.Stop()
	}

	s := t.gen.Update(elapsed)
	delta := s - t.prev
	t.prev = s

	// Thrust on the power stroke only. The fluke faces backward, so a
	// negative force along its axis pushes the creature forward.
	if delta > 0 && elapsed > 0 {
		cost := t.maxThrust * drive * delta * 0.02
		got := h.DrawEnergy(cost)
		if cost > 0 && got > 0 {
			h.Propel(t.fluke, -t.maxThrust*drive*(delta/elapsed)*(got/cost))
		}
	}

	joints := h.Module().Joints
	if len(joints) > 0 {
		joints[0] = t.sm.Update(s, elapsed)
	}
	if len(joints) > 1 {
		joints[1] = h.Input(TailChanTurn)
	}
	h.Output(TailChanBeat, s)
}

func (t *Tail) Tick(h Host) {
	if rng, emit := t.sm.Sample(t.gen.State()); emit {
		h.EmitDisturbance(rng)
	}
}
