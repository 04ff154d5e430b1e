package physiology

import (
	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
	"github.com/pelagialabs/pelagia/stimulus"
)

// Photophore channel index.
const PhotChanGlow = 0 // input: glow drive, adrenaline by default

// Photophore pulses the module's emissive colour: a slow idle sinusoid
// whose pace and brightness follow the glow input, interrupted by a
// sharp one-shot flash whenever a disturbance washes over the creature.
type Photophore struct {
	Base

	gen motion.Generator
}

// NewPhotophore creates a photophore.
func NewPhotophore() *Photophore { return &Photophore{} }

func (p *Photophore) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "glow", Source: channel.EndpointPlug, Dest: channel.EndpointNone,
			Chemical: body.ChemAdrenaline, Fallback: 0.2},
	})
}

func (p *Photophore) Init(h Host) error {
	p.gen.Sinusoid(0.15, 0.85, 2.4)
	return nil
}

func (p *Photophore) Update(h Host, elapsed float64) {
	level := h.Input(PhotChanGlow)

	// A finished one-shot flash falls back to the idle pulse.
	if p.gen.Finished() {
		p.gen.Sinusoid(0.15, 0.85, 2.4)
	}

	// The glow input speeds the pulse rather than rescaling the profile.
	s := p.gen.Update(elapsed * (0.5 + 1.5*level))

	base := h.Self().Colour
	emissive := base.Scale(s * (0.3 + 0.7*level))
	h.SetColour("photophore", base, emissive)
}

func (p *Photophore) HandleStimulus(h Host, s *stimulus.Stimulus) bool {
	if s.Type != stimulus.TypeDisturbance {
		return false
	}
	// One bright flash, then park until Update re-arms the idle pulse.
	p.gen.Set(p.gen.State(), 1, 0.08, 0.25, 0.6, motion.RepeatNever())
	return true
}
