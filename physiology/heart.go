package physiology

import (
	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
)

// Heart channel index.
const HeartChanPulse = 0 // output: pulse waveform

// Heart beats a unit-period sinusoid scaled by adrenaline and owns the
// slow-tick upkeep of the body-wide chemical pool: adrenaline decays,
// satiety fades, stamina regenerates toward what satiety can support.
type Heart struct {
	Base

	gen motion.Generator
}

// NewHeart creates a heart.
func NewHeart() *Heart { return &Heart{} }

func (ht *Heart) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "pulse", Source: channel.EndpointNone, Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0},
	})
}

func (ht *Heart) Init(h Host) error {
	ht.gen.Sinusoid(0, 1, 1)
	return nil
}

func (ht *Heart) Update(h Host, elapsed float64) {
	rate := 0.9 + 1.6*h.Chemical(body.ChemAdrenaline)
	s := ht.gen.Update(elapsed * rate)

	if joints := h.Module().Joints; len(joints) > 0 {
		joints[0] = s
	}
	h.Output(HeartChanPulse, s)
}

func (ht *Heart) Tick(h Host) {
	adr := h.Chemical(body.ChemAdrenaline)
	h.StirChemical(body.ChemAdrenaline, -0.18*adr)

	sat := h.Chemical(body.ChemSatiety)
	h.StirChemical(body.ChemSatiety, -0.02*sat)

	stamina := h.Chemical(body.ChemStamina)
	target := 0.4 + 0.6*sat
	h.StirChemical(body.ChemStamina, (target-stamina)*0.15)
}
