package physiology

import (
	"fmt"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/sense"
	"github.com/pelagialabs/pelagia/stimulus"
)

// Jaw channel indices, common to both variants.
const (
	JawChanClench = 0 // input: bite trigger
	JawChanGrip   = 1 // output: 1 while something is held
)

type jawPhase uint8

const (
	jawRelaxed jawPhase = iota
	jawClosing
	jawBiting
	jawMissed
	jawOpening
)

func (p jawPhase) String() string {
	switch p {
	case jawRelaxed:
		return "relaxed"
	case jawClosing:
		return "closing"
	case jawBiting:
		return "biting"
	case jawMissed:
		return "missed"
	default:
		return "opening"
	}
}

// Jaw is the grip/catch/release state machine. An entity counts as
// caught only when both tip hotspots report it within contact distance
// in the same frame; the held reference is re-validated every frame via
// the same query, never trusted across frames.
type Jaw struct {
	Base

	phase jawPhase
	angle float64
	held  uint32 // entity ID of the held prey; 0 when empty

	tipLeft, tipRight int
	throat            int

	closeRate    float64
	openRate     float64
	trigger      float64 // clench input threshold
	contactRange float64
	effortRate   float64 // energy drawn per second of muscle work
	biteRate     float64 // energy requested from prey per second
	snapRange    float64 // disturbance range of the initial snap

	meal float64 // energy granted by feed replies since the last tick
}

// NewJaw creates a jaw with standard tuning.
func NewJaw() *Jaw {
	return &Jaw{
		closeRate:    2.4,
		openRate:     0.8,
		trigger:      0.1,
		contactRange: 0.9,
		effortRate:   0.6,
		biteRate:     4.0,
		snapRange:    6.0,
	}
}

// Layouts declares one layout per jaw variant. The large jaw carries a
// barbel socket and relays its alarm signal up to the parent.
func (j *Jaw) Layouts() channel.LayoutSet {
	small := []channel.Spec{
		{Name: "clench", Source: channel.EndpointPlug, Dest: channel.EndpointNone,
			Chemical: body.ChemAdrenaline, Fallback: 0},
		{Name: "grip", Source: channel.EndpointNone, Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0},
	}
	large := []channel.Spec{
		small[0],
		small[1],
		{Name: "alarm.pass", Source: channel.SocketEndpoint(0), Dest: channel.EndpointPlug,
			Chemical: -1, Fallback: 0},
	}
	return channel.NewLayoutSet(small, large)
}

// Variants maps geometry assets to layout indices.
func (j *Jaw) Variants() map[string]int {
	return map[string]int{"jaw.small": 0, "jaw.large": 1}
}

func (j *Jaw) Init(h Host) error {
	m := h.Module()
	j.tipLeft = m.HotspotIndex("tip.left")
	j.tipRight = m.HotspotIndex("tip.right")
	j.throat = m.HotspotIndex("throat")
	if j.tipLeft < 0 || j.tipRight < 0 {
		return fmt.Errorf("jaw: asset %q missing tip hotspots", m.Asset)
	}
	return nil
}

// working draws a frame of muscle effort; false means the store is
// exhausted and the jaw has to let go.
func (j *Jaw) working(h Host, elapsed float64) bool {
	req := j.effortRate * elapsed
	if req <= 0 {
		return true
	}
	return h.DrawEnergy(req) >= req*0.5
}

// catchTest returns the ID of an entity simultaneously present at both
// tip hotspots, or 0.
func (j *Jaw) catchTest(h Host) uint32 {
	f := sense.Filter{Organisms: true}
	left := h.Sense(j.tipLeft, j.contactRange, f)
	if len(left) == 0 {
		return 0
	}
	right := h.Sense(j.tipRight, j.contactRange, f)
	for _, li := range left {
		for _, ri := range right {
			if li.Target.EntityID() == ri.Target.EntityID() {
				return li.Target.EntityID()
			}
		}
	}
	return 0
}

// escaped re-validates the held entity: absent from either tip means it
// got away.
func (j *Jaw) escaped(h Host) bool {
	if j.held == 0 {
		return true
	}
	f := sense.Filter{Organisms: true}
	foundAt := func(hotspot int) bool {
		for _, it := range h.Sense(hotspot, j.contactRange, f) {
			if it.Target.EntityID() == j.held {
				return true
			}
		}
		return false
	}
	return !foundAt(j.tipLeft) || !foundAt(j.tipRight)
}

func (j *Jaw) Update(h Host, elapsed float64) {
	trigger := h.Input(JawChanClench)

	switch j.phase {
	case jawRelaxed:
		if trigger > j.trigger && j.working(h, elapsed) {
			j.angle = 0
			h.Output(JawChanGrip, 0)
			h.EmitDisturbance(j.snapRange)
			j.phase = jawClosing
		}

	case jawClosing:
		if !j.working(h, elapsed) || trigger <= j.trigger {
			h.Output(JawChanGrip, 0)
			j.phase = jawOpening
			break
		}
		j.angle += j.closeRate * elapsed
		if id := j.catchTest(h); id != 0 {
			j.held = id
			h.Output(JawChanGrip, 1)
			j.phase = jawBiting
		} else if j.angle > 1 {
			j.phase = jawMissed
		}

	case jawMissed:
		if trigger <= j.trigger || !j.working(h, elapsed) {
			h.Output(JawChanGrip, 0)
			j.phase = jawOpening
		}

	case jawBiting:
		if trigger <= j.trigger || !j.working(h, elapsed) {
			j.held = 0
			h.Output(JawChanGrip, 0)
			j.phase = jawOpening
			break
		}
		if j.escaped(h) {
			// Close on nothing; the catch test may still find it again.
			j.held = 0
			h.Output(JawChanGrip, 0)
			j.phase = jawClosing
			break
		}
		// Ask the held entity for energy; the reply credits j.meal.
		// Targeted, so bystanders packed around the throat stay unbitten.
		h.EmitTo(j.held, stimulus.TypeFeed, j.throat, j.contactRange*2,
			[4]float64{j.biteRate * elapsed})

	case jawOpening:
		j.angle -= j.openRate * elapsed
		if j.angle <= 0 {
			j.angle = 0
			j.phase = jawRelaxed
		}
	}

	if j.angle > 1.1 {
		j.angle = 1.1
	}
	if joints := h.Module().Joints; len(joints) > 0 {
		joints[0] = clamp01(j.angle)
	}
}

func (j *Jaw) Tick(h Host) {
	if j.meal > 0 {
		h.Deposit(j.meal)
		h.StirChemical(body.ChemSatiety, j.meal*0.05)
		j.meal = 0
	}
}

func (j *Jaw) HandleStimulus(h Host, s *stimulus.Stimulus) bool {
	if s.Type == stimulus.TypeFeed && s.Reply {
		j.meal += s.Params[0]
		return true
	}
	return false
}
