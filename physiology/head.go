package physiology

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/motion"
	"github.com/pelagialabs/pelagia/sense"
	"github.com/pelagialabs/pelagia/stimulus"
)

// Head channel indices. Destination socket numbers follow the
// head.standard socket order: mouth, spine, port, starboard, crest,
// core, lateral.
const (
	HeadChanDrive     = 0 // output to spine: swim effort
	HeadChanSteerPort = 1 // output to port fin
	HeadChanSteerStar = 2 // output to starboard fin
	HeadChanClench    = 3 // output to mouth: bite trigger
	HeadChanGlow      = 4 // output to crest photophore
	HeadChanAlarm     = 5 // input from lateral whisker
)

// Head is the root behavior: it turns whisker alarm and hunger into
// drive/steer/clench signals for the rest of the body, accepts the
// camera, and answers joystick and UI-command input when the player is
// riding along.
type Head struct {
	Base

	sex body.Sex

	wander motion.Generator
	brow   int

	manualTimer float64
	manualSteer float64 // 0..1, 0.5 neutral
	manualDrive float64
	flashTimer  float64

	senseRange float64
	huntCone   float64
}

// NewHead creates a head. The spawner's alternating counter decides the
// sex so the population stays balanced.
func NewHead(sex body.Sex) *Head {
	return &Head{sex: sex, senseRange: 30, huntCone: math.Pi / 3}
}

// Sex reports the sex assigned at creation.
func (hd *Head) Sex() body.Sex { return hd.sex }

func (hd *Head) Layouts() channel.LayoutSet {
	return channel.NewLayoutSet([]channel.Spec{
		{Name: "drive", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(1),
			Chemical: -1, Fallback: 0.3},
		{Name: "steer.port", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(2),
			Chemical: -1, Fallback: 0.5},
		{Name: "steer.starboard", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(3),
			Chemical: -1, Fallback: 0.5},
		{Name: "clench", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(0),
			Chemical: -1, Fallback: 0},
		{Name: "glow", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(4),
			Chemical: -1, Fallback: 0.2},
		{Name: "alarm", Source: channel.SocketEndpoint(6), Dest: channel.EndpointNone,
			Chemical: -1, Fallback: 0},
	})
}

func (hd *Head) Init(h Host) error {
	hd.brow = h.Module().HotspotIndex("brow")
	hd.wander.Sinusoid(0.35, 0.65, 7)
	return nil
}

func (hd *Head) AcceptCamera() bool { return true }

func (hd *Head) Steer(h Host, dir r3.Vec, throttle float64) {
	hd.manualTimer = 0.5
	hd.manualSteer = clamp01(0.5 + dir.X*0.5)
	hd.manualDrive = clamp01(throttle)
}

func (hd *Head) Command(h Host, name string, value float64) bool {
	switch name {
	case "sing":
		h.EmitSound(60, clamp01(value), 1)
		return true
	case "flash":
		// Latched like manual steering so Update does not overwrite it
		// on the next frame.
		hd.flashTimer = 0.4
		return true
	}
	return false
}

func (hd *Head) Update(h Host, elapsed float64) {
	alarm := h.Input(HeadChanAlarm)

	steer := hd.wander.Update(elapsed)
	drive := 0.25 + 0.35*h.Chemical(body.ChemStamina) + 0.4*alarm
	clench := 0.0

	// Chase whatever looks edible in the forward cone.
	prey := hd.nearestPrey(h)
	if prey != nil {
		off := 0.0
		if n := r3.Norm(prey.Rel); n > 0 {
			off = prey.Rel.X / n
		}
		steer = clamp01(0.5 + off*0.8)
		drive = clamp01(drive + 0.3)
		if prey.NormDistance() > 0.85 {
			clench = 1
		}
	}

	if hd.manualTimer > 0 {
		hd.manualTimer -= elapsed
		steer = hd.manualSteer
		drive = hd.manualDrive
	}

	h.Output(HeadChanDrive, clamp01(drive))
	h.Output(HeadChanSteerPort, steer)
	h.Output(HeadChanSteerStar, 1-steer)
	h.Output(HeadChanClench, clench)

	glow := clamp01(0.2 + 0.8*alarm)
	if hd.flashTimer > 0 {
		hd.flashTimer -= elapsed
		glow = 1
	}
	h.Output(HeadChanGlow, glow)

	if joints := h.Module().Joints; len(joints) > 0 {
		joints[0] = alarm
	}
}

// nearestPrey returns the closest smaller organism inside the hunting
// cone, or nil.
func (hd *Head) nearestPrey(h Host) *sense.Item {
	items := h.Sense(hd.brow, hd.senseRange, sense.Filter{Organisms: true, LineOfSight: true})
	selfR := h.Self().Radius
	for i := range items {
		it := &items[i]
		if it.Target.Radius() >= selfR {
			continue
		}
		if it.Angle() > hd.huntCone {
			continue
		}
		return it // items arrive distance-ordered
	}
	return nil
}

func (hd *Head) Tick(h Host) {
	// Distress click when the lateral line is screaming.
	if h.Input(HeadChanAlarm) > 0.8 {
		h.EmitSound(45, 0.7, 2)
	}
}

func (hd *Head) HandleStimulus(h Host, s *stimulus.Stimulus) bool {
	// The head itself only listens for sound; everything else belongs
	// to the specialized modules.
	return s.Type == stimulus.TypeSound
}
