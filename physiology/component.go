// Package physiology contains the behavior components that animate
// creature modules. Each component reads and writes its module's
// declared channels, senses the world through spatial queries, and
// speaks the stimulus protocol. The host drives every component once
// per rendered frame (Update) and on the slow ~4 Hz tick (Tick).
package physiology

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/sense"
	"github.com/pelagialabs/pelagia/stimulus"
)

// WholeModule selects the module itself instead of a hotspot in Sense
// and Emit calls.
const WholeModule = body.WholeModule

// SelfInfo is the physical self-description a component can query.
type SelfInfo struct {
	Location r3.Vec
	Velocity r3.Vec
	Mass     float64
	Radius   float64
	Depth    float64 // 0 at the surface, 1 at the seabed
	Colour   body.Colour
}

// Host is the capability surface the organism host exposes to a
// behavior component. Every operation completes synchronously within
// the calling frame; nothing blocks and nothing is queued.
type Host interface {
	// Module returns the module this component animates. Joint outputs
	// are written directly into Module().Joints.
	Module() *body.Module
	Self() SelfInfo

	// Input and Output access the module's declared channels by index.
	// Writing a channel whose role is not output panics: that is an
	// authoring mistake in the component's channel declaration.
	Input(ch int) float64
	Output(ch int, v float64)

	// Sense returns detectable entities within rng of the given hotspot
	// (or the whole module), each annotated with hotspot-relative
	// geometry, ordered by distance then entity ID.
	Sense(hotspot int, rng float64, f sense.Filter) []sense.Item

	// Emit broadcasts a stimulus from the given hotspot. halfAngle
	// limits delivery to a cone around the hotspot's forward axis;
	// zero or stimulus.WholeSphere delivers in every direction.
	Emit(typ string, hotspot int, rng, halfAngle float64, params [4]float64)
	// EmitTo sends a stimulus straight to one entity instead of
	// broadcasting; only the target is offered it.
	EmitTo(target uint32, typ string, hotspot int, rng float64, params [4]float64)
	EmitSound(rng, pitch, cue float64)
	EmitDisturbance(rng float64)
	// Reply answers a received stimulus back at its emitter.
	Reply(orig *stimulus.Stimulus, params [4]float64)

	// SetColour drives the named animated element's diffuse/emissive
	// colour pair (bioluminescence, blush signaling).
	SetColour(element string, diffuse, emissive body.Colour)

	// Propel applies a signed force along a hotspot's forward axis.
	Propel(hotspot int, force float64)

	// DrawEnergy withdraws up to amount from the organism's energy
	// store and returns what was actually granted; Deposit returns
	// energy to it. A depleted store grants zero, never an error.
	DrawEnergy(amount float64) float64
	Deposit(amount float64)

	Chemical(idx int) float64
	StirChemical(idx int, delta float64)

	// Logf writes fire-and-forget debug output.
	Logf(format string, args ...any)
}

// Component is the behavior attached to one module. Implementations
// embed Base and override the hooks they need.
type Component interface {
	// Layouts declares the component's channels, one layout per
	// structural variant. An empty set means no channels.
	Layouts() channel.LayoutSet

	// Init runs once after assembly, before the first Update. Returning
	// an error aborts organism construction.
	Init(h Host) error

	// Update runs once per rendered frame with the elapsed seconds.
	Update(h Host, elapsed float64)

	// Tick runs on the slow ~4 Hz tick.
	Tick(h Host)

	// HandleStimulus is the synchronous stimulus delivery entry point.
	// Unrecognized types must return false, not fail.
	HandleStimulus(h Host, s *stimulus.Stimulus) bool

	// AcceptCamera reports whether this module will act as a viewpoint.
	AcceptCamera() bool

	// Steer delivers joystick/throttle input to a camera-mounted root.
	Steer(h Host, dir r3.Vec, throttle float64)

	// Command delivers a named UI event; return false if unrecognized.
	Command(h Host, name string, value float64) bool
}

// Base provides no-op defaults for every Component hook.
type Base struct{}

func (Base) Layouts() channel.LayoutSet                      { return channel.NewLayoutSet() }
func (Base) Init(Host) error                                 { return nil }
func (Base) Update(Host, float64)                            {}
func (Base) Tick(Host)                                       {}
func (Base) HandleStimulus(Host, *stimulus.Stimulus) bool    { return false }
func (Base) AcceptCamera() bool                              { return false }
func (Base) Steer(Host, r3.Vec, float64)                     {}
func (Base) Command(Host, string, float64) bool              { return false }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
