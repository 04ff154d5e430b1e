// Package stimulus implements the broadcast protocol creatures use to
// sense and affect each other: a typed event with a range and an
// optional directional cone, delivered synchronously to every
// detectable entity inside the sphere at the moment of emission.
// Nothing is queued and nothing is retried; a recipient out of range
// simply never sees the event.
package stimulus

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Reserved stimulus types with fixed semantics. Anything else is free
// vocabulary between components; recipients that don't recognize a type
// decline it by returning "not handled".
const (
	// TypeSound is omnidirectional and carries a pitch and an optional
	// audio-cue identifier for camera-mounted listeners.
	TypeSound = "sound"
	// TypeDisturbance is omnidirectional and signals an abrupt movement
	// nearby. Its only payload is the intensity-derived range itself.
	TypeDisturbance = "disturbance"
	// TypeFeed asks the recipient for energy; the recipient answers
	// with a reply carrying the amount actually granted.
	TypeFeed = "feed"
)

// WholeSphere is the half-angle sentinel that disables the cone test,
// as does a half-angle of zero.
const WholeSphere = math.Pi

// Stimulus is one emitted event. Params are opaque and type-dependent;
// unused slots stay zero.
type Stimulus struct {
	EmitterID uint32
	TargetID  uint32 // nonzero on replies: deliver only to this entity
	Origin    r3.Vec
	Range     float64
	Type      string
	Params    [4]float64
	Reply     bool
}

// Receiver is the synchronous delivery entry point. Returning false
// means the type was not recognized, which is an expected outcome, not
// an error.
type Receiver interface {
	ReceiveStimulus(s *Stimulus) bool
}

// Angle returns the unsigned angle between the emission axis and the
// direction from origin to point.
func Angle(origin, axis, point r3.Vec) float64 {
	d := r3.Sub(point, origin)
	dn := r3.Norm(d)
	an := r3.Norm(axis)
	if dn == 0 || an == 0 {
		return 0
	}
	c := r3.Dot(d, axis) / (dn * an)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// InCone reports whether point falls inside the emission cone. A
// half-angle of zero or WholeSphere (or anything wider) admits every
// direction.
func InCone(origin, axis, point r3.Vec, halfAngle float64) bool {
	if halfAngle <= 0 || halfAngle >= WholeSphere {
		return true
	}
	return Angle(origin, axis, point) <= halfAngle
}

// NewSound builds the reserved omnidirectional sound stimulus. Any
// module may emit one without a hotspot.
func NewSound(emitter uint32, origin r3.Vec, rng, pitch, cue float64) *Stimulus {
	return &Stimulus{
		EmitterID: emitter,
		Origin:    origin,
		Range:     rng,
		Type:      TypeSound,
		Params:    [4]float64{pitch, cue},
	}
}

// NewDisturbance builds the reserved "something moved abruptly"
// stimulus. The range doubles as the payload.
func NewDisturbance(emitter uint32, origin r3.Vec, rng float64) *Stimulus {
	return &Stimulus{
		EmitterID: emitter,
		Origin:    origin,
		Range:     rng,
		Type:      TypeDisturbance,
		Params:    [4]float64{rng},
	}
}

// MakeReply re-targets this stimulus back at its emitter with new
// parameters, keeping the type so request/response exchanges need no
// second vocabulary. The replier becomes the new emitter.
func (s *Stimulus) MakeReply(replier uint32, origin r3.Vec, params [4]float64) *Stimulus {
	return &Stimulus{
		EmitterID: replier,
		TargetID:  s.EmitterID,
		Origin:    origin,
		Range:     s.Range,
		Type:      s.Type,
		Params:    params,
		Reply:     true,
	}
}
