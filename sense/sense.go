// Package sense defines the spatial-query result model: what a creature
// can detect about a nearby entity, expressed in the local frame of the
// hotspot doing the sensing. All derived geometry (angle, distance,
// subtended size) is computed from the stored relative position, never
// cached.
package sense

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
)

// Detectable is the self-description an entity exposes to anything that
// might sense it.
type Detectable interface {
	EntityID() uint32
	Location() r3.Vec
	Velocity() r3.Vec
	Mass() float64
	Radius() float64
	Colour() body.Colour
	DepthFraction() float64
	Terrain() bool
}

// Filter selects which entity classes a spatial query returns.
type Filter struct {
	Organisms   bool
	Terrain     bool
	LineOfSight bool
}

// Basis builds a right-handed orthonormal frame whose forward axis is
// the given direction: local +Y maps to forward, +Z stays as close to
// world up as the forward axis allows.
func Basis(forward r3.Vec) (right, fwd, up r3.Vec) {
	fwd = r3.Unit(forward)
	ref := r3.Vec{Z: 1}
	if math.Abs(r3.Dot(fwd, ref)) > 0.999 {
		ref = r3.Vec{X: 1}
	}
	right = r3.Unit(r3.Cross(fwd, ref))
	up = r3.Cross(right, fwd)
	return right, fwd, up
}

// Relative expresses the world point p in the frame anchored at origin
// with the given forward axis. In the result, +Y is along the forward
// axis.
func Relative(origin, forward, p r3.Vec) r3.Vec {
	right, fwd, up := Basis(forward)
	d := r3.Sub(p, origin)
	return r3.Vec{X: r3.Dot(d, right), Y: r3.Dot(d, fwd), Z: r3.Dot(d, up)}
}

// Item is one spatial-query result: the detected entity plus its
// position relative to the querying hotspot's frame.
type Item struct {
	Target     Detectable
	Rel        r3.Vec  // hotspot-local position, +Y forward
	QueryRange float64 // range of the query that produced this item
}

// NewItem builds an item for target as seen from a frame at origin
// facing forward.
func NewItem(target Detectable, origin, forward r3.Vec, queryRange float64) Item {
	return Item{
		Target:     target,
		Rel:        Relative(origin, forward, target.Location()),
		QueryRange: queryRange,
	}
}

// Distance is the world distance to the entity's surface. Overlapping
// volumes report zero.
func (it Item) Distance() float64 {
	d := r3.Norm(it.Rel) - it.Target.Radius()
	if d < 0 {
		return 0
	}
	return d
}

// NormDistance maps distance into [0,1] with 1 meaning touching and 0
// meaning at or beyond the query range.
func (it Item) NormDistance() float64 {
	if it.QueryRange <= 0 {
		return 0
	}
	n := 1 - it.Distance()/it.QueryRange
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// Angle is the unsigned angle between the hotspot's line of sight and
// the entity, in radians.
func (it Item) Angle() float64 {
	n := r3.Norm(it.Rel)
	if n == 0 {
		return 0
	}
	c := it.Rel.Y / n
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// HalfAngle is the apparent half-angle the entity subtends, from its
// self-reported radius. An entity enveloping the hotspot subtends a
// full quarter turn.
func (it Item) HalfAngle() float64 {
	n := r3.Norm(it.Rel)
	if n == 0 {
		return math.Pi / 2
	}
	return math.Atan(it.Target.Radius() / n)
}
