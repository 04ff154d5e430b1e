package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// Terrain is the procedural seabed: a simplex height field over the
// horizontal plane. Anything below the local floor height is inside
// rock, which blocks movement and line of sight.
type Terrain struct {
	noise  opensimplex.Noise
	width  float64
	height float64
	depth  float64

	baseFrac   float64 // floor height as a fraction of the water column
	reliefFrac float64 // additional relief on top of the base
	scale      float64 // noise feature scale in world units
}

// NewTerrain generates a seabed for a basin of the given extents.
func NewTerrain(width, height, depth float64, seed int64) *Terrain {
	return &Terrain{
		noise:      opensimplex.NewNormalized(seed),
		width:      width,
		height:     height,
		depth:      depth,
		baseFrac:   0.04,
		reliefFrac: 0.18,
		scale:      45,
	}
}

// Floor returns the seabed height at the given horizontal position.
func (t *Terrain) Floor(x, y float64) float64 {
	n := t.noise.Eval2(x/t.scale, y/t.scale)
	// A second octave sharpens ridges without disturbing the broad shape.
	n = 0.7*n + 0.3*t.noise.Eval2(x/(t.scale*0.31)+57, y/(t.scale*0.31)+57)
	return t.depth * (t.baseFrac + t.reliefFrac*n)
}

// Inside reports whether the point is buried in the seabed.
func (t *Terrain) Inside(p r3.Vec) bool {
	return p.Z < t.Floor(p.X, p.Y)
}

// SegmentClear reports whether the straight segment from a to b stays
// out of the rock. Sampling resolution follows the noise feature scale;
// ridges narrower than a couple of world units are not worth occluding
// on.
func (t *Terrain) SegmentClear(a, b r3.Vec) bool {
	d := r3.Sub(b, a)
	length := r3.Norm(d)
	if length == 0 {
		return !t.Inside(a)
	}
	steps := int(length/2) + 1
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		if t.Inside(r3.Add(a, r3.Scale(f, d))) {
			return false
		}
	}
	return true
}

// Clearance returns how far above the local floor the point sits.
// Negative means buried.
func (t *Terrain) Clearance(p r3.Vec) float64 {
	return p.Z - t.Floor(p.X, p.Y)
}

// SampleOpenPoint picks a point above the floor with the given minimum
// clearance, using rejection against the height field. next provides
// uniform randoms in [0,1).
func (t *Terrain) SampleOpenPoint(next func() float64, minClearance float64) r3.Vec {
	for i := 0; i < 64; i++ {
		p := r3.Vec{
			X: next() * t.width,
			Y: next() * t.height,
			Z: next() * t.depth,
		}
		if t.Clearance(p) >= minClearance && p.Z < t.depth {
			return p
		}
	}
	// Fallback: center of the basin at mid-depth, lifted above the
	// floor if the noise put a peak there.
	p := r3.Vec{X: t.width / 2, Y: t.height / 2, Z: t.depth / 2}
	if floor := t.Floor(p.X, p.Y); p.Z < floor+minClearance {
		p.Z = math.Min(floor+minClearance, t.depth)
	}
	return p
}
