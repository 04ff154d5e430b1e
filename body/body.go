// Package body defines the physical data model for modular creatures:
// modules (cells), their hotspots and sockets, and the organism tree
// that assembles them. Behavior logic lives in package physiology; this
// package only describes what a creature is made of and where its parts
// sit in the world.
package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sex of an organism. Assigned at creation time by the spawner so the
// population stays balanced.
type Sex uint8

const (
	SexFemale Sex = iota
	SexMale
)

func (s Sex) String() string {
	if s == SexMale {
		return "male"
	}
	return "female"
}

// Colour is a normalized RGB triple.
type Colour struct {
	R, G, B float64
}

// Scale returns the colour with all channels multiplied by k.
func (c Colour) Scale(k float64) Colour {
	return Colour{R: c.R * k, G: c.G * k, B: c.B * k}
}

// Lerp blends toward other by t in [0,1].
func (c Colour) Lerp(other Colour, t float64) Colour {
	return Colour{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// Body-wide chemical indices. Channels may name one of these as their
// default driver; the heart physiology maintains them on the slow tick.
const (
	ChemAdrenaline = 0
	ChemSatiety    = 1
	ChemStamina    = 2

	NumChemicals = 3
)

// Hotspot is a named local reference frame on a module, used for
// directional sensing and effecting. Offset and Forward are expressed
// in the module's local frame: +X right, +Y forward, +Z up.
type Hotspot struct {
	Name    string
	Offset  r3.Vec
	Forward r3.Vec
}

// Socket is an attachment point for a child module.
type Socket struct {
	Name   string
	Offset r3.Vec // local frame, like Hotspot.Offset
	Child  *Module
}

// Plug attaches a module to its parent. The root module has none.
type Plug struct {
	Parent *Module
	Socket int // socket index on the parent
}

// Module is one physical building block of an organism: geometry-derived
// attributes plus the joint-output array its behavior component writes
// every frame.
type Module struct {
	Name    string // instance name within the organism
	Asset   string // geometry asset name, e.g. "jaw.large"
	Variant int    // structural variant index resolved from Asset

	Mass       float64
	Resistance float64
	Buoyancy   float64
	Radius     float64

	Joints   []float64 // one scalar in [0,1] per animatable joint
	Hotspots []Hotspot
	Sockets  []Socket
	Plug     *Plug

	Org   *Organism
	Index int // position in Org.Modules

	// World pose, updated by the host after each physics step.
	Pos     r3.Vec
	Heading float64
}

// Frame returns the module's world-space orthonormal frame.
// Forward lies in the horizontal plane along Heading; Up is world +Z.
func (m *Module) Frame() (right, forward, up r3.Vec) {
	sin, cos := math.Sincos(m.Heading)
	forward = r3.Vec{X: cos, Y: sin}
	right = r3.Vec{X: sin, Y: -cos}
	up = r3.Vec{Z: 1}
	return right, forward, up
}

// LocalToWorld maps a point in the module's local frame (+X right,
// +Y forward, +Z up) to world coordinates.
func (m *Module) LocalToWorld(p r3.Vec) r3.Vec {
	right, forward, up := m.Frame()
	return r3.Add(m.Pos, r3.Add(r3.Scale(p.X, right),
		r3.Add(r3.Scale(p.Y, forward), r3.Scale(p.Z, up))))
}

// DirToWorld maps a local direction to a world direction.
func (m *Module) DirToWorld(d r3.Vec) r3.Vec {
	right, forward, up := m.Frame()
	return r3.Add(r3.Scale(d.X, right),
		r3.Add(r3.Scale(d.Y, forward), r3.Scale(d.Z, up)))
}

// WholeModule selects the module itself rather than one of its hotspots
// in sensing and emission calls.
const WholeModule = -1

// HotspotWorld returns the world position and forward axis of hotspot i.
// Passing WholeModule yields the module's own origin and forward axis.
func (m *Module) HotspotWorld(i int) (pos, forward r3.Vec) {
	if i == WholeModule || i < 0 || i >= len(m.Hotspots) {
		_, fwd, _ := m.Frame()
		return m.Pos, fwd
	}
	h := &m.Hotspots[i]
	return m.LocalToWorld(h.Offset), m.DirToWorld(h.Forward)
}

// HotspotIndex returns the index of the named hotspot, or -1.
func (m *Module) HotspotIndex(name string) int {
	for i := range m.Hotspots {
		if m.Hotspots[i].Name == name {
			return i
		}
	}
	return -1
}

// SocketIndex returns the index of the named socket, or -1.
func (m *Module) SocketIndex(name string) int {
	for i := range m.Sockets {
		if m.Sockets[i].Name == name {
			return i
		}
	}
	return -1
}
