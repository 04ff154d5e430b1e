package body

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/channel"
)

// Organism is a tree of modules sharing one signal board and one
// body-wide chemical pool. Modules[0] is always the root.
type Organism struct {
	ID      uint32
	Species string
	Sex     Sex
	Colour  Colour

	Pos     r3.Vec
	Vel     r3.Vec
	Heading float64
	AngVel  float64

	Chemicals [NumChemicals]float64
	Modules   []*Module
	Net       *channel.Board

	// Radius is the detection radius reported to spatial queries,
	// derived from module radii at assembly time.
	Radius float64
}

// NewOrganism creates an empty organism with a signal board bound to
// its chemical pool.
func NewOrganism(id uint32, species string) *Organism {
	o := &Organism{ID: id, Species: species}
	o.Chemicals[ChemStamina] = 1
	o.Net = channel.NewBoard(o.Chemicals[:])
	return o
}

// Attach adds a module to the organism. The first module attached
// becomes the root; later modules must name a parent socket.
// Returns the module index.
func (o *Organism) Attach(m *Module, parent *Module, socket int) int {
	m.Org = o
	m.Index = len(o.Modules)
	o.Modules = append(o.Modules, m)
	if parent != nil {
		m.Plug = &Plug{Parent: parent, Socket: socket}
		parent.Sockets[socket].Child = m
	}
	if r := m.Radius; r > o.Radius {
		o.Radius = r
	}
	return m.Index
}

// Root returns the root module, or nil for an empty organism.
func (o *Organism) Root() *Module {
	if len(o.Modules) == 0 {
		return nil
	}
	return o.Modules[0]
}

// UpdatePoses recomputes every module's world pose from the organism's
// position and heading. Parents are laid out before children because
// Attach appends children after their parents.
func (o *Organism) UpdatePoses() {
	for _, m := range o.Modules {
		m.Heading = o.Heading
		if m.Plug == nil {
			m.Pos = o.Pos
			continue
		}
		p := m.Plug.Parent
		m.Pos = p.LocalToWorld(p.Sockets[m.Plug.Socket].Offset)
	}
}

// DepthFraction reports how deep the organism sits: 0 at the surface,
// 1 at the seabed, for a water column of the given depth.
func (o *Organism) DepthFraction(columnDepth float64) float64 {
	if columnDepth <= 0 {
		return 0
	}
	f := 1 - o.Pos.Z/columnDepth
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
