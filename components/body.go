package components

import "github.com/pelagialabs/pelagia/body"

// Kind classifies what an entity physically is.
type Kind uint8

const (
	KindCreature Kind = iota // assembled multi-module organism
	KindMorsel               // drifting food particle
	KindFeature              // fixed terrain feature
)

// Body holds physical properties of an entity as seen by spatial
// queries and the stimulus dispatcher. Radius is the bounding sphere of
// the whole assembly.
type Body struct {
	ID       uint32
	Kind     Kind
	Radius   float64
	Mass     float64
	Buoyancy float64 // net buoyancy factor, 1 = neutral
	Colour   body.Colour
}
