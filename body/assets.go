package body

import "gonum.org/v1/gonum/spatial/r3"

// SocketSpec is a socket declared by a geometry asset.
type SocketSpec struct {
	Name   string
	Offset r3.Vec
}

// AssetSpec describes one geometry variant: the physical attributes and
// attachment points a module of that asset carries. In the full product
// these come from the mesh pipeline; here they are a hand-authored
// catalog covering the shipped creature parts.
type AssetSpec struct {
	Name       string
	Mass       float64
	Resistance float64
	Buoyancy   float64
	Radius     float64
	JointCount int
	Hotspots   []Hotspot
	Sockets    []SocketSpec
}

var fwd = r3.Vec{Y: 1}

var assetCatalog = map[string]AssetSpec{
	"head.standard": {
		Name: "head.standard", Mass: 4, Resistance: 0.5, Buoyancy: 1.05, Radius: 1.2,
		JointCount: 1,
		Hotspots: []Hotspot{
			{Name: "brow", Offset: r3.Vec{Y: 0.9, Z: 0.4}, Forward: fwd},
		},
		Sockets: []SocketSpec{
			{Name: "mouth", Offset: r3.Vec{Y: 1.1}},
			{Name: "spine", Offset: r3.Vec{Y: -1.2}},
			{Name: "port", Offset: r3.Vec{X: -1.0}},
			{Name: "starboard", Offset: r3.Vec{X: 1.0}},
			{Name: "crest", Offset: r3.Vec{Z: 0.9}},
			{Name: "core", Offset: r3.Vec{}},
			{Name: "lateral", Offset: r3.Vec{X: 0.6, Y: 0.6}},
		},
	},
	"jaw.small": {
		Name: "jaw.small", Mass: 0.8, Resistance: 0.3, Buoyancy: 0.95, Radius: 0.5,
		JointCount: 1,
		Hotspots: []Hotspot{
			{Name: "tip.left", Offset: r3.Vec{X: -0.3, Y: 0.7}, Forward: fwd},
			{Name: "tip.right", Offset: r3.Vec{X: 0.3, Y: 0.7}, Forward: fwd},
			{Name: "throat", Offset: r3.Vec{Y: 0.2}, Forward: fwd},
		},
	},
	"jaw.large": {
		Name: "jaw.large", Mass: 1.6, Resistance: 0.45, Buoyancy: 0.9, Radius: 0.8,
		JointCount: 2,
		Hotspots: []Hotspot{
			{Name: "tip.left", Offset: r3.Vec{X: -0.5, Y: 1.1}, Forward: fwd},
			{Name: "tip.right", Offset: r3.Vec{X: 0.5, Y: 1.1}, Forward: fwd},
			{Name: "throat", Offset: r3.Vec{Y: 0.3}, Forward: fwd},
		},
		Sockets: []SocketSpec{
			{Name: "barbel", Offset: r3.Vec{Y: 0.8, Z: -0.3}},
		},
	},
	"tail.standard": {
		Name: "tail.standard", Mass: 2.2, Resistance: 0.35, Buoyancy: 1.0, Radius: 0.9,
		JointCount: 2,
		Hotspots: []Hotspot{
			{Name: "fluke", Offset: r3.Vec{Y: -1.4}, Forward: r3.Vec{Y: -1}},
		},
	},
	"fin.standard": {
		Name: "fin.standard", Mass: 0.4, Resistance: 0.25, Buoyancy: 1.0, Radius: 0.4,
		JointCount: 1,
		Hotspots: []Hotspot{
			{Name: "blade", Offset: r3.Vec{X: 0.4}, Forward: r3.Vec{X: 1}},
		},
	},
	"whisker.standard": {
		Name: "whisker.standard", Mass: 0.1, Resistance: 0.05, Buoyancy: 1.0, Radius: 0.3,
		JointCount: 1,
		Hotspots: []Hotspot{
			{Name: "root", Offset: r3.Vec{}, Forward: fwd},
		},
	},
	"photophore.standard": {
		Name: "photophore.standard", Mass: 0.2, Resistance: 0.05, Buoyancy: 1.0, Radius: 0.35,
		JointCount: 0,
		Hotspots: []Hotspot{
			{Name: "lens", Offset: r3.Vec{Z: 0.2}, Forward: r3.Vec{Z: 1}},
		},
	},
	"heart.standard": {
		Name: "heart.standard", Mass: 0.6, Resistance: 0, Buoyancy: 1.0, Radius: 0.3,
		JointCount: 1,
	},
}

// LookupAsset returns the catalog entry for an asset name.
func LookupAsset(name string) (AssetSpec, bool) {
	spec, ok := assetCatalog[name]
	return spec, ok
}

// NewModule instantiates a module from an asset spec.
func (a AssetSpec) NewModule(name string) *Module {
	m := &Module{
		Name:       name,
		Asset:      a.Name,
		Mass:       a.Mass,
		Resistance: a.Resistance,
		Buoyancy:   a.Buoyancy,
		Radius:     a.Radius,
		Joints:     make([]float64, a.JointCount),
	}
	m.Hotspots = append(m.Hotspots, a.Hotspots...)
	for _, s := range a.Sockets {
		m.Sockets = append(m.Sockets, Socket{Name: s.Name, Offset: s.Offset})
	}
	return m
}
