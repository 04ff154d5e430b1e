package body

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func vecClose(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestModuleLocalToWorld(t *testing.T) {
	m := &Module{Pos: r3.Vec{X: 10, Y: 5}, Heading: math.Pi / 2} // facing +Y

	tests := []struct {
		name  string
		local r3.Vec
		want  r3.Vec
	}{
		{"origin", r3.Vec{}, r3.Vec{X: 10, Y: 5}},
		{"one forward", r3.Vec{Y: 1}, r3.Vec{X: 10, Y: 6}},
		{"one right", r3.Vec{X: 1}, r3.Vec{X: 11, Y: 5}},
		{"one up", r3.Vec{Z: 1}, r3.Vec{X: 10, Y: 5, Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.LocalToWorld(tt.local); !vecClose(got, tt.want) {
				t.Errorf("LocalToWorld(%v) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}

func TestHotspotWorld(t *testing.T) {
	spec, ok := LookupAsset("jaw.small")
	if !ok {
		t.Fatal("jaw.small missing from catalog")
	}
	m := spec.NewModule("jaw")
	m.Pos = r3.Vec{X: 2}
	m.Heading = 0 // facing +X

	i := m.HotspotIndex("tip.right")
	if i < 0 {
		t.Fatal("tip.right hotspot missing")
	}
	pos, fwdAxis := m.HotspotWorld(i)
	// Local offset (0.3 right, 0.7 forward) with heading 0: right is -Y.
	if !vecClose(pos, r3.Vec{X: 2.7, Y: -0.3}) {
		t.Errorf("hotspot pos = %v", pos)
	}
	if !vecClose(fwdAxis, r3.Vec{X: 1}) {
		t.Errorf("hotspot forward = %v, want +X", fwdAxis)
	}

	// WholeModule falls back to the module's own frame.
	pos, _ = m.HotspotWorld(WholeModule)
	if !vecClose(pos, m.Pos) {
		t.Errorf("WholeModule pos = %v, want %v", pos, m.Pos)
	}
}

func TestOrganismAttachAndPoses(t *testing.T) {
	head, _ := LookupAsset("head.standard")
	tail, _ := LookupAsset("tail.standard")

	o := NewOrganism(1, "lurker")
	hm := head.NewModule("head")
	o.Attach(hm, nil, 0)
	tm := tail.NewModule("tail")
	spine := hm.SocketIndex("spine")
	if spine < 0 {
		t.Fatal("spine socket missing")
	}
	o.Attach(tm, hm, spine)

	if o.Root() != hm {
		t.Error("root should be the first attached module")
	}
	if tm.Plug == nil || tm.Plug.Parent != hm {
		t.Error("tail plug not wired to head")
	}
	if hm.Sockets[spine].Child != tm {
		t.Error("head socket not wired to tail")
	}

	o.Pos = r3.Vec{X: 100, Y: 50, Z: 20}
	o.Heading = 0
	o.UpdatePoses()
	// Spine socket sits 1.2 behind the head.
	if !vecClose(tm.Pos, r3.Vec{X: 98.8, Y: 50, Z: 20}) {
		t.Errorf("tail pos = %v", tm.Pos)
	}
}

func TestDepthFraction(t *testing.T) {
	o := NewOrganism(1, "x")
	o.Pos.Z = 25
	if got := o.DepthFraction(100); math.Abs(got-0.75) > eps {
		t.Errorf("DepthFraction = %v, want 0.75", got)
	}
	o.Pos.Z = 200
	if got := o.DepthFraction(100); got != 0 {
		t.Errorf("above surface should clamp to 0, got %v", got)
	}
}
