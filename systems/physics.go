package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/components"
)

// Bounds is the simulation basin: walls on every side, surface on top,
// seabed below.
type Bounds struct {
	Width, Height, Depth float64
}

// Clamp returns p constrained to the basin interior.
func (b Bounds) Clamp(p r3.Vec) r3.Vec {
	p.X = math.Max(0, math.Min(p.X, b.Width))
	p.Y = math.Max(0, math.Min(p.Y, b.Height))
	p.Z = math.Max(0, math.Min(p.Z, b.Depth))
	return p
}

const gravity = 9.81

// PhysicsSystem integrates velocities into positions with water drag,
// net buoyancy, and collision against the basin walls and the seabed.
// Propulsion forces are applied upstream by the organism hosts; this
// system only owns the passive physics.
type PhysicsSystem struct {
	filter  ecs.Filter4[components.Position, components.Velocity, components.Rotation, components.Body]
	bounds  Bounds
	terrain *Terrain

	linearDrag  float64
	angularDrag float64
}

// NewPhysicsSystem creates a physics system for the given basin.
func NewPhysicsSystem(w *ecs.World, bounds Bounds, terrain *Terrain, linearDrag, angularDrag float64) *PhysicsSystem {
	return &PhysicsSystem{
		filter:      *ecs.NewFilter4[components.Position, components.Velocity, components.Rotation, components.Body](w),
		bounds:      bounds,
		terrain:     terrain,
		linearDrag:  linearDrag,
		angularDrag: angularDrag,
	}
}

// Update advances every mobile entity by dt seconds.
func (s *PhysicsSystem) Update(dt float64) {
	linDamp := math.Exp(-s.linearDrag * dt)
	angDamp := math.Exp(-s.angularDrag * dt)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, rot, body := query.Get()

		vel.Vel.Z += gravity * (body.Buoyancy - 1) * dt
		vel.Vel = r3.Scale(linDamp, vel.Vel)
		pos.Pos = r3.Add(pos.Pos, r3.Scale(dt, vel.Vel))

		rot.AngVel *= angDamp
		rot.Heading = wrapAngle(rot.Heading + rot.AngVel*dt)

		s.collide(pos, vel, body)
	}
}

// collide resolves basin walls, the surface, and the seabed with a soft
// bounce.
func (s *PhysicsSystem) collide(pos *components.Position, vel *components.Velocity, body *components.Body) {
	const restitution = 0.3
	r := body.Radius

	if pos.Pos.X < r {
		pos.Pos.X = r
		vel.Vel.X = math.Abs(vel.Vel.X) * restitution
	} else if pos.Pos.X > s.bounds.Width-r {
		pos.Pos.X = s.bounds.Width - r
		vel.Vel.X = -math.Abs(vel.Vel.X) * restitution
	}
	if pos.Pos.Y < r {
		pos.Pos.Y = r
		vel.Vel.Y = math.Abs(vel.Vel.Y) * restitution
	} else if pos.Pos.Y > s.bounds.Height-r {
		pos.Pos.Y = s.bounds.Height - r
		vel.Vel.Y = -math.Abs(vel.Vel.Y) * restitution
	}

	if pos.Pos.Z > s.bounds.Depth-r {
		pos.Pos.Z = s.bounds.Depth - r
		if vel.Vel.Z > 0 {
			vel.Vel.Z = 0
		}
	}
	if s.terrain != nil {
		if floor := s.terrain.Floor(pos.Pos.X, pos.Pos.Y); pos.Pos.Z < floor+r {
			pos.Pos.Z = floor + r
			if vel.Vel.Z < 0 {
				vel.Vel.Z = -vel.Vel.Z * restitution
			}
		}
	} else if pos.Pos.Z < r {
		pos.Pos.Z = r
		if vel.Vel.Z < 0 {
			vel.Vel.Z = -vel.Vel.Z * restitution
		}
	}
}

// wrapAngle normalizes an angle into (-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
