package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents an entity's world position.
type Position struct {
	Pos r3.Vec
}

// Velocity represents an entity's velocity.
type Velocity struct {
	Vel r3.Vec
}

// Rotation represents an entity's heading in the horizontal plane and
// its angular velocity.
type Rotation struct {
	Heading float64 // radians
	AngVel  float64 // radians per second
}
