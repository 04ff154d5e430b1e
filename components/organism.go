package components

// Energy tracks an entity's metabolic state.
// Value is in absolute energy units; Max is the per-entity capacity.
type Energy struct {
	Value float64
	Max   float64
	Age   float64 // seconds alive
	Alive bool
}

// Creature links an ECS entity to its assembled organism. The ID keys
// the game's runtime table holding the module tree and behavior
// components.
type Creature struct {
	ID      uint32
	Species string
}

// Morsel marks a drifting food particle.
type Morsel struct {
	Nutrition float64
	Decay     float64 // seconds until it dissolves
}
