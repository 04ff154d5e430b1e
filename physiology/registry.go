package physiology

import (
	"fmt"
	"math/rand"

	"github.com/pelagialabs/pelagia/body"
)

// SpawnContext carries the spawner-owned state components may consume
// at construction time. The sex counter alternates across the whole
// spawn sequence so the population stays balanced.
type SpawnContext struct {
	Rand *rand.Rand

	sexCounter uint64
}

// NewSpawnContext creates a spawn context seeded with the given RNG.
func NewSpawnContext(rng *rand.Rand) *SpawnContext {
	return &SpawnContext{Rand: rng}
}

// NextSex returns the next sex in the alternating sequence.
func (c *SpawnContext) NextSex() body.Sex {
	s := body.SexFemale
	if c.sexCounter%2 == 1 {
		s = body.SexMale
	}
	c.sexCounter++
	return s
}

// Factory constructs one behavior component instance.
type Factory func(ctx *SpawnContext) Component

// Registry maps composite component names (group:type) to factories.
// It is populated by explicit registration at startup; an unresolved
// lookup is a configuration error, never a silent no-op substitute.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func regKey(group, typ string) string { return group + ":" + typ }

// Register adds a factory under group:type. Re-registering a name
// replaces the factory.
func (r *Registry) Register(group, typ string, f Factory) {
	r.factories[regKey(group, typ)] = f
}

// New constructs the component registered under group:type.
func (r *Registry) New(group, typ string, ctx *SpawnContext) (Component, error) {
	f, ok := r.factories[regKey(group, typ)]
	if !ok {
		return nil, fmt.Errorf("physiology: no component registered for %q", regKey(group, typ))
	}
	return f(ctx), nil
}

// VariantNamer is implemented by components that declare more than one
// channel layout and therefore need an asset-name to variant-index
// mapping.
type VariantNamer interface {
	Variants() map[string]int
}

// ResolveVariant determines the structural variant index a component
// uses for the given asset. Components with at most one layout always
// use variant 0; a multi-layout component missing the asset in its
// variant mapping is a configuration error.
func ResolveVariant(c Component, asset string) (int, error) {
	if c.Layouts().Len() <= 1 {
		return 0, nil
	}
	vn, ok := c.(VariantNamer)
	if !ok {
		return 0, fmt.Errorf("physiology: component %T declares %d layouts but no variant mapping",
			c, c.Layouts().Len())
	}
	v, ok := vn.Variants()[asset]
	if !ok {
		return 0, fmt.Errorf("physiology: component %T has no variant mapping for asset %q", c, asset)
	}
	return v, nil
}

// RegisterDefaults registers the built-in component library under the
// "pelagia" group.
func RegisterDefaults(r *Registry) {
	r.Register("pelagia", "head", func(ctx *SpawnContext) Component { return NewHead(ctx.NextSex()) })
	r.Register("pelagia", "jaw", func(*SpawnContext) Component { return NewJaw() })
	r.Register("pelagia", "tail", func(*SpawnContext) Component { return NewTail() })
	r.Register("pelagia", "fin", func(*SpawnContext) Component { return NewFin() })
	r.Register("pelagia", "whisker", func(*SpawnContext) Component { return NewWhisker() })
	r.Register("pelagia", "photophore", func(*SpawnContext) Component { return NewPhotophore() })
	r.Register("pelagia", "heart", func(*SpawnContext) Component { return NewHeart() })
}
