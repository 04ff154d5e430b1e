package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/components"
	"github.com/pelagialabs/pelagia/config"
)

// spawnInitialPopulation creates the configured creature count of every
// species at open points in the basin.
func (g *Game) spawnInitialPopulation() {
	for _, sp := range config.Cfg().Species {
		for i := 0; i < sp.Count; i++ {
			pos := g.terrain.SampleOpenPoint(g.rng.Float64, 4)
			heading := g.rng.Float64()*2*math.Pi - math.Pi
			if _, err := g.spawnCreature(sp, pos, heading); err != nil {
				slog.Error("failed to spawn creature", "species", sp.Name, "error", err)
				return
			}
		}
	}
	slog.Info("population spawned", "creatures", len(g.runtimes))
}

// spawnFeatures scatters fixed rocks on the seabed. They occlude
// nothing themselves (the height field does that) but give whiskers and
// jaws something inert to detect.
func (g *Game) spawnFeatures() {
	for i := 0; i < featureCount; i++ {
		x := g.rng.Float64() * g.bounds.Width
		y := g.rng.Float64() * g.bounds.Height
		radius := 1.5 + g.rng.Float64()*2.5
		pos := components.Position{Pos: r3.Vec{X: x, Y: y, Z: g.terrain.Floor(x, y) + radius*0.5}}
		bod := components.Body{
			ID:     g.nextID,
			Kind:   components.KindFeature,
			Radius: radius,
			Mass:   radius * radius * 40,
			Colour: body.Colour{R: 0.35, G: 0.33, B: 0.3},
		}
		g.nextID++
		g.bodies[bod.ID] = g.featureMapper.NewEntity(&pos, &bod)
	}
}

// spawnMorsel drops one drifting food particle at an open point.
func (g *Game) spawnMorsel() {
	cfg := config.Cfg()
	pos := components.Position{Pos: g.terrain.SampleOpenPoint(g.rng.Float64, 1)}
	vel := components.Velocity{Vel: r3.Vec{
		X: (g.rng.Float64() - 0.5) * 0.4,
		Y: (g.rng.Float64() - 0.5) * 0.4,
	}}
	bod := components.Body{
		ID:       g.nextID,
		Kind:     components.KindMorsel,
		Radius:   0.3,
		Mass:     0.1,
		Buoyancy: cfg.Morsels.Buoyancy,
		Colour:   body.Colour{R: 0.8, G: 0.75, B: 0.5},
	}
	g.nextID++
	m := components.Morsel{
		Nutrition: cfg.Morsels.Nutrition,
		Decay:     cfg.Morsels.Lifetime * (0.5 + g.rng.Float64()),
	}
	g.bodies[bod.ID] = g.morselMapper.NewEntity(&pos, &vel, &bod, &m)
	g.morselCount++
}

// topUpMorsels spawns morsels until the world carries the target count.
func (g *Game) topUpMorsels(target int) {
	for g.morselCount < target {
		g.spawnMorsel()
	}
}

// morselPhase ages morsels, collects the eaten and the dissolved, and
// tops the population back up a few at a time.
func (g *Game) morselPhase(dt float64) {
	var toRemove []ecs.Entity
	var eaten, dissolved int

	query := g.morselFilter.Query()
	for query.Next() {
		_, _, _, m := query.Get()
		if m.Nutrition <= 0 {
			eaten++
			toRemove = append(toRemove, query.Entity())
			continue
		}
		m.Decay -= dt
		if m.Decay <= 0 {
			dissolved++
			toRemove = append(toRemove, query.Entity())
		}
	}

	for _, e := range toRemove {
		if b := g.bodyMap.Get(e); b != nil {
			delete(g.bodies, b.ID)
		}
		g.morselMapper.Remove(e)
		g.morselCount--
	}
	for i := 0; i < eaten; i++ {
		g.collector.RecordMorselEaten()
	}
	for i := 0; i < dissolved; i++ {
		g.collector.RecordMorselDissolved()
	}

	// Respawn gradually, not in bursts.
	target := config.Cfg().Morsels.Target
	for i := 0; i < 3 && g.morselCount < target; i++ {
		g.spawnMorsel()
	}
}

// energyPhase applies the metabolic base cost, ages creatures, and
// retires the starved. A dead creature leaves a morsel behind.
func (g *Game) energyPhase(dt float64) {
	cfg := config.Cfg()

	var dead []*orgRuntime
	query := g.creatureFilter.Query()
	for query.Next() {
		_, _, _, _, en, cr := query.Get()
		if !en.Alive {
			continue
		}
		en.Age += dt
		en.Value -= cfg.Energy.BaseCost * dt
		if en.Value <= 0 {
			en.Value = 0
			en.Alive = false
			if run, ok := g.creatures[cr.ID]; ok {
				dead = append(dead, run)
			}
		}
	}

	for _, run := range dead {
		carcass := run.org.Pos
		g.removeCreature(run)
		g.collector.RecordDeath()

		pos := components.Position{Pos: carcass}
		vel := components.Velocity{}
		bod := components.Body{
			ID:       g.nextID,
			Kind:     components.KindMorsel,
			Radius:   0.5,
			Mass:     0.3,
			Buoyancy: cfg.Morsels.Buoyancy,
			Colour:   body.Colour{R: 0.6, G: 0.55, B: 0.45},
		}
		g.nextID++
		m := components.Morsel{
			Nutrition: cfg.Morsels.Nutrition * 2,
			Decay:     cfg.Morsels.Lifetime,
		}
		g.bodies[bod.ID] = g.morselMapper.NewEntity(&pos, &vel, &bod, &m)
		g.morselCount++
	}
}

// removeCreature unregisters a runtime and deletes its entity.
func (g *Game) removeCreature(run *orgRuntime) {
	delete(g.creatures, run.org.ID)
	for i, r := range g.runtimes {
		if r == run {
			g.runtimes = append(g.runtimes[:i], g.runtimes[i+1:]...)
			break
		}
	}
	if g.selectedID == run.org.ID {
		g.selectedID = 0
	}
	g.creatureMapper.Remove(run.entity)
}
