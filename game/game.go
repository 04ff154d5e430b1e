// Package game wires the simulation together: the ECS world, organism
// assembly, the per-module host capabilities, stimulus dispatch, the
// frame loop, and render glue.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pelagialabs/pelagia/camera"
	"github.com/pelagialabs/pelagia/components"
	"github.com/pelagialabs/pelagia/config"
	"github.com/pelagialabs/pelagia/physiology"
	"github.com/pelagialabs/pelagia/renderer"
	"github.com/pelagialabs/pelagia/systems"
	"github.com/pelagialabs/pelagia/telemetry"
)

// DT is the fixed simulation step in seconds.
const DT = 1.0 / 60.0

// Number of fixed rock features scattered on the seabed.
const featureCount = 10

// Options configures a game instance.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	StepsPerUpdate int
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	opts  Options

	creatureMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Creature,
	]
	creatureFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Creature,
	]
	morselMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Morsel,
	]
	morselFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Body,
		components.Morsel,
	]
	featureMapper *ecs.Map2[components.Position, components.Body]
	featureFilter *ecs.Filter2[components.Position, components.Body]

	// Individual component mappers for lookups
	posMap      *ecs.Map1[components.Position]
	velMap      *ecs.Map1[components.Velocity]
	rotMap      *ecs.Map1[components.Rotation]
	bodyMap     *ecs.Map1[components.Body]
	energyMap   *ecs.Map1[components.Energy]
	creatureMap *ecs.Map1[components.Creature]
	morselMap   *ecs.Map1[components.Morsel]

	// Organism runtimes: the module trees and behavior components behind
	// creature entities. runtimes stays sorted by organism ID so every
	// per-frame pass is deterministic.
	runtimes  []*orgRuntime
	creatures map[uint32]*orgRuntime

	// Body-ID index over morsel and feature entities, for targeted
	// stimulus delivery.
	bodies map[uint32]ecs.Entity

	registry *physiology.Registry
	spawnCtx *physiology.SpawnContext

	bounds  systems.Bounds
	terrain *systems.Terrain
	grid    *systems.SpatialGrid
	physics *systems.PhysicsSystem

	neighborBuf []systems.Neighbor

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	// Rendering (nil in headless mode)
	camera *camera.Camera
	water  *renderer.WaterLayer
	hud    renderer.HUDState
	rings  []stimulusRing

	// State
	tick           int64
	simTime        float64
	tickAccum      float64
	paused         bool
	stepsPerUpdate int
	nextID         uint32
	morselCount    int

	// Selected creature: camera follow and manual steering target.
	selectedID uint32

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a fully wired game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		opts:  opts,

		creatureMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Creature,
		](world),
		creatureFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Creature,
		](world),
		morselMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Morsel,
		](world),
		morselFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Body,
			components.Morsel,
		](world),
		featureMapper: ecs.NewMap2[components.Position, components.Body](world),
		featureFilter: ecs.NewFilter2[components.Position, components.Body](world),

		posMap:      ecs.NewMap1[components.Position](world),
		velMap:      ecs.NewMap1[components.Velocity](world),
		rotMap:      ecs.NewMap1[components.Rotation](world),
		bodyMap:     ecs.NewMap1[components.Body](world),
		energyMap:   ecs.NewMap1[components.Energy](world),
		creatureMap: ecs.NewMap1[components.Creature](world),
		morselMap:   ecs.NewMap1[components.Morsel](world),

		creatures: make(map[uint32]*orgRuntime),
		bodies:    make(map[uint32]ecs.Entity),

		stepsPerUpdate: opts.StepsPerUpdate,
		nextID:         1,
	}

	g.bounds = systems.Bounds{
		Width:  cfg.World.Width,
		Height: cfg.World.Height,
		Depth:  cfg.World.Depth,
	}
	g.terrain = systems.NewTerrain(g.bounds.Width, g.bounds.Height, g.bounds.Depth, cfg.World.TerrainSeed)
	g.grid = systems.NewSpatialGrid(g.bounds.Width, g.bounds.Height, cfg.World.GridCellSize)
	g.physics = systems.NewPhysicsSystem(world, g.bounds, g.terrain,
		cfg.Physics.LinearDrag, cfg.Physics.AngularDrag)

	g.registry = physiology.NewRegistry()
	physiology.RegisterDefaults(g.registry)
	g.spawnCtx = physiology.NewSpawnContext(g.rng)

	g.collector = telemetry.NewCollector(statsWindow)
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	} else {
		g.output = output
		if err := g.output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	if !opts.Headless {
		g.screenWidth = float32(cfg.Screen.Width)
		g.screenHeight = float32(cfg.Screen.Height)
		g.camera = camera.New(g.screenWidth, g.screenHeight,
			float32(g.bounds.Width), float32(g.bounds.Height))
		g.water = renderer.NewWaterLayer(g.terrain, g.bounds.Width, g.bounds.Height, g.bounds.Depth)
		g.hud = renderer.HUDState{ShowDepthCues: true}
	}

	g.spawnFeatures()
	g.spawnInitialPopulation()
	g.topUpMorsels(cfg.Morsels.Target)

	return g
}

// Tick returns the number of completed simulation steps.
func (g *Game) Tick() int64 {
	return g.tick
}

// SimTime returns the elapsed simulation time in seconds.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Update runs input handling plus one or more simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		g.perf.RecordFrame()
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(DT)
	}
	g.perf.RecordFrame()
}

// UpdateHeadless runs simulation steps without touching input or
// rendering state.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(DT)
	}
}

// Unload releases external resources.
func (g *Game) Unload() {
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
