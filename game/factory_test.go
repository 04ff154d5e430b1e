package game

import (
	"math/rand"
	"os"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/config"
	"github.com/pelagialabs/pelagia/physiology"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// newAssemblyGame builds the minimal game state organism assembly
// needs: the registry, a spawn context, and an RNG.
func newAssemblyGame() *Game {
	g := &Game{
		rng:       rand.New(rand.NewSource(1)),
		registry:  physiology.NewRegistry(),
		creatures: make(map[uint32]*orgRuntime),
	}
	physiology.RegisterDefaults(g.registry)
	g.spawnCtx = physiology.NewSpawnContext(g.rng)
	return g
}

func lanternling(t *testing.T) config.SpeciesConfig {
	t.Helper()
	for _, sp := range config.Cfg().Species {
		if sp.Name == "lanternling" {
			return sp
		}
	}
	t.Fatal("defaults missing the lanternling species")
	return config.SpeciesConfig{}
}

func TestAssembleResolvesLinkDrivers(t *testing.T) {
	g := newAssemblyGame()
	run, err := g.assembleOrganism(lanternling(t), 1, r3.Vec{X: 50, Y: 50, Z: 40}, 0)
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}
	net := run.org.Net

	// Module order follows the blueprint: 0 head, 1 jaw, 2 tail,
	// 3 fin.port, 4 fin.starboard, 5 photophore, 6 heart, 7 whisker.
	checkLink := func(mod, ch, wantMod, wantCh int, what string) {
		t.Helper()
		d := net.Driver(mod, ch)
		if d.Kind != channel.DriveLink {
			t.Fatalf("%s: driver kind = %v, want link", what, d.Kind)
		}
		if d.Module != wantMod || d.Channel != wantCh {
			t.Errorf("%s: linked to (%d,%d), want (%d,%d)", what, d.Module, d.Channel, wantMod, wantCh)
		}
	}

	checkLink(1, 0, 0, 3, "jaw clench")       // name-matched to the head's clench output
	checkLink(2, 0, 0, 0, "tail drive")       // socket 1 carries the drive output
	checkLink(3, 0, 0, 1, "fin.port steer")   // socket 2: steer.port
	checkLink(4, 0, 0, 2, "fin.starboard steer")
	checkLink(5, 0, 0, 4, "photophore glow")
	checkLink(0, 5, 7, 0, "head alarm") // socket 6 child: the whisker's plug-bound alarm

	// The heart's pulse output finds no socket-sourced reader on the
	// head, so nothing links to it; its own channel is an output and
	// needs no driver.
	if got := net.Driver(6, 0).Kind; got == channel.DriveLink {
		t.Errorf("heart pulse should not be link-driven, got %v", got)
	}
}

func TestAssembleChemicalFallback(t *testing.T) {
	g := newAssemblyGame()

	// A lone module with no parent to link against keeps the driver
	// AddModule seeded.
	sp := config.SpeciesConfig{
		Name: "stub",
		Modules: []config.ModuleBlueprint{
			{Name: "heart", Component: "pelagia:heart:heart.standard"},
		},
	}
	run, err := g.assembleOrganism(sp, 1, r3.Vec{}, 0)
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}
	if got := run.org.Net.Driver(0, 0).Kind; got == channel.DriveLink {
		t.Errorf("lone module should keep its fallback driver, got link")
	}
}

func TestAssembleUnknownComponent(t *testing.T) {
	g := newAssemblyGame()
	sp := config.SpeciesConfig{
		Name: "broken",
		Modules: []config.ModuleBlueprint{
			{Name: "torso", Component: "pelagia:nosuch:head.standard"},
		},
	}
	_, err := g.assembleOrganism(sp, 1, r3.Vec{}, 0)
	if err == nil {
		t.Fatal("expected assembly error for unregistered component")
	}
	if !strings.Contains(err.Error(), "torso") {
		t.Errorf("error should name the failing module: %v", err)
	}
}

func TestAssembleUnknownAsset(t *testing.T) {
	g := newAssemblyGame()
	sp := config.SpeciesConfig{
		Name: "broken",
		Modules: []config.ModuleBlueprint{
			{Name: "torso", Component: "pelagia:head:head.colossal"},
		},
	}
	_, err := g.assembleOrganism(sp, 1, r3.Vec{}, 0)
	if err == nil || !strings.Contains(err.Error(), "head.colossal") {
		t.Fatalf("expected unknown-asset error, got %v", err)
	}
}

func TestAssembleBadSocket(t *testing.T) {
	g := newAssemblyGame()
	sp := config.SpeciesConfig{
		Name: "broken",
		Modules: []config.ModuleBlueprint{
			{Name: "head", Component: "pelagia:head:head.standard"},
			{Name: "tail", Component: "pelagia:tail:tail.standard", Parent: "head", Socket: "dorsal"},
		},
	}
	_, err := g.assembleOrganism(sp, 1, r3.Vec{}, 0)
	if err == nil || !strings.Contains(err.Error(), "dorsal") {
		t.Fatalf("expected unknown-socket error, got %v", err)
	}
}

func TestAssembleOccupiedSocket(t *testing.T) {
	g := newAssemblyGame()
	sp := config.SpeciesConfig{
		Name: "broken",
		Modules: []config.ModuleBlueprint{
			{Name: "head", Component: "pelagia:head:head.standard"},
			{Name: "tail", Component: "pelagia:tail:tail.standard", Parent: "head", Socket: "spine"},
			{Name: "tail2", Component: "pelagia:tail:tail.standard", Parent: "head", Socket: "spine"},
		},
	}
	_, err := g.assembleOrganism(sp, 1, r3.Vec{}, 0)
	if err == nil || !strings.Contains(err.Error(), "occupied") {
		t.Fatalf("expected occupied-socket error, got %v", err)
	}
}

func TestFindEndpointPrefersName(t *testing.T) {
	specs := []channel.Spec{
		{Name: "drive", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(1)},
		{Name: "turn", Source: channel.EndpointNone, Dest: channel.SocketEndpoint(1)},
	}
	if got := findEndpoint(specs, "turn", channel.SocketEndpoint(1)); got != 1 {
		t.Errorf("name match = %d, want 1", got)
	}
	if got := findEndpoint(specs, "other", channel.SocketEndpoint(1)); got != 0 {
		t.Errorf("first-candidate fallback = %d, want 0", got)
	}
	if got := findEndpoint(specs, "drive", channel.SocketEndpoint(2)); got != -1 {
		t.Errorf("no candidate = %d, want -1", got)
	}
}

func TestGulperBarbelRelay(t *testing.T) {
	g := newAssemblyGame()
	var gulper config.SpeciesConfig
	for _, sp := range config.Cfg().Species {
		if sp.Name == "gulper" {
			gulper = sp
		}
	}
	if gulper.Name == "" {
		t.Fatal("defaults missing the gulper species")
	}

	run, err := g.assembleOrganism(gulper, 1, r3.Vec{X: 10, Y: 10, Z: 10}, 0)
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}

	// The large jaw's alarm.pass bypass (channel 2) reads the barbel
	// whisker plugged into its socket 0. The barbel is the last module
	// in the blueprint.
	barbelIdx := len(run.org.Modules) - 1
	d := run.org.Net.Driver(1, 2)
	if d.Kind != channel.DriveLink || d.Module != barbelIdx || d.Channel != 0 {
		t.Errorf("alarm.pass driver = %+v, want link to (%d, 0)", d, barbelIdx)
	}
}

func TestHeadlessSimulationRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("full simulation in short mode")
	}

	g := NewGameWithOptions(Options{Seed: 7, Headless: true, StepsPerUpdate: 1})
	defer g.Unload()

	if len(g.runtimes) == 0 {
		t.Fatal("no creatures spawned")
	}
	initial := len(g.runtimes)

	for i := 0; i < 240; i++ {
		g.UpdateHeadless()
	}

	if g.Tick() != 240 {
		t.Errorf("tick = %d, want 240", g.Tick())
	}
	if g.SimTime() < 3.9 || g.SimTime() > 4.1 {
		t.Errorf("sim time = %v, want ~4s", g.SimTime())
	}
	// Four seconds of base metabolic cost cannot wipe out the spawn.
	if len(g.runtimes) == 0 {
		t.Errorf("population collapsed from %d", initial)
	}
	// Runtimes stay sorted by organism ID.
	for i := 1; i < len(g.runtimes); i++ {
		if g.runtimes[i-1].org.ID >= g.runtimes[i].org.ID {
			t.Fatalf("runtimes out of ID order at %d", i)
		}
	}
}
