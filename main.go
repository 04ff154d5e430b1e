package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pelagialabs/pelagia/config"
	"github.com/pelagialabs/pelagia/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = embedded defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Log window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window in seconds (0 = config value)")
	outputDir := flag.String("output-dir", "", "Directory for CSV logs and the config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N simulation steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation steps per update (higher = faster headless runs)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Seed:           *seed,
		Headless:       *headless,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}
	runWindowed(opts, *maxTicks)
}

// runHeadless drives the simulation without raylib: no window, no
// frame pacing, as fast as the CPU allows.
func runHeadless(opts game.Options, maxTicks int) {
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		g.UpdateHeadless()
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
}

func runWindowed(opts game.Options, maxTicks int) {
	cfg := config.Cfg()

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Pelagia")
	defer rl.CloseWindow()
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			return
		}
	}
}
