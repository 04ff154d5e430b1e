// Package config provides configuration loading and access for the
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Energy    EnergyConfig    `yaml:"energy"`
	Morsels   MorselConfig    `yaml:"morsels"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Species   []SpeciesConfig `yaml:"species"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the basin dimensions, in world units. Depth is the
// water column height; z=0 is the seabed datum.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Depth        float64 `yaml:"depth"`
	GridCellSize float64 `yaml:"grid_cell_size"`
	TerrainSeed  int64   `yaml:"terrain_seed"`
}

// PhysicsConfig holds passive physics parameters.
type PhysicsConfig struct {
	LinearDrag  float64 `yaml:"linear_drag"`  // per-second velocity decay rate
	AngularDrag float64 `yaml:"angular_drag"` // per-second angular decay rate
	TickHz      float64 `yaml:"tick_hz"`      // slow-tick frequency
}

// EnergyConfig holds metabolic economics.
type EnergyConfig struct {
	Initial  float64 `yaml:"initial"`   // starting energy per creature
	Max      float64 `yaml:"max"`       // energy store capacity
	BaseCost float64 `yaml:"base_cost"` // drain per second for existing
}

// MorselConfig holds drifting-food parameters.
type MorselConfig struct {
	Target    int     `yaml:"target"`     // morsel count the world keeps topped up
	Nutrition float64 `yaml:"nutrition"`  // energy per morsel
	Lifetime  float64 `yaml:"lifetime"`   // seconds before a morsel dissolves
	Buoyancy  float64 `yaml:"buoyancy"`   // net buoyancy factor, <1 sinks
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged by the perf collector
}

// SpeciesConfig is one creature blueprint plus how many to spawn.
type SpeciesConfig struct {
	Name    string            `yaml:"name"`
	Count   int               `yaml:"count"`
	Modules []ModuleBlueprint `yaml:"modules"`
}

// ModuleBlueprint names one module of a species: its behavior component
// and geometry as "group:type:asset", and where it plugs in. The first
// module is the root and leaves Parent/Socket empty.
type ModuleBlueprint struct {
	Name      string `yaml:"name"`      // unique within the species
	Component string `yaml:"component"` // group:type:asset
	Parent    string `yaml:"parent"`    // parent module name
	Socket    string `yaml:"socket"`    // socket name on the parent
}

// SplitComponent splits a blueprint component reference into its
// registry group, type, and geometry asset.
func (m ModuleBlueprint) SplitComponent() (group, typ, asset string, err error) {
	parts := strings.Split(m.Component, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("config: module %q: component %q is not group:type:asset",
			m.Name, m.Component)
	}
	return parts[0], parts[1], parts[2], nil
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct; only fields present in the
		// file overwrite defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 || c.World.Depth <= 0 {
		return fmt.Errorf("config: world dimensions must be positive (got %gx%gx%g)",
			c.World.Width, c.World.Height, c.World.Depth)
	}
	if c.World.GridCellSize <= 0 {
		return fmt.Errorf("config: world.grid_cell_size must be positive")
	}
	if c.Physics.TickHz <= 0 {
		return fmt.Errorf("config: physics.tick_hz must be positive")
	}
	for _, sp := range c.Species {
		if len(sp.Modules) == 0 {
			return fmt.Errorf("config: species %q has no modules", sp.Name)
		}
		seen := make(map[string]bool, len(sp.Modules))
		for i, m := range sp.Modules {
			if _, _, _, err := m.SplitComponent(); err != nil {
				return fmt.Errorf("species %q: %w", sp.Name, err)
			}
			if seen[m.Name] {
				return fmt.Errorf("config: species %q: duplicate module name %q", sp.Name, m.Name)
			}
			seen[m.Name] = true
			if i == 0 && (m.Parent != "" || m.Socket != "") {
				return fmt.Errorf("config: species %q: root module %q must not declare a parent",
					sp.Name, m.Name)
			}
			if i > 0 && (m.Parent == "" || m.Socket == "") {
				return fmt.Errorf("config: species %q: module %q needs parent and socket",
					sp.Name, m.Name)
			}
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
