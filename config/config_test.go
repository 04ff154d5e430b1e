package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.World.Width <= 0 || cfg.World.Height <= 0 || cfg.World.Depth <= 0 {
		t.Errorf("default world dimensions not positive: %+v", cfg.World)
	}
	if cfg.Physics.TickHz <= 0 {
		t.Errorf("default tick_hz not positive: %v", cfg.Physics.TickHz)
	}
	if cfg.Morsels.Target <= 0 {
		t.Errorf("default morsel target not positive: %v", cfg.Morsels.Target)
	}
	if len(cfg.Species) != 2 {
		t.Fatalf("default species count = %d, want 2", len(cfg.Species))
	}
	for _, sp := range cfg.Species {
		if sp.Count <= 0 {
			t.Errorf("species %q count = %d", sp.Name, sp.Count)
		}
		if sp.Modules[0].Parent != "" {
			t.Errorf("species %q root module declares a parent", sp.Name)
		}
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	override := "world:\n  width: 512\nmorsels:\n  target: 99\n"
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.World.Width != 512 {
		t.Errorf("world.width = %v, want override 512", cfg.World.Width)
	}
	if cfg.Morsels.Target != 99 {
		t.Errorf("morsels.target = %v, want override 99", cfg.Morsels.Target)
	}
	// Untouched fields keep their defaults.
	if cfg.World.Height <= 0 {
		t.Errorf("world.height lost its default: %v", cfg.World.Height)
	}
	if len(cfg.Species) != 2 {
		t.Errorf("override dropped default species: %d", len(cfg.Species))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSplitComponent(t *testing.T) {
	tests := []struct {
		component string
		group     string
		typ       string
		asset     string
		wantErr   bool
	}{
		{"pelagia:jaw:jaw.small", "pelagia", "jaw", "jaw.small", false},
		{"pelagia:jaw", "", "", "", true},
		{"pelagia:jaw:jaw.small:extra", "", "", "", true},
		{"::jaw.small", "", "", "", true},
		{"", "", "", "", true},
	}
	for _, tc := range tests {
		m := ModuleBlueprint{Name: "m", Component: tc.component}
		group, typ, asset, err := m.SplitComponent()
		if tc.wantErr {
			if err == nil {
				t.Errorf("SplitComponent(%q): expected error", tc.component)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitComponent(%q): %v", tc.component, err)
			continue
		}
		if group != tc.group || typ != tc.typ || asset != tc.asset {
			t.Errorf("SplitComponent(%q) = %q %q %q", tc.component, group, typ, asset)
		}
	}
}

func TestValidateRejectsBadSpecies(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load(\"\") failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			"zero world depth",
			func(c *Config) { c.World.Depth = 0 },
			"dimensions",
		},
		{
			"zero grid cell",
			func(c *Config) { c.World.GridCellSize = 0 },
			"grid_cell_size",
		},
		{
			"zero tick rate",
			func(c *Config) { c.Physics.TickHz = 0 },
			"tick_hz",
		},
		{
			"empty species",
			func(c *Config) { c.Species[0].Modules = nil },
			"no modules",
		},
		{
			"duplicate module name",
			func(c *Config) { c.Species[0].Modules[1].Name = c.Species[0].Modules[0].Name },
			"duplicate",
		},
		{
			"root with parent",
			func(c *Config) { c.Species[0].Modules[0].Parent = "x" },
			"root module",
		},
		{
			"child without socket",
			func(c *Config) { c.Species[0].Modules[1].Socket = "" },
			"parent and socket",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot failed: %v", err)
	}
	if back.World != cfg.World || back.Physics != cfg.Physics {
		t.Errorf("snapshot round trip changed values: %+v vs %+v", back.World, cfg.World)
	}
}
