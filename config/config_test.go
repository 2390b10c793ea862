package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	raw := `
default_mode: grid
max_path_requests_per_frame: 3
path_cache_lifetime: 2.5
enable_flow_fields: false
`
	path := filepath.Join(t.TempDir(), "nav.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultMode != "grid" {
		t.Errorf("DefaultMode = %q, want grid", cfg.DefaultMode)
	}
	if cfg.MaxPathRequestsPerFrame != 3 {
		t.Errorf("MaxPathRequestsPerFrame = %d, want 3", cfg.MaxPathRequestsPerFrame)
	}
	if cfg.PathCacheLifetime != 2.5 {
		t.Errorf("PathCacheLifetime = %v, want 2.5", cfg.PathCacheLifetime)
	}
	if cfg.EnableFlowFields {
		t.Error("EnableFlowFields = true, want false")
	}
	// Untouched keys keep their defaults
	if cfg.GridCellSize != Default().GridCellSize {
		t.Errorf("GridCellSize = %v, want default %v", cfg.GridCellSize, Default().GridCellSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load on a missing file must fail")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	if err := os.WriteFile(path, []byte("grid_cell_size: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load must reject grid_cell_size <= 0")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero request budget", func(c *Config) { c.MaxPathRequestsPerFrame = 0 }, false},
		{"zero agent budget", func(c *Config) { c.MaxAgentsPerFrame = 0 }, false},
		{"zero iterations", func(c *Config) { c.GridMaxIterations = 0 }, false},
		{"zero cache capacity", func(c *Config) { c.MaxCachedPaths = 0 }, false},
		{"negative radius", func(c *Config) { c.FlowFieldRadius = -5 }, false},
		{"unknown mode", func(c *Config) { c.DefaultMode = "teleport" }, false},
		{"explicit grid mode", func(c *Config) { c.DefaultMode = "grid" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}
