package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kkingfung/Laboratory-sub014/parameter"
)

// Config is the recognized tuning surface of the path service
// Durations are seconds; distances are world units
type Config struct {
	// DefaultMode selects the planning strategy when a request passes ModeDefault:
	// "hybrid", "navmesh", "grid", "flowfield", "hierarchical"
	DefaultMode string `yaml:"default_mode"`

	// Scheduling budgets
	MaxAgentsPerFrame       int     `yaml:"max_agents_per_frame"`
	PathUpdateInterval      float64 `yaml:"path_update_interval"`
	MaxPathRequestsPerFrame int     `yaml:"max_path_requests_per_frame"`

	// Path cache
	PathCacheLifetime float64 `yaml:"path_cache_lifetime"`
	MaxCachedPaths    int     `yaml:"max_cached_paths"`

	// Flow fields
	EnableFlowFields bool `yaml:"enable_flow_fields"`
	// FlowFieldCellSize is recognized for compatibility; the generator derives
	// cell size from radius and grid dimensions and ignores this value
	FlowFieldCellSize float64 `yaml:"flow_field_cell_size"`
	FlowFieldRadius   float64 `yaml:"flow_field_radius"`
	FlowFieldLifetime float64 `yaml:"flow_field_lifetime"`

	// Grid search
	GridCellSize      float64 `yaml:"grid_cell_size"`
	GridMaxIterations int     `yaml:"grid_max_iterations"`

	// Hybrid strategy selection
	ShortRangeThreshold          float64 `yaml:"short_range_threshold"`
	LongRangeThreshold           float64 `yaml:"long_range_threshold"`
	DensityThresholdForFlowField int     `yaml:"density_threshold_for_flow_field"`
}

// Default returns the baseline configuration
func Default() Config {
	return Config{
		DefaultMode:                  "hybrid",
		MaxAgentsPerFrame:            parameter.NavMaxAgentsPerTick,
		PathUpdateInterval:           parameter.NavAgentUpdateIntervalSec,
		MaxPathRequestsPerFrame:      parameter.NavMaxRequestsPerTick,
		PathCacheLifetime:            parameter.NavPathCacheLifetimeSec,
		MaxCachedPaths:               parameter.NavMaxCachedPaths,
		EnableFlowFields:             true,
		FlowFieldRadius:              parameter.NavFlowFieldRadius,
		FlowFieldLifetime:            parameter.NavFlowFieldLifetimeSec,
		GridCellSize:                 parameter.NavGridCellSize,
		GridMaxIterations:            parameter.NavGridMaxIterations,
		ShortRangeThreshold:          parameter.NavShortRangeThreshold,
		LongRangeThreshold:           parameter.NavLongRangeThreshold,
		DensityThresholdForFlowField: parameter.NavDensityThreshold,
	}
}

// Load reads a YAML config file over the defaults
// An empty path returns the defaults unchanged
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the scheduler cannot operate with
func (c Config) Validate() error {
	if c.MaxPathRequestsPerFrame < 1 {
		return fmt.Errorf("config: max_path_requests_per_frame must be >= 1, got %d", c.MaxPathRequestsPerFrame)
	}
	if c.MaxAgentsPerFrame < 1 {
		return fmt.Errorf("config: max_agents_per_frame must be >= 1, got %d", c.MaxAgentsPerFrame)
	}
	if c.GridCellSize <= 0 {
		return fmt.Errorf("config: grid_cell_size must be > 0, got %v", c.GridCellSize)
	}
	if c.GridMaxIterations < 1 {
		return fmt.Errorf("config: grid_max_iterations must be >= 1, got %d", c.GridMaxIterations)
	}
	if c.MaxCachedPaths < 1 {
		return fmt.Errorf("config: max_cached_paths must be >= 1, got %d", c.MaxCachedPaths)
	}
	if c.FlowFieldRadius <= 0 {
		return fmt.Errorf("config: flow_field_radius must be > 0, got %v", c.FlowFieldRadius)
	}
	switch c.DefaultMode {
	case "hybrid", "navmesh", "grid", "flowfield", "hierarchical":
	default:
		return fmt.Errorf("config: unknown default_mode %q", c.DefaultMode)
	}
	return nil
}
