package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultWarmup is the number of warm-up renders.
	DefaultWarmup = 500

	// DefaultCount is the number of measured renders.
	DefaultCount = 500

	// DefaultAzimuthStep and DefaultElevationStep move the camera by
	// i/50 and i/100 radians.
	DefaultAzimuthStep   = 1.0 / 50
	DefaultElevationStep = 1.0 / 100
)

// Default returns the reference benchmark: 500 warm-up and 500 measured
// renders of the demo surface in a 768x512 window.
func Default() *BenchConfig {
	cfg := &BenchConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig loads a benchmark configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//   - .toml -> TOML
//
// The raw document is checked against the configuration schema before it is
// decoded. Defaults are applied and the result is validated.
func LoadConfig(path string) (*BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := ValidateDocument(data, path); err != nil {
		return nil, err
	}

	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*BenchConfig, error) {
	var config BenchConfig

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	return &config, nil
}

// ApplyDefaults fills unset fields with the reference values.
func ApplyDefaults(config *BenchConfig) {
	if config.Name == "" {
		config.Name = "TestPerformance"
	}
	if config.Warmup == 0 {
		config.Warmup = DefaultWarmup
	}
	if config.Count == 0 {
		config.Count = DefaultCount
	}

	if config.Window.Width == 0 {
		config.Window.Width = 768
	}
	if config.Window.Height == 0 {
		config.Window.Height = 512
	}
	if config.Window.Title == "" {
		config.Window.Title = config.Name
	}

	applyChartDefaults(&config.Chart)

	if config.ViewPoint.AzimuthStep == nil {
		step := DefaultAzimuthStep
		config.ViewPoint.AzimuthStep = &step
	}
	if config.ViewPoint.ElevationStep == nil {
		step := DefaultElevationStep
		config.ViewPoint.ElevationStep = &step
	}
	if config.ViewPoint.Distance == 0 {
		config.ViewPoint.Distance = 50
	}
}

func applyChartDefaults(c *ChartConfig) {
	if c.Title == "" {
		c.Title = "SurfaceRendererDemo1"
	}
	if c.Subtitle == "" {
		c.Subtitle = "y = cos(x) * sin(z)"
	}
	if c.XRange == nil {
		c.XRange = &RangeConfig{Min: -math.Pi, Max: math.Pi}
	}
	if c.ZRange == nil {
		c.ZRange = &RangeConfig{Min: -math.Pi, Max: math.Pi}
	}
	if c.Dimensions == nil {
		c.Dimensions = &DimensionsConfig{Width: 10, Height: 5, Depth: 10}
	}
	if c.Samples == 0 {
		c.Samples = 32
	}
	if c.LowColor == "" {
		c.LowColor = "#ff0000"
	}
	if c.HighColor == "" {
		c.HighColor = "#ffff00"
	}
	if c.ColorRange == nil {
		c.ColorRange = &RangeConfig{Min: -1, Max: 1}
	}
}
