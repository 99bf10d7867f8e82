// Package config provides configuration parsing and validation for chartperf.
package config

import (
	"time"
)

// BenchConfig is the root configuration for a render benchmark.
//
// Example YAML:
//
//	name: "Surface FX"
//	warmup: 500
//	count: 500
//	window:
//	  width: 768
//	  height: 512
//	chart:
//	  samples: 32
//	  lowColor: "#ff0000"
//	  highColor: "#ffff00"
//	thresholds:
//	  frame_time:
//	    - "p95 < 20ms"
type BenchConfig struct {
	// Name of the benchmark (for reporting)
	Name string `json:"name" yaml:"name" toml:"name"`

	// Warmup is the number of renders before timing starts
	Warmup int `json:"warmup" yaml:"warmup" toml:"warmup"`

	// Count is the number of timed renders
	Count int `json:"count" yaml:"count" toml:"count"`

	// Window controls the render surface
	Window WindowConfig `json:"window,omitempty" yaml:"window,omitempty" toml:"window"`

	// Chart describes the surface chart
	Chart ChartConfig `json:"chart,omitempty" yaml:"chart,omitempty" toml:"chart"`

	// ViewPoint controls how the camera moves between iterations
	ViewPoint ViewPointConfig `json:"viewPoint,omitempty" yaml:"viewPoint,omitempty" toml:"viewPoint"`

	// Thresholds define pass/fail criteria for the run
	Thresholds *ThresholdsConfig `json:"thresholds,omitempty" yaml:"thresholds,omitempty" toml:"thresholds"`

	// Timeout aborts a run that takes longer than this (0 disables it)
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout"`
}

// WindowConfig controls the render surface.
type WindowConfig struct {
	Width    int    `json:"width,omitempty" yaml:"width,omitempty" toml:"width"`
	Height   int    `json:"height,omitempty" yaml:"height,omitempty" toml:"height"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
	Headless bool   `json:"headless,omitempty" yaml:"headless,omitempty" toml:"headless"`
}

// RangeConfig is a closed numeric interval.
type RangeConfig struct {
	Min float64 `json:"min" yaml:"min" toml:"min"`
	Max float64 `json:"max" yaml:"max" toml:"max"`
}

// DimensionsConfig is the plot box size in world units.
type DimensionsConfig struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
	Depth  float64 `json:"depth" yaml:"depth" toml:"depth"`
}

// ChartConfig describes the surface chart.
type ChartConfig struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty" toml:"subtitle"`

	// XRange and ZRange are the sampled domain of the function
	XRange *RangeConfig `json:"xRange,omitempty" yaml:"xRange,omitempty" toml:"xRange"`
	ZRange *RangeConfig `json:"zRange,omitempty" yaml:"zRange,omitempty" toml:"zRange"`

	Dimensions *DimensionsConfig `json:"dimensions,omitempty" yaml:"dimensions,omitempty" toml:"dimensions"`

	// Samples is the grid resolution along each axis
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty" toml:"samples"`

	DrawFaceOutlines bool `json:"drawFaceOutlines,omitempty" yaml:"drawFaceOutlines,omitempty" toml:"drawFaceOutlines"`

	// LowColor and HighColor are "#rrggbb" gradient endpoints over ColorRange
	LowColor   string       `json:"lowColor,omitempty" yaml:"lowColor,omitempty" toml:"lowColor"`
	HighColor  string       `json:"highColor,omitempty" yaml:"highColor,omitempty" toml:"highColor"`
	ColorRange *RangeConfig `json:"colorRange,omitempty" yaml:"colorRange,omitempty" toml:"colorRange"`
}

// ViewPointConfig defines the camera for iteration i as
// (i*azimuthStep, i*elevationStep, distance, roll).
type ViewPointConfig struct {
	// AzimuthStep and ElevationStep are nil when unset; an explicit 0 holds
	// that axis fixed
	AzimuthStep   *float64 `json:"azimuthStep,omitempty" yaml:"azimuthStep,omitempty" toml:"azimuthStep"`
	ElevationStep *float64 `json:"elevationStep,omitempty" yaml:"elevationStep,omitempty" toml:"elevationStep"`
	Distance      float64 `json:"distance,omitempty" yaml:"distance,omitempty" toml:"distance"`
	Roll          float64 `json:"roll,omitempty" yaml:"roll,omitempty" toml:"roll"`
}

// Steps returns the per-iteration azimuth and elevation steps, using the
// reference values for unset fields.
func (vp ViewPointConfig) Steps() (azimuth, elevation float64) {
	azimuth, elevation = DefaultAzimuthStep, DefaultElevationStep
	if vp.AzimuthStep != nil {
		azimuth = *vp.AzimuthStep
	}
	if vp.ElevationStep != nil {
		elevation = *vp.ElevationStep
	}
	return azimuth, elevation
}

// ThresholdsConfig holds threshold expressions per metric group.
//
// Each expression has the form "<stat> <op> <value>", for example
// "p95 < 20ms" for frame_time, "mean > 60" for fps and "value < 30s" for
// elapsed.
type ThresholdsConfig struct {
	FrameTime []string `json:"frame_time,omitempty" yaml:"frame_time,omitempty" toml:"frame_time"`
	FPS       []string `json:"fps,omitempty" yaml:"fps,omitempty" toml:"fps"`
	Elapsed   []string `json:"elapsed,omitempty" yaml:"elapsed,omitempty" toml:"elapsed"`
}

// Duration is a time.Duration that can be unmarshaled from JSON, YAML and
// TOML strings.
type Duration time.Duration

// GetDuration returns the duration or a default if empty.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		s = ""
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, which the TOML decoder
// uses.
func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
