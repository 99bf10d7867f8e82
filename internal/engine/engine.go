// Package engine wires a benchmark configuration into a runnable render
// benchmark.
//
// The Engine builds the surface chart and its canvas, the iteration driver and
// the metrics engine. It can be advanced one activation at a time by an
// external event loop (Step) or run headless on a task queue (Run). Once the
// driver is done, Finish assembles the TestResult and evaluates thresholds.
package engine

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/wesleyorama2/chartperf/internal/bench"
	"github.com/wesleyorama2/chartperf/internal/chart"
	"github.com/wesleyorama2/chartperf/internal/config"
	"github.com/wesleyorama2/chartperf/internal/metrics"
)

// TestResult contains the complete benchmark results.
type TestResult struct {
	Name      string        `json:"name"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`

	// Timing is the start/end record of the measured phase
	Timing bench.Result `json:"timing"`

	// Elapsed is Timing.End - Timing.Start
	Elapsed time.Duration `json:"elapsed"`

	Metrics      *metrics.Snapshot      `json:"metrics"`
	Buckets      []*metrics.FrameBucket `json:"buckets,omitempty"`
	PhaseHistory []metrics.PhaseChange  `json:"phaseHistory,omitempty"`

	Passed     bool              `json:"passed"`
	Thresholds []ThresholdResult `json:"thresholds,omitempty"`
}

// Engine runs one benchmark.
type Engine struct {
	config  *config.BenchConfig
	chart   *chart.SurfaceChart
	canvas  *chart.Canvas
	driver  *bench.Driver
	metrics *metrics.Engine

	startTime time.Time
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	now       func() time.Time
	view      bench.View
	observers []bench.Observer
}

// WithClock replaces time.Now for the driver and the result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.now = now
	}
}

// WithView renders into view instead of the chart canvas.
func WithView(view bench.View) Option {
	return func(o *engineOptions) {
		o.view = view
	}
}

// WithObserver registers an additional per-frame observer. The metrics engine
// always observes first.
func WithObserver(o bench.Observer) Option {
	return func(eo *engineOptions) {
		eo.observers = append(eo.observers, o)
	}
}

// NewEngine creates an engine for cfg. Defaults are applied to cfg before it
// is validated.
func NewEngine(cfg *config.BenchConfig, opts ...Option) (*Engine, error) {
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := engineOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	surface, err := buildChart(&cfg.Chart)
	if err != nil {
		return nil, err
	}
	canvas := chart.NewCanvas(surface, cfg.Window.Width, cfg.Window.Height)

	view := o.view
	if view == nil {
		view = canvas
	}

	m := metrics.NewEngine()
	vp := cfg.ViewPoint
	azimuthStep, elevationStep := vp.Steps()
	driverOpts := []bench.Option{
		bench.WithViewPoints(bench.LinearViewPoints(azimuthStep, elevationStep, vp.Distance, vp.Roll)),
		bench.WithClock(o.now),
		bench.WithObserver(m),
	}
	for _, obs := range o.observers {
		driverOpts = append(driverOpts, bench.WithObserver(obs))
	}
	driver, err := bench.NewDriver(view, bench.Config{Warmup: cfg.Warmup, Count: cfg.Count}, driverOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:  cfg,
		chart:   surface,
		canvas:  canvas,
		driver:  driver,
		metrics: m,
		now:     o.now,
	}, nil
}

func buildChart(c *config.ChartConfig) (*chart.SurfaceChart, error) {
	low, err := chart.ParseHexColor(c.LowColor)
	if err != nil {
		return nil, err
	}
	high, err := chart.ParseHexColor(c.HighColor)
	if err != nil {
		return nil, err
	}

	return chart.NewSurfaceChart(chart.DemoFunction, chart.SurfaceOptions{
		Title:            c.Title,
		Subtitle:         c.Subtitle,
		XRange:           chart.Range{Min: c.XRange.Min, Max: c.XRange.Max},
		ZRange:           chart.Range{Min: c.ZRange.Min, Max: c.ZRange.Max},
		Dimensions:       chart.Dimension3D{Width: c.Dimensions.Width, Height: c.Dimensions.Height, Depth: c.Dimensions.Depth},
		Samples:          c.Samples,
		DrawFaceOutlines: c.DrawFaceOutlines,
		ColorScale: chart.NewGradientColorScale(
			chart.Range{Min: c.ColorRange.Min, Max: c.ColorRange.Max}, low, high),
	}), nil
}

// Step performs one activation. It is meant to be called once per turn of
// the hosting event loop, never concurrently.
func (e *Engine) Step() (bench.State, error) {
	if e.startTime.IsZero() {
		e.startTime = e.now()
	}
	return e.driver.Advance()
}

// Run drives the benchmark to completion on a private task queue and
// returns the result. A configured timeout bounds the whole run.
func (e *Engine) Run(ctx context.Context) (*TestResult, error) {
	if timeout := time.Duration(e.config.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	e.startTime = e.now()
	if _, err := bench.Run(ctx, bench.NewQueue(), e.driver); err != nil {
		return nil, err
	}
	return e.Finish()
}

// Finish builds the result once the driver is done.
func (e *Engine) Finish() (*TestResult, error) {
	if err := e.driver.Err(); err != nil {
		return nil, err
	}
	timing, ok := e.driver.Result()
	if !ok {
		return nil, fmt.Errorf("benchmark not finished: %d of %d iterations run",
			e.driver.Iteration(), e.driver.Config().Total())
	}

	snapshot := e.metrics.GetSnapshot()
	end := e.now()

	result := &TestResult{
		Name:         e.config.Name,
		StartTime:    e.startTime,
		EndTime:      end,
		Duration:     end.Sub(e.startTime),
		Timing:       timing,
		Elapsed:      timing.Elapsed(),
		Metrics:      snapshot,
		Buckets:      e.metrics.GetBuckets(),
		PhaseHistory: e.metrics.GetPhaseHistory(),
	}

	result.Thresholds = evaluateThresholds(e.config.Thresholds, result)
	result.Passed = true
	for _, tr := range result.Thresholds {
		if !tr.Passed {
			result.Passed = false
			break
		}
	}
	return result, nil
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() *config.BenchConfig {
	return e.config
}

// Image returns the canvas the chart is rendered into.
func (e *Engine) Image() *image.RGBA {
	return e.canvas.Image()
}

// Progress returns the fraction of activations completed.
func (e *Engine) Progress() float64 {
	return e.driver.Progress()
}

// State returns the state of the next activation.
func (e *Engine) State() bench.State {
	return e.driver.State()
}

// Metrics returns a metrics snapshot.
func (e *Engine) Metrics() *metrics.Snapshot {
	return e.metrics.GetSnapshot()
}
