// Package bench implements the render benchmark loop.
//
// A Driver owns the iteration counter and the timing record. Each call to
// Advance performs exactly one render activation: it moves the camera to the
// viewpoint for the current iteration, redraws the view synchronously and
// updates the timing record. Whatever event loop hosts the benchmark calls
// Advance once per turn until it reports Done.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/wesleyorama2/chartperf/internal/chart"
)

var (
	// ErrFinished is returned by Advance once the last iteration has run.
	ErrFinished = errors.New("bench: benchmark already finished")

	// ErrAborted is returned by Advance after an earlier redraw failed.
	ErrAborted = errors.New("bench: benchmark aborted")
)

// View is a renderable chart view.
type View interface {
	// SetViewPoint changes the camera used by the next Draw.
	SetViewPoint(vp chart.ViewPoint)

	// Draw redraws the view synchronously.
	Draw() error
}

// Observer receives the duration of every redraw.
type Observer interface {
	OnFrame(i int, state State, d time.Duration)
}

// ViewPointFunc returns the camera for iteration i. It must depend on i only.
type ViewPointFunc func(i int) chart.ViewPoint

// DefaultViewPoints orbits the camera with azimuth i/50 and elevation i/100
// at a fixed distance of 50 and no roll.
func DefaultViewPoints(i int) chart.ViewPoint {
	return LinearViewPoints(1.0/50, 1.0/100, 50, 0)(i)
}

// LinearViewPoints returns a ViewPointFunc whose azimuth and elevation grow
// linearly with the iteration.
func LinearViewPoints(azimuthStep, elevationStep, distance, roll float64) ViewPointFunc {
	return func(i int) chart.ViewPoint {
		return chart.ViewPoint{
			Azimuth:   float64(i) * azimuthStep,
			Elevation: float64(i) * elevationStep,
			Distance:  distance,
			Roll:      roll,
		}
	}
}

// Result is the timing record of a completed run.
type Result struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Warmup     int       `json:"warmup"`
	Count      int       `json:"count"`
	Iterations int       `json:"iterations"`
}

// Elapsed returns the time between the last warm-up render and the last
// measured render.
func (r Result) Elapsed() time.Duration {
	return r.End.Sub(r.Start)
}

// StartMillis returns Start as epoch milliseconds.
func (r Result) StartMillis() int64 {
	return r.Start.UnixMilli()
}

// EndMillis returns End as epoch milliseconds.
func (r Result) EndMillis() int64 {
	return r.End.UnixMilli()
}

// Option configures a Driver.
type Option func(*Driver)

// WithViewPoints replaces DefaultViewPoints.
func WithViewPoints(fn ViewPointFunc) Option {
	return func(d *Driver) {
		d.viewPoints = fn
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// WithObserver registers an observer for redraw durations. Observers are
// called in registration order.
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		d.observers = append(d.observers, o)
	}
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(i int, state State, d time.Duration)

// OnFrame calls f.
func (f ObserverFunc) OnFrame(i int, state State, d time.Duration) {
	f(i, state, d)
}

// Driver advances the benchmark one render at a time.
//
// A Driver is not safe for concurrent use. The hosting event loop must not
// call Advance again before the previous call has returned.
type Driver struct {
	view       View
	cfg        Config
	viewPoints ViewPointFunc
	now        func() time.Time
	observers  []Observer

	i        int
	start    time.Time
	end      time.Time
	finished bool
	err      error
}

// NewDriver creates a driver for view.
func NewDriver(view View, cfg Config, opts ...Option) (*Driver, error) {
	if view == nil {
		return nil, fmt.Errorf("bench: view is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		view:       view,
		cfg:        cfg,
		viewPoints: DefaultViewPoints,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Advance performs one activation and returns the state it ran in.
//
// The returned state is Done exactly once, for the final iteration. A redraw
// error is returned wrapped and leaves the driver aborted.
func (d *Driver) Advance() (State, error) {
	if d.err != nil {
		return d.cfg.StateAt(d.i), fmt.Errorf("%w: %v", ErrAborted, d.err)
	}
	if d.finished {
		return Done, ErrFinished
	}

	i := d.i
	state := d.cfg.StateAt(i)

	d.view.SetViewPoint(d.viewPoints(i))
	began := d.now()
	if err := d.view.Draw(); err != nil {
		d.err = fmt.Errorf("redraw at iteration %d: %w", i, err)
		return state, d.err
	}
	drawn := d.now()

	frame := drawn.Sub(began)
	for _, o := range d.observers {
		o.OnFrame(i, state, frame)
	}

	if i == d.cfg.Warmup-1 {
		d.start = drawn
	}
	if state == Done {
		d.end = drawn
		d.finished = true
		return Done, nil
	}

	d.i++
	return state, nil
}

// Iteration returns the index of the next activation.
func (d *Driver) Iteration() int {
	return d.i
}

// State returns the state of the next activation, or Done once finished.
func (d *Driver) State() State {
	if d.finished {
		return Done
	}
	return d.cfg.StateAt(d.i)
}

// Progress returns the fraction of activations completed, from 0 to 1.
func (d *Driver) Progress() float64 {
	if d.finished {
		return 1
	}
	return float64(d.i) / float64(d.cfg.Total())
}

// Config returns the driver configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Err returns the redraw error that aborted the driver, if any.
func (d *Driver) Err() error {
	return d.err
}

// Result returns the timing record. ok is false until the final iteration
// has run.
func (d *Driver) Result() (res Result, ok bool) {
	if !d.finished {
		return Result{}, false
	}
	return Result{
		Start:      d.start,
		End:        d.end,
		Warmup:     d.cfg.Warmup,
		Count:      d.cfg.Count,
		Iterations: d.cfg.Total(),
	}, true
}
