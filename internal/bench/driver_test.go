package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/chartperf/internal/chart"
)

// recordingView records every viewpoint it is drawn with.
type recordingView struct {
	current chart.ViewPoint
	drawn   []chart.ViewPoint
	failAt  int
	active  atomic.Int32
	overlap bool
}

func newRecordingView() *recordingView {
	return &recordingView{failAt: -1}
}

func (v *recordingView) SetViewPoint(vp chart.ViewPoint) {
	v.current = vp
}

func (v *recordingView) Draw() error {
	if v.active.Add(1) > 1 {
		v.overlap = true
	}
	defer v.active.Add(-1)

	if len(v.drawn) == v.failAt {
		return errors.New("device lost")
	}
	v.drawn = append(v.drawn, v.current)
	return nil
}

// stepClock advances one millisecond per call.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type frameRecord struct {
	i     int
	state State
}

type recordingObserver struct {
	frames []frameRecord
}

func (o *recordingObserver) OnFrame(i int, state State, d time.Duration) {
	o.frames = append(o.frames, frameRecord{i: i, state: state})
}

func TestConfig_StateAt(t *testing.T) {
	cfg := Config{Warmup: 2, Count: 3}

	expected := []State{Warming, Warming, Measuring, Measuring, Done}
	for i, want := range expected {
		assert.Equal(t, want, cfg.StateAt(i), "StateAt(%d)", i)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Warmup: 1, Count: 1}.Validate())
	assert.Error(t, Config{Warmup: 0, Count: 1}.Validate())
	assert.Error(t, Config{Warmup: 1, Count: 0}.Validate())
}

func TestNewDriver_Errors(t *testing.T) {
	_, err := NewDriver(nil, Config{Warmup: 1, Count: 1})
	assert.Error(t, err)

	_, err = NewDriver(newRecordingView(), Config{Warmup: 0, Count: 1})
	assert.Error(t, err)
}

func TestDriver_TwoWarmupTwoMeasured(t *testing.T) {
	view := newRecordingView()
	clock := &stepClock{t: time.UnixMilli(1_000_000)}
	obs := &recordingObserver{}

	d, err := NewDriver(view, Config{Warmup: 2, Count: 2}, WithClock(clock.Now), WithObserver(obs))
	require.NoError(t, err)

	var states []State
	for i := 0; i < 4; i++ {
		_, ok := d.Result()
		assert.False(t, ok, "result must not be available before the last iteration")

		state, err := d.Advance()
		require.NoError(t, err)
		states = append(states, state)
	}

	assert.Equal(t, []State{Warming, Warming, Measuring, Done}, states)
	assert.Len(t, view.drawn, 4)

	res, ok := d.Result()
	require.True(t, ok)
	assert.Equal(t, 2, res.Warmup)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 4, res.Iterations)

	// Two clock reads per activation: start is taken after the redraw at
	// index 1, end after the redraw at index 3.
	assert.Equal(t, time.UnixMilli(1_000_004), res.Start)
	assert.Equal(t, time.UnixMilli(1_000_008), res.End)
	assert.Equal(t, 4*time.Millisecond, res.Elapsed())
	assert.Equal(t, int64(1_000_004), res.StartMillis())
	assert.Equal(t, int64(1_000_008), res.EndMillis())

	require.Len(t, obs.frames, 4)
	for i, f := range obs.frames {
		assert.Equal(t, i, f.i)
	}
	assert.Equal(t, Done, obs.frames[3].state)
}

func TestDriver_NoActivationAfterDone(t *testing.T) {
	view := newRecordingView()
	d, err := NewDriver(view, Config{Warmup: 1, Count: 1})
	require.NoError(t, err)

	_, err = d.Advance()
	require.NoError(t, err)
	state, err := d.Advance()
	require.NoError(t, err)
	assert.Equal(t, Done, state)

	state, err = d.Advance()
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, Done, state)
	assert.Len(t, view.drawn, 2, "no redraw after the final iteration")
	assert.Equal(t, Done, d.State())
	assert.Equal(t, 1.0, d.Progress())
}

func TestDriver_ViewPointsArePureFunctionOfIteration(t *testing.T) {
	run := func() []chart.ViewPoint {
		view := newRecordingView()
		d, err := NewDriver(view, Config{Warmup: 3, Count: 5})
		require.NoError(t, err)
		for !d.finished {
			_, err := d.Advance()
			require.NoError(t, err)
		}
		return view.drawn
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)

	for i, vp := range first {
		assert.Equal(t, float64(i)/50.0, vp.Azimuth)
		assert.Equal(t, float64(i)/100.0, vp.Elevation)
		assert.Equal(t, 50.0, vp.Distance)
		assert.Equal(t, 0.0, vp.Roll)
	}
}

func TestDriver_CustomViewPoints(t *testing.T) {
	view := newRecordingView()
	d, err := NewDriver(view, Config{Warmup: 1, Count: 2}, WithViewPoints(LinearViewPoints(0.1, 0.2, 30, 0.5)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := d.Advance()
		require.NoError(t, err)
	}

	assert.InDelta(t, 0.2, view.drawn[2].Azimuth, 1e-12)
	assert.InDelta(t, 0.4, view.drawn[2].Elevation, 1e-12)
	assert.Equal(t, 30.0, view.drawn[2].Distance)
	assert.Equal(t, 0.5, view.drawn[2].Roll)
}

func TestDriver_RedrawErrorAborts(t *testing.T) {
	view := newRecordingView()
	view.failAt = 1

	d, err := NewDriver(view, Config{Warmup: 2, Count: 2})
	require.NoError(t, err)

	_, err = d.Advance()
	require.NoError(t, err)

	_, err = d.Advance()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration 1")
	assert.Equal(t, err, d.Err())

	_, err = d.Advance()
	assert.ErrorIs(t, err, ErrAborted)
	assert.Len(t, view.drawn, 1)

	_, ok := d.Result()
	assert.False(t, ok)
}

func TestRun_TwoWarmupTwoMeasured(t *testing.T) {
	view := newRecordingView()
	d, err := NewDriver(view, Config{Warmup: 2, Count: 2})
	require.NoError(t, err)

	res, err := Run(context.Background(), NewQueue(), d)
	require.NoError(t, err)

	assert.Len(t, view.drawn, 4)
	assert.False(t, view.overlap, "activations must never overlap")
	assert.False(t, res.End.Before(res.Start))
	assert.Equal(t, 4, res.Iterations)
}

func TestRun_ExactActivationCount(t *testing.T) {
	configs := []Config{
		{Warmup: 1, Count: 1},
		{Warmup: 1, Count: 10},
		{Warmup: 10, Count: 1},
		{Warmup: 50, Count: 75},
	}

	for _, cfg := range configs {
		view := newRecordingView()
		obs := &recordingObserver{}
		d, err := NewDriver(view, cfg, WithObserver(obs))
		require.NoError(t, err)

		_, err = Run(context.Background(), NewQueue(), d)
		require.NoError(t, err)
		assert.Len(t, view.drawn, cfg.Total(), "config %+v", cfg)

		var done int
		for _, f := range obs.frames {
			if f.state == Done {
				done++
			}
		}
		assert.Equal(t, 1, done)
	}
}

func TestRun_PropagatesRedrawError(t *testing.T) {
	view := newRecordingView()
	view.failAt = 3

	d, err := NewDriver(view, Config{Warmup: 2, Count: 5})
	require.NoError(t, err)

	q := NewQueue()
	_, err = Run(context.Background(), q, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Len(t, view.drawn, 3)
	assert.ErrorIs(t, q.Post(func() {}), ErrQueueClosed)
}

func TestRun_ContextCancelled(t *testing.T) {
	d, err := NewDriver(newRecordingView(), Config{Warmup: 2, Count: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, NewQueue(), d)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, q.Post(func() { order = append(order, i) }))
	}
	assert.Equal(t, 5, q.Len())
	q.Close()

	require.NoError(t, q.Run(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PostFromAnotherGoroutine(t *testing.T) {
	q := NewQueue()
	ran := make(chan struct{})

	go func() {
		_ = q.Post(func() { close(ran) })
		<-ran
		q.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Run(ctx))
}

func TestDriver_MultipleObservers(t *testing.T) {
	var order []string
	first := ObserverFunc(func(i int, _ State, _ time.Duration) { order = append(order, fmt.Sprintf("a%d", i)) })
	second := ObserverFunc(func(i int, _ State, _ time.Duration) { order = append(order, fmt.Sprintf("b%d", i)) })

	d, err := NewDriver(newRecordingView(), Config{Warmup: 1, Count: 1}, WithObserver(first), WithObserver(second))
	require.NoError(t, err)

	for !d.finished {
		_, err := d.Advance()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a0", "b0", "a1", "b1"}, order)
}
