package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/chartperf/internal/bench"
	"github.com/wesleyorama2/chartperf/internal/chart"
	"github.com/wesleyorama2/chartperf/internal/config"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type failingView struct {
	draws int
}

func (v *failingView) SetViewPoint(chart.ViewPoint) {}

func (v *failingView) Draw() error {
	v.draws++
	if v.draws == 2 {
		return errors.New("surface lost")
	}
	return nil
}

type slowView struct {
	delay time.Duration
	draws int
}

func (v *slowView) SetViewPoint(chart.ViewPoint) {}

func (v *slowView) Draw() error {
	v.draws++
	time.Sleep(v.delay)
	return nil
}

type viewPointView struct {
	points []chart.ViewPoint
}

func (v *viewPointView) SetViewPoint(vp chart.ViewPoint) { v.points = append(v.points, vp) }

func (v *viewPointView) Draw() error { return nil }

func smallConfig() *config.BenchConfig {
	return &config.BenchConfig{
		Name:   "small",
		Warmup: 2,
		Count:  3,
		Window: config.WindowConfig{Width: 160, Height: 120, Headless: true},
		Chart:  config.ChartConfig{Samples: 4},
	}
}

func TestNewEngine_AppliesDefaults(t *testing.T) {
	cfg := &config.BenchConfig{Window: config.WindowConfig{Width: 32, Height: 32}}
	eng, err := NewEngine(cfg)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultWarmup, eng.Config().Warmup)
	assert.Equal(t, config.DefaultCount, eng.Config().Count)
	assert.Equal(t, 32, eng.Image().Bounds().Dx())
	assert.Equal(t, bench.Warming, eng.State())
	assert.Equal(t, 0.0, eng.Progress())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Chart.LowColor = "nope"

	_, err := NewEngine(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestEngine_Run(t *testing.T) {
	clock := &stepClock{t: time.UnixMilli(5_000)}
	cfg := smallConfig()
	cfg.Thresholds = &config.ThresholdsConfig{
		FrameTime: []string{"p95 < 2ms"},
		FPS:       []string{"mean > 2000"},
		Elapsed:   []string{"value <= 6ms"},
	}

	eng, err := NewEngine(cfg, WithClock(clock.Now))
	require.NoError(t, err)

	result, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "small", result.Name)
	assert.Equal(t, time.UnixMilli(5_005), result.Timing.Start)
	assert.Equal(t, time.UnixMilli(5_011), result.Timing.End)
	assert.Equal(t, 6*time.Millisecond, result.Elapsed)
	assert.Equal(t, 5, result.Timing.Iterations)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, int64(2), result.Metrics.WarmupFrames)
	assert.Equal(t, int64(3), result.Metrics.MeasuredFrames)
	assert.InDelta(t, 1000, result.Metrics.FPS, 0.01)
	assert.Len(t, result.Buckets, 1)

	require.Len(t, result.Thresholds, 3)
	assert.True(t, result.Thresholds[0].Passed, "%+v", result.Thresholds[0])
	assert.Equal(t, "1ms", result.Thresholds[0].Value)
	assert.False(t, result.Thresholds[1].Passed)
	assert.Equal(t, "1000.00", result.Thresholds[1].Value)
	assert.NotEmpty(t, result.Thresholds[1].Message)
	assert.True(t, result.Thresholds[2].Passed, "%+v", result.Thresholds[2])
	assert.False(t, result.Passed)
}

func TestEngine_RunRendersCanvas(t *testing.T) {
	eng, err := NewEngine(smallConfig())
	require.NoError(t, err)

	result, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Passed, "no thresholds means pass")
	assert.False(t, result.Timing.End.Before(result.Timing.Start))

	img := eng.Image()
	center := img.RGBAAt(80, 60)
	assert.NotEqual(t, uint8(255), center.B, "surface should be drawn over the white background")
}

func TestEngine_StepUntilDone(t *testing.T) {
	eng, err := NewEngine(smallConfig())
	require.NoError(t, err)

	_, err = eng.Finish()
	assert.Error(t, err, "Finish before the last iteration")

	var states []bench.State
	for {
		state, err := eng.Step()
		require.NoError(t, err)
		states = append(states, state)
		if state == bench.Done {
			break
		}
	}
	assert.Equal(t, []bench.State{bench.Warming, bench.Warming, bench.Measuring, bench.Measuring, bench.Done}, states)

	_, err = eng.Step()
	assert.ErrorIs(t, err, bench.ErrFinished)

	result, err := eng.Finish()
	require.NoError(t, err)
	assert.Equal(t, 1.0, eng.Progress())
	assert.Equal(t, int64(3), eng.Metrics().MeasuredFrames)
	assert.Len(t, result.PhaseHistory, 3)
}

func TestEngine_WithObserver(t *testing.T) {
	var frames []int
	var states []bench.State
	obs := bench.ObserverFunc(func(i int, state bench.State, _ time.Duration) {
		frames = append(frames, i)
		states = append(states, state)
	})

	eng, err := NewEngine(smallConfig(), WithObserver(obs))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, frames)
	assert.Equal(t, bench.Done, states[4])
}

func TestEngine_FixedElevation(t *testing.T) {
	cfg := smallConfig()
	zero := 0.0
	cfg.ViewPoint.ElevationStep = &zero

	view := &viewPointView{}
	eng, err := NewEngine(cfg, WithView(view))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, view.points, 5)
	for i, vp := range view.points {
		assert.Equal(t, 0.0, vp.Elevation, "iteration %d", i)
		assert.InDelta(t, float64(i)/50, vp.Azimuth, 1e-12, "iteration %d", i)
	}
}

func TestEngine_RunPropagatesRenderError(t *testing.T) {
	view := &failingView{}
	eng, err := NewEngine(smallConfig(), WithView(view))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surface lost")
	assert.Equal(t, 2, view.draws)

	_, err = eng.Finish()
	assert.Error(t, err)
}

func TestEngine_RunTimeout(t *testing.T) {
	cfg := smallConfig()
	cfg.Timeout = config.Duration(20 * time.Millisecond)

	view := &slowView{delay: 10 * time.Millisecond}
	eng, err := NewEngine(cfg, WithView(view))
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, view.draws, 5)
}

func TestEvaluateThreshold(t *testing.T) {
	result := map[string]interface{}{
		"elapsed": int64(1500 * time.Millisecond),
		"metrics": map[string]interface{}{
			"fps":       59.5,
			"frameTime": map[string]interface{}{"p95": int64(18 * time.Millisecond)},
		},
	}
	doc, err := json.Marshal(result)
	require.NoError(t, err)
	require.True(t, gjson.GetBytes(doc, "metrics.frameTime.p95").Exists())

	tests := []struct {
		group    string
		expr     string
		duration bool
		passed   bool
	}{
		{"frame_time", "p95 < 20ms", true, true},
		{"frame_time", "p95 < 10ms", true, false},
		{"frame_time", "p99 < 10ms", true, false},
		{"frame_time", "p95 < soon", true, false},
		{"fps", "mean >= 59.5", false, true},
		{"fps", "value != 59.5", false, false},
		{"elapsed", "value < 2s", true, true},
		{"elapsed", "total < 2s", true, false},
		{"elapsed", "nonsense", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.group+" "+tt.expr, func(t *testing.T) {
			got := evaluateThreshold(doc, tt.group, tt.expr, tt.duration)
			assert.Equal(t, tt.passed, got.Passed, "%+v", got)
			if !got.Passed {
				assert.NotEmpty(t, got.Message)
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	assert.True(t, compareValues(1, "<", 2))
	assert.True(t, compareValues(2, "<=", 2))
	assert.True(t, compareValues(3, ">", 2))
	assert.True(t, compareValues(2, ">=", 2))
	assert.True(t, compareValues(2, "==", 2))
	assert.True(t, compareValues(2, "=", 2))
	assert.True(t, compareValues(1, "!=", 2))
	assert.True(t, compareValues(1, "<>", 2))
	assert.False(t, compareValues(1, "=~", 2))
}
