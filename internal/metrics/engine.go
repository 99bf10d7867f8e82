// Package metrics collects frame-time statistics for a render benchmark.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/chartperf/internal/bench"
)

// Phase is a phase of the benchmark.
type Phase string

const (
	// PhaseInit is the state before the first frame.
	PhaseInit Phase = "init"

	// PhaseWarmup covers frames rendered before timing starts.
	PhaseWarmup Phase = "warmup"

	// PhaseMeasure covers the timed frames.
	PhaseMeasure Phase = "measure"

	// PhaseDone is set once the final frame has been recorded.
	PhaseDone Phase = "done"
)

// Engine aggregates redraw durations using an HDR histogram.
//
// Only measured frames go into the histogram; warm-up frames are counted so
// the report can show them, but their timings are discarded.
//
// Engine is safe for concurrent use: the render loop records frames while the
// console may read snapshots from another goroutine.
type Engine struct {
	mu sync.Mutex

	frameHist  *hdrhistogram.Histogram
	bucketHist *hdrhistogram.Histogram

	warmupFrames   int64
	measuredFrames int64
	renderTime     time.Duration

	currentPhase Phase
	phaseHistory []PhaseChange

	buckets      []*FrameBucket
	bucketFrames int
	bucketTime   time.Duration

	now    func() time.Time
	config EngineConfig
}

// EngineConfig contains configuration for the metrics engine.
type EngineConfig struct {
	// BucketFrames is the number of measured frames per bucket (default: 50)
	BucketFrames int

	// HistogramMin is the minimum recordable value in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable value in microseconds (default: 60000000 = 1 minute)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultEngineConfig returns the default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BucketFrames:     50,
		HistogramMin:     1,
		HistogramMax:     60_000_000,
		HistogramSigFigs: 3,
	}
}

// PhaseChange records when a phase transition occurred.
type PhaseChange struct {
	Phase     Phase     `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
	Frames    int64     `json:"frames"`
}

// FrameBucket summarizes a run of consecutive measured frames.
type FrameBucket struct {
	Index     int           `json:"index"`
	Frames    int           `json:"frames"`
	FPS       float64       `json:"fps"`
	Mean      time.Duration `json:"mean"`
	P95       time.Duration `json:"p95"`
	Max       time.Duration `json:"max"`
	Timestamp time.Time     `json:"timestamp"`
}

// FrameTimeStats contains redraw duration statistics.
type FrameTimeStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stdDev"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Count  int64         `json:"count"`
}

// Snapshot contains a point-in-time view of all metrics.
type Snapshot struct {
	WarmupFrames   int64          `json:"warmupFrames"`
	MeasuredFrames int64          `json:"measuredFrames"`
	RenderTime     time.Duration  `json:"renderTime"`
	FrameTime      FrameTimeStats `json:"frameTime"`
	FPS            float64        `json:"fps"`
	CurrentPhase   Phase          `json:"currentPhase"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewEngine creates a metrics engine with default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig())
}

// NewEngineWithConfig creates a metrics engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if config.BucketFrames <= 0 {
		config.BucketFrames = def.BucketFrames
	}
	if config.HistogramMin <= 0 {
		config.HistogramMin = def.HistogramMin
	}
	if config.HistogramMax <= config.HistogramMin {
		config.HistogramMax = def.HistogramMax
	}
	if config.HistogramSigFigs <= 0 {
		config.HistogramSigFigs = def.HistogramSigFigs
	}

	return &Engine{
		frameHist:    hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		bucketHist:   hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		currentPhase: PhaseInit,
		now:          time.Now,
		config:       config,
	}
}

// OnFrame implements bench.Observer.
func (e *Engine) OnFrame(i int, state bench.State, d time.Duration) {
	switch state {
	case bench.Warming:
		e.SetPhase(PhaseWarmup)
		e.RecordFrame(d, PhaseWarmup)
	case bench.Measuring:
		e.SetPhase(PhaseMeasure)
		e.RecordFrame(d, PhaseMeasure)
	case bench.Done:
		e.SetPhase(PhaseMeasure)
		e.RecordFrame(d, PhaseMeasure)
		e.Flush()
		e.SetPhase(PhaseDone)
	}
}

// RecordFrame records one redraw.
func (e *Engine) RecordFrame(d time.Duration, phase Phase) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if phase != PhaseMeasure {
		e.warmupFrames++
		return
	}

	micros := e.clamp(d.Microseconds())
	// HDR histogram RecordValue is not thread-safe; e.mu is held.
	_ = e.frameHist.RecordValue(micros)
	_ = e.bucketHist.RecordValue(micros)

	e.measuredFrames++
	e.renderTime += d
	e.bucketFrames++
	e.bucketTime += d

	if e.bucketFrames >= e.config.BucketFrames {
		e.emitBucketLocked()
	}
}

func (e *Engine) clamp(micros int64) int64 {
	if micros < e.config.HistogramMin {
		return e.config.HistogramMin
	}
	if micros > e.config.HistogramMax {
		return e.config.HistogramMax
	}
	return micros
}

// Flush emits a bucket for any frames recorded since the last one.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.bucketFrames > 0 {
		e.emitBucketLocked()
	}
}

func (e *Engine) emitBucketLocked() {
	fps := 0.0
	if e.bucketTime > 0 {
		fps = float64(e.bucketFrames) / e.bucketTime.Seconds()
	}
	e.buckets = append(e.buckets, &FrameBucket{
		Index:     len(e.buckets),
		Frames:    e.bucketFrames,
		FPS:       fps,
		Mean:      e.bucketTime / time.Duration(e.bucketFrames),
		P95:       time.Duration(e.bucketHist.ValueAtQuantile(95)) * time.Microsecond,
		Max:       time.Duration(e.bucketHist.Max()) * time.Microsecond,
		Timestamp: e.now(),
	})

	e.bucketHist.Reset()
	e.bucketFrames = 0
	e.bucketTime = 0
}

// SetPhase updates the current phase.
func (e *Engine) SetPhase(phase Phase) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentPhase == phase {
		return
	}

	e.currentPhase = phase
	e.phaseHistory = append(e.phaseHistory, PhaseChange{
		Phase:     phase,
		Timestamp: e.now(),
		Frames:    e.warmupFrames + e.measuredFrames,
	})
}

// GetPhase returns the current phase.
func (e *Engine) GetPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPhase
}

// GetPhaseHistory returns the history of phase changes.
func (e *Engine) GetPhaseHistory() []PhaseChange {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]PhaseChange, len(e.phaseHistory))
	copy(result, e.phaseHistory)
	return result
}

// GetBuckets returns the frame buckets emitted so far.
func (e *Engine) GetBuckets() []*FrameBucket {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*FrameBucket, len(e.buckets))
	copy(result, e.buckets)
	return result
}

// GetSnapshot returns a point-in-time snapshot of all metrics.
func (e *Engine) GetSnapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := FrameTimeStats{Count: e.frameHist.TotalCount()}
	if stats.Count > 0 {
		stats.Min = time.Duration(e.frameHist.Min()) * time.Microsecond
		stats.Max = time.Duration(e.frameHist.Max()) * time.Microsecond
		stats.Mean = time.Duration(e.frameHist.Mean()) * time.Microsecond
		stats.StdDev = time.Duration(e.frameHist.StdDev()) * time.Microsecond
		stats.P50 = time.Duration(e.frameHist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90 = time.Duration(e.frameHist.ValueAtQuantile(90)) * time.Microsecond
		stats.P95 = time.Duration(e.frameHist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99 = time.Duration(e.frameHist.ValueAtQuantile(99)) * time.Microsecond
	}

	fps := 0.0
	if e.renderTime > 0 {
		fps = float64(e.measuredFrames) / e.renderTime.Seconds()
	}

	return &Snapshot{
		WarmupFrames:   e.warmupFrames,
		MeasuredFrames: e.measuredFrames,
		RenderTime:     e.renderTime,
		FrameTime:      stats,
		FPS:            fps,
		CurrentPhase:   e.currentPhase,
		Timestamp:      e.now(),
	}
}

// Reset clears all metrics.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.frameHist.Reset()
	e.bucketHist.Reset()
	e.warmupFrames = 0
	e.measuredFrames = 0
	e.renderTime = 0
	e.currentPhase = PhaseInit
	e.phaseHistory = nil
	e.buckets = nil
	e.bucketFrames = 0
	e.bucketTime = 0
}
