// Package profiling captures and summarizes CPU profiles of the measured
// phase of a benchmark.
package profiling

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/wesleyorama2/chartperf/internal/bench"
)

// CPUProfiler writes a CPU profile covering the measured iterations only.
// It observes frames: profiling starts once the last warm-up frame has been
// drawn and stops after the final frame.
type CPUProfiler struct {
	path   string
	warmup int

	f       *os.File
	running bool
	err     error
}

// NewCPUProfiler creates a profiler that writes to path.
func NewCPUProfiler(path string, warmup int) *CPUProfiler {
	return &CPUProfiler{path: path, warmup: warmup}
}

// OnFrame implements bench.Observer.
func (p *CPUProfiler) OnFrame(i int, state bench.State, _ time.Duration) {
	if p.err != nil {
		return
	}
	if state == bench.Done {
		p.stop()
		return
	}
	if i == p.warmup-1 && p.f == nil {
		p.start()
	}
}

func (p *CPUProfiler) start() {
	f, err := os.Create(p.path)
	if err != nil {
		p.err = fmt.Errorf("failed to create CPU profile: %w", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		p.err = fmt.Errorf("failed to start CPU profile: %w", err)
		return
	}
	p.f = f
	p.running = true
}

func (p *CPUProfiler) stop() {
	if !p.running {
		return
	}
	pprof.StopCPUProfile()
	p.running = false
	if err := p.f.Close(); err != nil {
		p.err = fmt.Errorf("failed to write CPU profile: %w", err)
	}
}

// Path returns the profile destination.
func (p *CPUProfiler) Path() string {
	return p.path
}

// Close stops a profile left running by an aborted benchmark and returns
// the first error seen.
func (p *CPUProfiler) Close() error {
	p.stop()
	return p.err
}
