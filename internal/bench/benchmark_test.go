package bench

import (
	"testing"
	"time"

	"github.com/wesleyorama2/chartperf/internal/chart"
)

type nopView struct{}

func (nopView) SetViewPoint(chart.ViewPoint) {}
func (nopView) Draw() error                  { return nil }

// BenchmarkDriver_Advance measures the per-activation overhead of the driver
// itself, without any rendering.
func BenchmarkDriver_Advance(b *testing.B) {
	obs := ObserverFunc(func(int, State, time.Duration) {})

	b.ReportAllocs()
	for i := 0; i < b.N; {
		d, err := NewDriver(nopView{}, Config{Warmup: 500, Count: 500}, WithObserver(obs))
		if err != nil {
			b.Fatal(err)
		}
		for !d.finished && i < b.N {
			if _, err := d.Advance(); err != nil {
				b.Fatal(err)
			}
			i++
		}
	}
}
