package chart

import (
	"testing"
)

// BenchmarkCanvas_Draw measures one full redraw of the demo surface at the
// default window size.
func BenchmarkCanvas_Draw(b *testing.B) {
	cv := NewCanvas(NewDemoChart(), 768, 512)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cv.SetViewPoint(ViewPoint{Azimuth: float64(i) / 50, Elevation: float64(i) / 100, Distance: 50})
		if err := cv.Draw(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCanvas_DrawOutlines adds the face outline pass.
func BenchmarkCanvas_DrawOutlines(b *testing.B) {
	c := NewDemoChart()
	c.DrawFaceOutlines = true
	cv := NewCanvas(c, 768, 512)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cv.SetViewPoint(ViewPoint{Azimuth: float64(i) / 50, Elevation: float64(i) / 100, Distance: 50})
		if err := cv.Draw(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSurfaceChart_Faces measures face generation after invalidation.
func BenchmarkSurfaceChart_Faces(b *testing.B) {
	c := NewDemoChart()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.Invalidate()
		_ = c.Faces()
	}
}
