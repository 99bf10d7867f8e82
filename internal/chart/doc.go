// Package chart provides a 3D surface chart and a software renderer for it.
//
// A SurfaceChart samples a Function3D over a rectangular x/z domain and
// builds a mesh of colored quads inside a Dimension3D box. A Canvas projects
// that mesh through the chart's current ViewPoint and rasterizes it into an
// *image.RGBA using the painter's algorithm.
//
// Typical use:
//
//	c := chart.NewDemoChart()
//	canvas := chart.NewCanvas(c, 768, 512)
//	canvas.SetViewPoint(chart.ViewPoint{Azimuth: 0.5, Elevation: 0.2, Distance: 50})
//	if err := canvas.Draw(); err != nil {
//		return err
//	}
//	img := canvas.Image()
package chart
