package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Function3D computes y for a point on the x/z plane.
type Function3D func(x, z float64) float64

// Face is a quad of the surface mesh in world coordinates.
type Face struct {
	Vertices [4]r3.Vec
	Color    color.RGBA
}

// SurfaceChart is a surface plot of a Function3D.
type SurfaceChart struct {
	Title            string
	Subtitle         string
	Function         Function3D
	XRange           Range
	ZRange           Range
	Dimensions       Dimension3D
	XSamples         int
	ZSamples         int
	DrawFaceOutlines bool
	ColorScale       *GradientColorScale

	viewPoint ViewPoint
	faces     []Face
	yRange    Range
}

// SurfaceOptions configures NewSurfaceChart. Zero fields take the defaults
// used by NewDemoChart.
type SurfaceOptions struct {
	Title            string
	Subtitle         string
	XRange           Range
	ZRange           Range
	Dimensions       Dimension3D
	Samples          int
	DrawFaceOutlines bool
	ColorScale       *GradientColorScale
}

// DefaultViewPoint is the initial camera for a new chart.
var DefaultViewPoint = ViewPoint{Azimuth: 0, Elevation: 0, Distance: 50, Roll: 0}

// NewSurfaceChart creates a surface chart for fn.
func NewSurfaceChart(fn Function3D, opts SurfaceOptions) *SurfaceChart {
	if opts.XRange == (Range{}) {
		opts.XRange = Range{Min: -math.Pi, Max: math.Pi}
	}
	if opts.ZRange == (Range{}) {
		opts.ZRange = Range{Min: -math.Pi, Max: math.Pi}
	}
	if opts.Dimensions == (Dimension3D{}) {
		opts.Dimensions = Dimension3D{Width: 10, Height: 5, Depth: 10}
	}
	if opts.Samples <= 0 {
		opts.Samples = 32
	}
	if opts.ColorScale == nil {
		opts.ColorScale = NewGradientColorScale(Range{Min: -1, Max: 1},
			color.RGBA{R: 255, A: 255}, color.RGBA{R: 255, G: 255, A: 255})
	}
	return &SurfaceChart{
		Title:            opts.Title,
		Subtitle:         opts.Subtitle,
		Function:         fn,
		XRange:           opts.XRange,
		ZRange:           opts.ZRange,
		Dimensions:       opts.Dimensions,
		XSamples:         opts.Samples,
		ZSamples:         opts.Samples,
		DrawFaceOutlines: opts.DrawFaceOutlines,
		ColorScale:       opts.ColorScale,
		viewPoint:        DefaultViewPoint,
	}
}

// DemoFunction is y = cos(x) * sin(z).
func DemoFunction(x, z float64) float64 {
	return math.Cos(x) * math.Sin(z)
}

// NewDemoChart returns the reference surface chart of y = cos(x) * sin(z).
func NewDemoChart() *SurfaceChart {
	return NewSurfaceChart(DemoFunction, SurfaceOptions{
		Title:    "SurfaceRendererDemo1",
		Subtitle: "y = cos(x) * sin(z)",
	})
}

// SetViewPoint sets the camera used by the next draw.
func (c *SurfaceChart) SetViewPoint(vp ViewPoint) {
	c.viewPoint = vp
}

// ViewPoint returns the current camera.
func (c *SurfaceChart) ViewPoint() ViewPoint {
	return c.viewPoint
}

// YRange returns the range of function values over the sampled grid.
func (c *SurfaceChart) YRange() Range {
	c.Faces()
	return c.yRange
}

// Faces returns the surface mesh. The mesh depends only on the function and
// the sampling parameters, so it is built once and cached.
func (c *SurfaceChart) Faces() []Face {
	if c.faces != nil {
		return c.faces
	}

	nx, nz := c.XSamples, c.ZSamples
	values := make([]float64, (nx+1)*(nz+1))
	yr := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := 0; i <= nx; i++ {
		x := c.XRange.Min + c.XRange.Length()*float64(i)/float64(nx)
		for k := 0; k <= nz; k++ {
			z := c.ZRange.Min + c.ZRange.Length()*float64(k)/float64(nz)
			y := c.Function(x, z)
			values[i*(nz+1)+k] = y
			yr.Min = math.Min(yr.Min, y)
			yr.Max = math.Max(yr.Max, y)
		}
	}
	c.yRange = yr

	point := func(i, k int) r3.Vec {
		return r3.Vec{
			X: (float64(i)/float64(nx) - 0.5) * c.Dimensions.Width,
			Y: (yr.Fraction(values[i*(nz+1)+k]) - 0.5) * c.Dimensions.Height,
			Z: (float64(k)/float64(nz) - 0.5) * c.Dimensions.Depth,
		}
	}

	faces := make([]Face, 0, nx*nz)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			mean := (values[i*(nz+1)+k] + values[(i+1)*(nz+1)+k] +
				values[(i+1)*(nz+1)+k+1] + values[i*(nz+1)+k+1]) / 4
			faces = append(faces, Face{
				Vertices: [4]r3.Vec{point(i, k), point(i+1, k), point(i+1, k+1), point(i, k+1)},
				Color:    c.ColorScale.ValueToColor(mean),
			})
		}
	}
	c.faces = faces
	return faces
}

// Invalidate drops the cached mesh after the function or sampling changed.
func (c *SurfaceChart) Invalidate() {
	c.faces = nil
}
