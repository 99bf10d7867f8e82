package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// nearPlane is the minimum camera-space depth a vertex needs to be drawn.
const nearPlane = 0.1

// ErrEmptyCanvas is returned when drawing onto a canvas with no pixels.
var ErrEmptyCanvas = errors.New("chart: canvas has zero size")

var (
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor    = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	textColor       = color.RGBA{A: 255}

	background = image.NewUniform(backgroundColor)
	text       = image.NewUniform(textColor)
)

type projectedFace struct {
	points [4][2]float32
	depth  float64
	color  color.RGBA
}

// Canvas renders a SurfaceChart into an RGBA image.
//
// A Canvas is not safe for concurrent use; all calls must come from the
// goroutine that drives the render loop.
type Canvas struct {
	chart  *SurfaceChart
	img    *image.RGBA
	raster *vector.Rasterizer

	// Reused between draws.
	projected []projectedFace
	order     []int
	uniform   *image.Uniform
}

// NewCanvas creates a canvas of the given pixel size for c.
func NewCanvas(c *SurfaceChart, width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Canvas{
		chart:   c,
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		raster:  vector.NewRasterizer(width, height),
		uniform: image.NewUniform(color.RGBA{}),
	}
}

// Chart returns the chart drawn by the canvas.
func (cv *Canvas) Chart() *SurfaceChart {
	return cv.chart
}

// Image returns the canvas pixels. The image is overwritten by each Draw.
func (cv *Canvas) Image() *image.RGBA {
	return cv.img
}

// Size returns the canvas size in pixels.
func (cv *Canvas) Size() (int, int) {
	b := cv.img.Bounds()
	return b.Dx(), b.Dy()
}

// SetViewPoint changes the chart camera.
func (cv *Canvas) SetViewPoint(vp ViewPoint) {
	cv.chart.SetViewPoint(vp)
}

// Draw renders the chart synchronously.
func (cv *Canvas) Draw() error {
	w, h := cv.Size()
	if w == 0 || h == 0 {
		return ErrEmptyCanvas
	}
	vp := cv.chart.ViewPoint()
	if vp.Distance <= 0 {
		return fmt.Errorf("chart: viewpoint distance must be positive, got %g", vp.Distance)
	}

	draw.Draw(cv.img, cv.img.Bounds(), background, image.Point{}, draw.Src)

	cv.project(vp, w, h)
	sort.Slice(cv.order, func(a, b int) bool {
		return cv.projected[cv.order[a]].depth > cv.projected[cv.order[b]].depth
	})

	for _, idx := range cv.order {
		f := &cv.projected[idx]
		cv.fillQuad(f.points, f.color)
		if cv.chart.DrawFaceOutlines {
			for j := 0; j < 4; j++ {
				cv.strokeLine(f.points[j], f.points[(j+1)%4], outlineColor)
			}
		}
	}

	cv.drawTitles(w)
	return nil
}

// project fills cv.projected and cv.order with the faces in front of the
// camera.
func (cv *Canvas) project(vp ViewPoint, w, h int) {
	faces := cv.chart.Faces()
	dim := cv.chart.Dimensions
	radius := 0.5 * r3.Norm(r3.Vec{X: dim.Width, Y: dim.Height, Z: dim.Depth})

	// Scale so the bounding sphere fills about 80% of the shorter side.
	focal := 0.4 * float64(min(w, h)) * math.Max(vp.Distance-radius, nearPlane) / radius
	cx, cy := float64(w)/2, float64(h)/2

	cv.projected = cv.projected[:0]
	cv.order = cv.order[:0]
	for _, face := range faces {
		var pf projectedFace
		visible := true
		for j, v := range face.Vertices {
			p := vp.Transform(v)
			depth := -p.Z
			if depth < nearPlane {
				visible = false
				break
			}
			pf.points[j] = [2]float32{
				float32(cx + focal*p.X/depth),
				float32(cy - focal*p.Y/depth),
			}
			pf.depth += depth / 4
		}
		if !visible {
			continue
		}
		pf.color = face.Color
		cv.order = append(cv.order, len(cv.projected))
		cv.projected = append(cv.projected, pf)
	}
}

func (cv *Canvas) fillQuad(pts [4][2]float32, c color.RGBA) {
	w, h := cv.Size()
	cv.raster.Reset(w, h)
	cv.raster.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		cv.raster.LineTo(p[0], p[1])
	}
	cv.raster.ClosePath()
	cv.uniform.C = c
	cv.raster.Draw(cv.img, cv.img.Bounds(), cv.uniform, image.Point{})
}

// strokeLine draws a one pixel wide segment as a thin filled quad.
func (cv *Canvas) strokeLine(a, b [2]float32, c color.RGBA) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*0.5, dx/l*0.5
	cv.fillQuad([4][2]float32{
		{a[0] + nx, a[1] + ny},
		{b[0] + nx, b[1] + ny},
		{b[0] - nx, b[1] - ny},
		{a[0] - nx, a[1] - ny},
	}, c)
}

func (cv *Canvas) drawTitles(w int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: cv.img, Src: text, Face: face}
	y := face.Ascent + 4
	for _, s := range []string{cv.chart.Title, cv.chart.Subtitle} {
		if s == "" {
			continue
		}
		x := (w - d.MeasureString(s).Ceil()) / 2
		d.Dot = fixed.P(max(x, 0), y)
		d.DrawString(s)
		y += face.Height
	}
}
