package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Range is a closed interval of values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Length returns Max - Min.
func (r Range) Length() float64 {
	return r.Max - r.Min
}

// Fraction maps v onto [0, 1] relative to the range, clamping values that
// fall outside it. A degenerate range maps everything to 0.5.
func (r Range) Fraction(v float64) float64 {
	l := r.Length()
	if l == 0 || math.IsNaN(v) {
		return 0.5
	}
	f := (v - r.Min) / l
	return math.Max(0, math.Min(1, f))
}

// Dimension3D is the size of the plot box in world units.
type Dimension3D struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// GradientColorScale maps values linearly onto a two-color gradient.
type GradientColorScale struct {
	Range Range
	Low   color.RGBA
	High  color.RGBA
}

// NewGradientColorScale returns a scale from low to high over r.
func NewGradientColorScale(r Range, low, high color.RGBA) *GradientColorScale {
	return &GradientColorScale{Range: r, Low: low, High: high}
}

// ValueToColor returns the gradient color for v.
func (s *GradientColorScale) ValueToColor(v float64) color.RGBA {
	f := s.Range.Fraction(v)
	return color.RGBA{
		R: lerp(s.Low.R, s.High.R, f),
		G: lerp(s.Low.G, s.High.G, f),
		B: lerp(s.Low.B, s.High.B, f),
		A: lerp(s.Low.A, s.High.A, f),
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
