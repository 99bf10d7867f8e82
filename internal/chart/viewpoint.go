package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ViewPoint describes the camera used to project a 3D scene.
//
// Azimuth rotates the camera around the vertical axis and Elevation tilts it
// above the horizontal plane, both in radians. Distance is measured from the
// origin. Roll rotates the projected image around the line of sight.
type ViewPoint struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Distance  float64 `json:"distance"`
	Roll      float64 `json:"roll"`
}

// String returns a compact representation of the viewpoint.
func (v ViewPoint) String() string {
	return fmt.Sprintf("az=%.3f el=%.3f dist=%.1f roll=%.3f", v.Azimuth, v.Elevation, v.Distance, v.Roll)
}

// Transform maps a point from world space into camera space.
//
// In camera space the eye sits at the origin and looks along -Z, so points in
// front of the camera have a negative Z.
func (v ViewPoint) Transform(p r3.Vec) r3.Vec {
	p = rotateY(p, -v.Azimuth)
	p = rotateX(p, v.Elevation)
	p = rotateZ(p, v.Roll)
	p.Z -= v.Distance
	return p
}

// Eye returns the camera position in world space.
func (v ViewPoint) Eye() r3.Vec {
	p := r3.Vec{Z: v.Distance}
	p = rotateZ(p, -v.Roll)
	p = rotateX(p, -v.Elevation)
	return rotateY(p, v.Azimuth)
}

func rotateX(p r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: p.X, Y: c*p.Y - s*p.Z, Z: s*p.Y + c*p.Z}
}

func rotateY(p r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: c*p.X + s*p.Z, Y: p.Y, Z: -s*p.X + c*p.Z}
}

func rotateZ(p r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y, Z: p.Z}
}
