package roomplane

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// planeTransform returns the affine matrix [a, b, c, d, tx, ty] that maps a
// width x height layer onto the projected quad whose corners are given in
// A, B, C, D order. The layer's x axis runs from C to B and its y axis from
// C to D.
//
// Walls and landscapes snap edge deltas that land within one pixel of the
// layer size so rounding never leaves a sub-pixel skew along the seams.
func planeTransform(corners [4]Vec2, typ PlaneType, width, height float64) [6]float64 {
	if width <= 0 || height <= 0 {
		return identityTransform
	}
	b, c, d := corners[1], corners[2], corners[3]

	dx := d.X - c.X
	dy := d.Y - c.Y
	bx := b.X - c.X
	by := b.Y - c.Y

	if typ == PlaneWall || typ == PlaneLandscape {
		if math.Abs(bx-width) <= 1 {
			bx = width
		}
		if math.Abs(by-width) <= 1 {
			by = width
		}
		if math.Abs(dx-height) <= 1 {
			dx = height
		}
		if math.Abs(dy-height) <= 1 {
			dy = height
		}
	}

	return [6]float64{bx / width, by / width, dx / height, dy / height, c.X, c.Y}
}

// transformGeoM converts an affine matrix to an ebiten.GeoM.
func transformGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// applyTransform maps a layer-space point through m.
func applyTransform(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
